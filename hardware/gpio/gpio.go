// Package gpio is the digital line boundary: direction, read, write.
// Writes may be buffered by a backend until Flush.
package gpio

import (
	"fmt"
	"strconv"

	"github.com/juju/errors"
)

type Line uint32

type Direction uint8

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

type Pins interface {
	SetDirection(line Line, dir Direction) error
	ReadDigital(line Line) bool
	WriteDigital(line Line, value bool)
	Flush() error
	Close() error
}

// Sampler is implemented by backends which read all inputs in one request.
type Sampler interface {
	Sample() error
}

// Sample refreshes input levels when backend needs it.
func Sample(p Pins) error {
	if s, ok := p.(Sampler); ok {
		return s.Sample()
	}
	return nil
}

// ParseLine accepts decimal line offset, as used in config.
func ParseLine(s string) (Line, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "gpio line=%s", s)
	}
	return Line(x), nil
}

func ParseLines(ss []string) ([]Line, error) {
	lines := make([]Line, len(ss))
	for i, s := range ss {
		l, err := ParseLine(s)
		if err != nil {
			return nil, err
		}
		lines[i] = l
	}
	return lines, nil
}

// Setup sets direction of many lines, reports first failure.
func Setup(p Pins, dir Direction, lines ...Line) error {
	for _, l := range lines {
		if err := p.SetDirection(l, dir); err != nil {
			return errors.Annotatef(err, "gpio line=%d direction=%s", l, dir.String())
		}
	}
	return nil
}

func b2byte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
