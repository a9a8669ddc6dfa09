// Package segment drives a bank of multiplexed 7-segment digits.
package segment

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/gpio"
)

const (
	SegmentCount = 7
	DigitCount   = 4
)

// Glyph is segment bitmask, bit 0 = a .. bit 6 = g.
type Glyph uint8

const (
	GlyphBlank Glyph = 0x00
	GlyphDash  Glyph = 0x40
)

var digits = [10]Glyph{0x3f, 0x06, 0x5b, 0x4f, 0x66, 0x6d, 0x7d, 0x07, 0x7f, 0x6f}

// Digit returns glyph for least significant decimal digit of d.
func Digit(d uint) Glyph { return digits[d%10] }

func (g Glyph) String() string {
	switch g {
	case GlyphBlank:
		return " "
	case GlyphDash:
		return "-"
	}
	for i, d := range digits {
		if d == g {
			return string(rune('0' + i))
		}
	}
	return fmt.Sprintf("Glyph(%#02x)", uint8(g))
}

type Config struct {
	Segments    [SegmentCount]gpio.Line
	Digits      [DigitCount]gpio.Line
	CommonAnode bool
}

// Bank lights one digit position at a time.
// Lines are active high, CommonAnode inverts all levels.
type Bank struct {
	pins gpio.Pins
	c    Config
	lit  int // -1 when dark
}

func NewBank(pins gpio.Pins, c Config) (*Bank, error) {
	seen := make(map[gpio.Line]struct{})
	all := append(append([]gpio.Line{}, c.Segments[:]...), c.Digits[:]...)
	for _, l := range all {
		if _, ok := seen[l]; ok {
			return nil, errors.NotValidf("segment line=%d duplicate", l)
		}
		seen[l] = struct{}{}
	}
	if err := gpio.Setup(pins, gpio.DirectionOutput, all...); err != nil {
		return nil, errors.Annotate(err, "segment")
	}
	self := &Bank{pins: pins, c: c}
	self.Dark()
	return self, nil
}

// Show lights digit position pos with glyph g.
// All selects go off before segment lines change.
func (self *Bank) Show(pos int, g Glyph) {
	if pos < 0 || pos >= DigitCount {
		panic(fmt.Sprintf("code error segment pos=%d", pos))
	}
	self.selectsOff()
	for i, l := range self.c.Segments {
		self.write(l, g&(1<<uint(i)) != 0)
	}
	self.write(self.c.Digits[pos], true)
	self.lit = pos
}

// Dark turns off every select and segment.
func (self *Bank) Dark() {
	self.selectsOff()
	for _, l := range self.c.Segments {
		self.write(l, false)
	}
	self.lit = -1
}

// Lit returns position currently selected or -1.
func (self *Bank) Lit() int { return self.lit }

func (self *Bank) selectsOff() {
	for _, l := range self.c.Digits {
		self.write(l, false)
	}
}

func (self *Bank) write(l gpio.Line, on bool) {
	self.pins.WriteDigital(l, on != self.c.CommonAnode)
}
