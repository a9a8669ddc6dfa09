package input

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/gpio"
)

const KeypadTag = "gpio-keypad"

// Keypad reads eight digital input lines, one per Control.
type Keypad struct {
	pins      gpio.Pins
	lines     [ControlCount]gpio.Line
	activeLow bool
}

var _ Source = &Keypad{} // compile-time interface test

func NewKeypad(pins gpio.Pins, lines []gpio.Line, activeLow bool) (*Keypad, error) {
	if len(lines) != ControlCount {
		return nil, errors.NotValidf("keypad lines count=%d expected=%d", len(lines), ControlCount)
	}
	self := &Keypad{pins: pins, activeLow: activeLow}
	seen := make(map[gpio.Line]struct{}, ControlCount)
	for i, l := range lines {
		if _, ok := seen[l]; ok {
			return nil, errors.NotValidf("keypad line=%d duplicate", l)
		}
		seen[l] = struct{}{}
		self.lines[i] = l
	}
	if err := gpio.Setup(pins, gpio.DirectionInput, self.lines[:]...); err != nil {
		return nil, errors.Annotate(err, KeypadTag)
	}
	return self, nil
}

func (self *Keypad) String() string { return fmt.Sprintf("%s%v", KeypadTag, self.lines) }

func (self *Keypad) Scan() Levels {
	var lv Levels
	for i, l := range self.lines {
		lv[i] = self.pins.ReadDigital(l) != self.activeLow
	}
	return lv
}
