// Package lcd is HD44780 character display driver in 4-bit mode.
package lcd

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/gpio"
)

type Command byte

const (
	CommandClear   Command = 0x01
	CommandReturn  Command = 0x02
	CommandControl Command = 0x08
	CommandAddress Command = 0x80
)

type Control byte

const (
	ControlOn         Control = 0x04
	ControlUnderscore Control = 0x02
	ControlBlink      Control = 0x01
)
const ddramWidth = 0x40

const Rows = 2

type PinMap struct {
	RS string `hcl:"rs"`
	RW string `hcl:"rw"` // optional, empty when tied to ground
	E  string `hcl:"e"`
	D4 string `hcl:"d4"`
	D5 string `hcl:"d5"`
	D6 string `hcl:"d6"`
	D7 string `hcl:"d7"`
}

type lineMap struct {
	rs, rw, e, d4, d5, d6, d7 gpio.Line
	hasRW                     bool
}

func (m PinMap) parse() (lineMap, error) {
	var lm lineMap
	ss := []string{m.RS, m.E, m.D4, m.D5, m.D6, m.D7}
	ls, err := gpio.ParseLines(ss)
	if err != nil {
		return lm, errors.Annotate(err, "hd44780 pinmap")
	}
	lm.rs, lm.e, lm.d4, lm.d5, lm.d6, lm.d7 = ls[0], ls[1], ls[2], ls[3], ls[4], ls[5]
	if m.RW != "" {
		if lm.rw, err = gpio.ParseLine(m.RW); err != nil {
			return lm, errors.Annotate(err, "hd44780 pinmap")
		}
		lm.hasRW = true
	}
	return lm, nil
}

func (lm lineMap) all() []gpio.Line {
	ls := []gpio.Line{lm.rs, lm.e, lm.d4, lm.d5, lm.d6, lm.d7}
	if lm.hasRW {
		ls = append(ls, lm.rw)
	}
	return ls
}

type LCD struct {
	pins    gpio.Pins
	lm      lineMap
	width   uint8
	control Control
	err     error
}

func NewLCD(pins gpio.Pins, pinmap PinMap, width uint8, page1 bool) (*LCD, error) {
	if width == 0 || width > ddramWidth {
		return nil, errors.NotValidf("hd44780 width=%d", width)
	}
	lm, err := pinmap.parse()
	if err != nil {
		return nil, err
	}
	if err = gpio.Setup(pins, gpio.DirectionOutput, lm.all()...); err != nil {
		return nil, errors.Annotate(err, "hd44780")
	}
	self := &LCD{pins: pins, lm: lm, width: width}
	self.init4(page1)
	return self, errors.Annotate(self.Err(), "hd44780 init")
}

// Err returns and resets first flush error since last call.
func (self *LCD) Err() error {
	err := self.err
	self.err = nil
	return err
}

func (self *LCD) flush() {
	if err := self.pins.Flush(); err != nil && self.err == nil {
		self.err = err
	}
}

func (self *LCD) setAllPins(b bool) {
	for _, l := range self.lm.all() {
		self.pins.WriteDigital(l, b)
	}
	self.flush()
}

func (self *LCD) blinkE() {
	self.pins.WriteDigital(self.lm.e, true)
	self.flush()
	time.Sleep(1 * time.Microsecond)
	self.pins.WriteDigital(self.lm.e, false)
	self.flush()
	time.Sleep(1 * time.Microsecond)
}

func (self *LCD) send4(rs bool, nibble byte) {
	self.pins.WriteDigital(self.lm.rs, rs)
	self.pins.WriteDigital(self.lm.d4, nibble&0x1 != 0)
	self.pins.WriteDigital(self.lm.d5, nibble&0x2 != 0)
	self.pins.WriteDigital(self.lm.d6, nibble&0x4 != 0)
	self.pins.WriteDigital(self.lm.d7, nibble&0x8 != 0)
	self.blinkE()
}

func (self *LCD) init4(page1 bool) {
	time.Sleep(20 * time.Millisecond)

	// special sequence
	self.Command(0x33)
	self.Command(0x32)

	self.SetFunction(false, page1)
	self.SetControl(0) // off
	self.SetControl(ControlOn)
	self.Clear()
	self.SetEntryMode(true, false)
}

func (self *LCD) send(rs bool, b byte) {
	self.send4(rs, b>>4)
	self.send4(rs, b&0xf)
	// TODO poll busy flag when RW is wired
	time.Sleep(40 * time.Microsecond)
	self.setAllPins(false)
}

func (self *LCD) Command(c Command) { self.send(false, byte(c)) }
func (self *LCD) Data(b byte)       { self.send(true, b) }
func (self *LCD) WriteChar(c byte)  { self.Data(c) }

func (self *LCD) Clear() {
	self.Command(CommandClear)
	time.Sleep(2 * time.Millisecond)
}

func (self *LCD) Return() {
	self.Command(CommandReturn)
}

func (self *LCD) SetEntryMode(right, shift bool) {
	var cmd Command = 0x04
	if right {
		cmd |= 0x02
	}
	if shift {
		cmd |= 0x01
	}
	self.Command(cmd)
}

func (self *LCD) Control() Control {
	return self.control
}
func (self *LCD) SetControl(c Control) Control {
	old := self.control
	self.control = c
	self.Command(CommandControl | Command(c))
	return old
}

func (self *LCD) SetFunction(bits8, page1 bool) {
	var cmd Command = 0x28
	if bits8 {
		cmd |= 0x10
	}
	if page1 {
		cmd |= 0x02
	}
	self.Command(cmd)
}

// SetCursor row and col are zero based.
func (self *LCD) SetCursor(row, col uint8) bool {
	if row >= Rows || col >= self.width {
		return false
	}
	self.Command(CommandAddress | Command(row*ddramWidth+col))
	return true
}
