package state

import (
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/gpio"
	"github.com/temoto/qcounter/hardware/input"
	"github.com/temoto/qcounter/hardware/lcd"
	"github.com/temoto/qcounter/hardware/segment"
	"github.com/temoto/qcounter/hardware/text_display"
	"github.com/temoto/qcounter/helpers"
	"github.com/temoto/qcounter/internal/feedback"
	"github.com/temoto/qcounter/log2"
)

const gpioConsumer = "qcounter"

type hardware struct {
	pins struct {
		once
		p    gpio.Pins
		mock *gpio.Mock
	}
	keypad struct {
		once
		src   input.Source
		evdev *input.EvdevKeypad
	}
	digits struct {
		once
		bank *segment.Bank
	}
	text struct {
		once
		d    *text_display.TextDisplay
		mock *lcd.MockDevice
	}
	feedback struct {
		once
		seq *feedback.Sequencer
	}
}

// Pins opens configured GPIO backend once.
func (g *Global) Pins() (gpio.Pins, error) {
	x := &g.Hardware.pins // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware
		log := g.Log.Clone(log2.LInfo)
		switch cfg.Driver {
		case DriverCdev:
			c, err := gpio.OpenCdev(cfg.PinChip, gpioConsumer, log)
			if err != nil {
				return errors.Annotatef(err, "config: hardware.pin_chip=%s", cfg.PinChip)
			}
			x.p = c

		case DriverPeriph:
			pull, err := gpio.ParsePull(cfg.Pull)
			if err != nil {
				return errors.Annotate(err, "config: hardware.pull")
			}
			p, err := gpio.OpenPeriph(pull, log)
			if err != nil {
				return err
			}
			x.p = p

		case DriverMock:
			x.mock = gpio.NewMock()
			x.p = x.mock

		default:
			return errors.NotValidf("config: hardware.driver=%s", cfg.Driver)
		}
		return nil
	})
	return x.p, x.err
}

// MockPins is not nil only with driver=mock.
func (g *Global) MockPins() *gpio.Mock {
	if _, err := g.Pins(); err != nil {
		return nil
	}
	return g.Hardware.pins.mock
}

func (g *Global) Keypad() (input.Source, error) {
	x := &g.Hardware.keypad // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Keypad
		if cfg.Evdev != "" {
			codes := make([]uint16, len(cfg.Codes))
			for i, c := range cfg.Codes {
				codes[i] = uint16(c)
			}
			kp, err := input.OpenEvdevKeypad(cfg.Evdev, codes, g.Log)
			if err != nil {
				return errors.Annotatef(err, "config: hardware.keypad.evdev=%s", cfg.Evdev)
			}
			x.src, x.evdev = kp, kp
			go func() {
				if err := kp.Run(); err != nil && g.Alive.IsRunning() {
					g.Error(err)
				}
			}()
			return nil
		}

		pins, err := g.Pins()
		if err != nil {
			return err
		}
		lines, err := gpio.ParseLines(cfg.Lines)
		if err != nil {
			return errors.Annotate(err, "config: hardware.keypad.lines")
		}
		kp, err := input.NewKeypad(pins, lines, cfg.ActiveLow)
		if err != nil {
			return errors.Annotate(err, "config: hardware.keypad")
		}
		x.src = kp
		return nil
	})
	return x.src, x.err
}

func (g *Global) Digits() (*segment.Bank, error) {
	x := &g.Hardware.digits // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Segment
		pins, err := g.Pins()
		if err != nil {
			return err
		}
		var sc segment.Config
		sc.CommonAnode = cfg.CommonAnode
		segs, err := gpio.ParseLines(cfg.Segments)
		if err != nil {
			return errors.Annotate(err, "config: hardware.segment.segments")
		}
		digits, err := gpio.ParseLines(cfg.Digits)
		if err != nil {
			return errors.Annotate(err, "config: hardware.segment.digits")
		}
		copy(sc.Segments[:], segs)
		copy(sc.Digits[:], digits)
		x.bank, err = segment.NewBank(pins, sc)
		return errors.Annotate(err, "config: hardware.segment")
	})
	return x.bank, x.err
}

// TextDisplay is HD44780 backed when enabled, in memory otherwise.
func (g *Global) TextDisplay() (*text_display.TextDisplay, error) {
	x := &g.Hardware.text // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.HD44780
		var dev text_display.Devicer
		if cfg.Enable {
			pins, err := g.Pins()
			if err != nil {
				return err
			}
			d, err := lcd.NewLCD(pins, cfg.Pinmap, uint8(cfg.Width), cfg.Page1)
			if err != nil {
				return errors.Annotatef(err, "config: hardware.hd44780=%#v", cfg)
			}
			dev = d
		} else {
			g.Log.Infof("hd44780 disabled, text display in memory")
			x.mock = lcd.NewMockDevice(uint8(cfg.Width))
			dev = x.mock
		}
		var err error
		x.d, err = text_display.NewTextDisplay(&text_display.TextDisplayConfig{
			Codepage: cfg.Codepage,
			Width:    uint32(cfg.Width),
		}, dev, g.Log)
		if err != nil {
			return errors.Annotate(err, "config: hardware.hd44780")
		}
		x.d.Clear()
		return nil
	})
	return x.d, x.err
}

// MockTextDevice is not nil when HD44780 is disabled.
func (g *Global) MockTextDevice() *lcd.MockDevice {
	if _, err := g.TextDisplay(); err != nil {
		return nil
	}
	return g.Hardware.text.mock
}

func (g *Global) Feedback() (*feedback.Sequencer, error) {
	x := &g.Hardware.feedback // short alias
	_ = x.do(func() error {
		cfg := &g.Config.Hardware.Feedback
		pins, err := g.Pins()
		if err != nil {
			return err
		}
		lines, err := gpio.ParseLines([]string{cfg.Buzzer, cfg.Lamp})
		if err != nil {
			return errors.Annotate(err, "config: hardware.feedback")
		}
		x.seq, err = feedback.NewSequencer(pins, lines[0], lines[1], g.Log.Clone(log2.LInfo))
		return errors.Annotate(err, "config: hardware.feedback")
	})
	return x.seq, x.err
}

// CloseHardware releases opened devices, safe to call without init.
func (g *Global) CloseHardware() error {
	errs := make([]error, 0, 2)
	if kp := g.Hardware.keypad.evdev; g.Hardware.keypad.done() && kp != nil {
		errs = append(errs, kp.Close())
	}
	if p := g.Hardware.pins.p; g.Hardware.pins.done() && p != nil {
		errs = append(errs, p.Close())
	}
	return helpers.FoldErrors(errs)
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
