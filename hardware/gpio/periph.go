package gpio

import (
	"strconv"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/log2"
	pgpio "periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// Periph drives lines with periph.io host drivers, writes are immediate.
type Periph struct {
	Log  *log2.Log
	Pull pgpio.Pull
	mu   sync.Mutex
	pins map[Line]pgpio.PinIO
}

var _ Pins = &Periph{} // compile-time interface test

func OpenPeriph(pull pgpio.Pull, log *log2.Log) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph/init")
	}
	return &Periph{
		Log:  log,
		Pull: pull,
		pins: make(map[Line]pgpio.PinIO),
	}, nil
}

// ParsePull maps config value to periph pull setting.
func ParsePull(s string) (pgpio.Pull, error) {
	switch s {
	case "", "up":
		return pgpio.PullUp, nil
	case "down":
		return pgpio.PullDown, nil
	case "float", "none":
		return pgpio.Float, nil
	}
	return pgpio.PullNoChange, errors.NotValidf("gpio pull=%s", s)
}

func (self *Periph) SetDirection(line Line, dir Direction) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	name := strconv.FormatUint(uint64(line), 10)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return errors.NotFoundf("periph gpio=%s", name)
	}
	var err error
	switch dir {
	case DirectionInput:
		err = pin.In(self.Pull, pgpio.NoEdge)
	case DirectionOutput:
		err = pin.Out(pgpio.Low)
	default:
		return errors.NotValidf("gpio direction=%d", dir)
	}
	if err != nil {
		return errors.Annotatef(err, "periph gpio=%s direction=%s", name, dir.String())
	}
	self.pins[line] = pin
	return nil
}

func (self *Periph) ReadDigital(line Line) bool {
	self.mu.Lock()
	pin, ok := self.pins[line]
	self.mu.Unlock()
	if !ok {
		self.Log.Errorf("periph read line=%d not configured", line)
		return false
	}
	return pin.Read() == pgpio.High
}

func (self *Periph) WriteDigital(line Line, value bool) {
	self.mu.Lock()
	pin, ok := self.pins[line]
	self.mu.Unlock()
	if !ok {
		self.Log.Errorf("periph write line=%d not configured", line)
		return
	}
	if err := pin.Out(pgpio.Level(value)); err != nil {
		self.Log.Errorf("periph write line=%d err=%v", line, err)
	}
}

func (self *Periph) Flush() error { return nil }
func (self *Periph) Close() error { return nil }
