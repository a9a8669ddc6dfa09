package input

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/temoto/inputevent-go"
	"github.com/temoto/qcounter/log2"
)

const EvdevTag = "dev-input-event"

// linux/input-event-codes.h
const evKey uint16 = 0x01

// EvdevKeypad keeps pressed state of Linux input keys mapped to controls.
// Run reads events in background, Scan is lock free snapshot.
type EvdevKeypad struct {
	Log   *log2.Log
	r     io.ReadCloser
	codes map[uint16]Control
	down  uint32 // bit per Control
}

var _ Source = &EvdevKeypad{} // compile-time interface test

func OpenEvdevKeypad(device string, codes []uint16, log *log2.Log) (*EvdevKeypad, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Annotate(err, EvdevTag)
	}
	self, err := NewEvdevKeypad(f, codes, log)
	if err != nil {
		f.Close()
		return nil, err
	}
	return self, nil
}

func NewEvdevKeypad(r io.ReadCloser, codes []uint16, log *log2.Log) (*EvdevKeypad, error) {
	if len(codes) != ControlCount {
		return nil, errors.NotValidf("%s codes count=%d expected=%d", EvdevTag, len(codes), ControlCount)
	}
	self := &EvdevKeypad{
		Log:   log,
		r:     r,
		codes: make(map[uint16]Control, ControlCount),
	}
	for i, code := range codes {
		if _, ok := self.codes[code]; ok {
			return nil, errors.NotValidf("%s code=%d duplicate", EvdevTag, code)
		}
		self.codes[code] = Control(i)
	}
	return self, nil
}

func (self *EvdevKeypad) String() string { return EvdevTag }

// Run blocks until read error. io.EOF is returned as nil.
func (self *EvdevKeypad) Run() error {
	for {
		ie, err := inputevent.ReadOne(self.r)
		if err != nil {
			if errors.Cause(err) == io.EOF {
				return nil
			}
			return errors.Annotate(err, EvdevTag)
		}
		if ie.Type != evKey {
			continue
		}
		ctl, ok := self.codes[ie.Code]
		if !ok {
			self.Log.Debugf("%s unmapped key=%d", EvdevTag, ie.Code)
			continue
		}
		switch ie.Value {
		case int32(inputevent.KeyStateUp):
			self.set(ctl, false)
		case int32(inputevent.KeyStateDown), int32(inputevent.KeyStateHold):
			self.set(ctl, true)
		}
	}
}

func (self *EvdevKeypad) Close() error { return self.r.Close() }

func (self *EvdevKeypad) Scan() Levels {
	var lv Levels
	down := atomic.LoadUint32(&self.down)
	for i := range lv {
		lv[i] = down&(1<<uint(i)) != 0
	}
	return lv
}

func (self *EvdevKeypad) set(c Control, pressed bool) {
	bit := uint32(1) << uint(c)
	for {
		old := atomic.LoadUint32(&self.down)
		next := old &^ bit
		if pressed {
			next = old | bit
		}
		if atomic.CompareAndSwapUint32(&self.down, old, next) {
			return
		}
	}
}
