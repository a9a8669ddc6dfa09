package gpio

import (
	"sync"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
	"github.com/temoto/qcounter/helpers"
	"github.com/temoto/qcounter/log2"
)

// Cdev drives lines through the Linux GPIO character device.
// Inputs and outputs are two line handles. Direction changes only mark them
// stale, handles are reopened once on next Sample or Flush and output values
// are restored.
type Cdev struct {
	Log      *log2.Log
	mu       sync.Mutex
	chip     gpio.Chiper
	consumer string
	inputs   []Line
	outputs  []Line
	inH      gpio.Lineser
	outH     gpio.Lineser
	inIdx    map[Line]int
	setters  map[Line]gpio.LineSetFunc
	values   map[Line]byte
	inCache  gpio.HandleData
	stale    bool
	dirty    bool
}

var _ Pins = &Cdev{} // compile-time interface test

func OpenCdev(path, consumer string, log *log2.Log) (*Cdev, error) {
	chip, err := gpio.Open(path, consumer)
	if err != nil {
		return nil, errors.Annotatef(err, "gpio open chip=%s", path)
	}
	return NewCdev(chip, consumer, log), nil
}

func NewCdev(chip gpio.Chiper, consumer string, log *log2.Log) *Cdev {
	return &Cdev{
		Log:      log,
		chip:     chip,
		consumer: consumer,
		inIdx:    make(map[Line]int),
		setters:  make(map[Line]gpio.LineSetFunc),
		values:   make(map[Line]byte),
	}
}

func (self *Cdev) SetDirection(line Line, dir Direction) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	switch dir {
	case DirectionInput, DirectionOutput:
	default:
		return errors.NotValidf("gpio direction=%d", dir)
	}
	self.inputs = removeLine(self.inputs, line)
	self.outputs = removeLine(self.outputs, line)
	if dir == DirectionInput {
		self.inputs = append(self.inputs, line)
		delete(self.values, line)
	} else {
		self.outputs = append(self.outputs, line)
		if _, ok := self.values[line]; !ok {
			self.values[line] = 0
		}
	}
	self.stale = true
	return nil
}

// Sample reads all input lines with one request, ReadDigital serves cached values.
func (self *Cdev) Sample() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if err := self.reopen(); err != nil {
		return err
	}
	if self.inH == nil {
		return nil
	}
	data, err := self.inH.Read()
	if err != nil {
		return errors.Annotate(err, "gpio read")
	}
	self.inCache = data
	return nil
}

func (self *Cdev) ReadDigital(line Line) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	idx, ok := self.inIdx[line]
	if !ok {
		if !self.stale {
			self.Log.Errorf("gpio read line=%d not configured as input", line)
		}
		return false
	}
	return self.inCache.Values[idx] != 0
}

func (self *Cdev) WriteDigital(line Line, value bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if _, ok := self.values[line]; !ok {
		self.Log.Errorf("gpio write line=%d not configured as output", line)
		return
	}
	b := b2byte(value)
	self.values[line] = b
	if set, ok := self.setters[line]; ok {
		set(b)
	}
	self.dirty = true
}

func (self *Cdev) Flush() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if err := self.reopen(); err != nil {
		return err
	}
	if !self.dirty || self.outH == nil {
		return nil
	}
	self.dirty = false
	return errors.Annotate(self.outH.Flush(), "gpio flush")
}

func (self *Cdev) Close() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	return helpers.FoldErrors([]error{self.closeHandles(), self.chip.Close()})
}

// reopen applies pending direction changes, caller holds mu.
func (self *Cdev) reopen() error {
	if !self.stale {
		return nil
	}
	if err := self.closeHandles(); err != nil {
		return err
	}
	if err := self.open(); err != nil {
		return err
	}
	for l, v := range self.values {
		self.setters[l](v)
	}
	self.dirty = len(self.outputs) != 0
	self.stale = false
	return nil
}

func (self *Cdev) open() error {
	var err error
	if len(self.inputs) != 0 {
		self.inH, err = self.chip.OpenLines(gpio.GPIOHANDLE_REQUEST_INPUT, self.consumer, lineOffsets(self.inputs)...)
		if err != nil {
			return errors.Annotatef(err, "gpio open inputs=%v", self.inputs)
		}
		for i, l := range self.inputs {
			self.inIdx[l] = i
		}
	}
	if len(self.outputs) != 0 {
		self.outH, err = self.chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, self.consumer, lineOffsets(self.outputs)...)
		if err != nil {
			return errors.Annotatef(err, "gpio open outputs=%v", self.outputs)
		}
		for _, l := range self.outputs {
			self.setters[l] = self.outH.SetFunc(uint32(l))
		}
	}
	return nil
}

func (self *Cdev) closeHandles() error {
	errs := make([]error, 0, 2)
	if self.inH != nil {
		errs = append(errs, self.inH.Close())
		self.inH = nil
	}
	if self.outH != nil {
		errs = append(errs, self.outH.Close())
		self.outH = nil
	}
	self.inIdx = make(map[Line]int)
	self.setters = make(map[Line]gpio.LineSetFunc)
	self.inCache = gpio.HandleData{}
	return helpers.FoldErrors(errs)
}

func lineOffsets(lines []Line) []uint32 {
	offsets := make([]uint32, len(lines))
	for i, l := range lines {
		offsets[i] = uint32(l)
	}
	return offsets
}

func removeLine(lines []Line, line Line) []Line {
	for i, l := range lines {
		if l == line {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}
