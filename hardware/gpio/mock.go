package gpio

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/juju/errors"
)

// Mock is in-memory Pins for tests and the simulator.
// Outputs become visible to Output only after Flush, like buffered hardware.
type Mock struct {
	mu      sync.Mutex
	dirs    map[Line]Direction
	inputs  map[Line]bool
	pending map[Line]bool
	outputs map[Line]bool
	writes  map[Line]int
	flushes int
}

var _ Pins = &Mock{} // compile-time interface test

func NewMock() *Mock {
	return &Mock{
		dirs:    make(map[Line]Direction),
		inputs:  make(map[Line]bool),
		pending: make(map[Line]bool),
		outputs: make(map[Line]bool),
		writes:  make(map[Line]int),
	}
}

func (self *Mock) SetDirection(line Line, dir Direction) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if prev, ok := self.dirs[line]; ok && prev != dir {
		return errors.NotValidf("mock line=%d already %s", line, prev.String())
	}
	self.dirs[line] = dir
	return nil
}

func (self *Mock) ReadDigital(line Line) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	if dir, ok := self.dirs[line]; !ok || dir != DirectionInput {
		return false
	}
	return self.inputs[line]
}

func (self *Mock) WriteDigital(line Line, value bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if dir, ok := self.dirs[line]; !ok || dir != DirectionOutput {
		panic(fmt.Sprintf("code error mock write line=%d not output", line))
	}
	self.pending[line] = value
	self.writes[line]++
}

func (self *Mock) Flush() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	for l, v := range self.pending {
		self.outputs[l] = v
	}
	self.pending = make(map[Line]bool)
	self.flushes++
	return nil
}

func (self *Mock) Close() error { return nil }

// SetInput changes electrical level seen by ReadDigital.
func (self *Mock) SetInput(line Line, value bool) {
	self.mu.Lock()
	self.inputs[line] = value
	self.mu.Unlock()
}

func (self *Mock) Output(line Line) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.outputs[line]
}

func (self *Mock) Writes(line Line) int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.writes[line]
}

func (self *Mock) Flushes() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.flushes
}

func (self *Mock) Direction(line Line) (Direction, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	d, ok := self.dirs[line]
	return d, ok
}

// String lists high output lines, for logs and the simulator.
func (self *Mock) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	high := make([]int, 0, len(self.outputs))
	for l, v := range self.outputs {
		if v {
			high = append(high, int(l))
		}
	}
	sort.Ints(high)
	ss := make([]string, len(high))
	for i, l := range high {
		ss[i] = fmt.Sprint(l)
	}
	return "high=[" + strings.Join(ss, " ") + "]"
}
