package lcd

import (
	"bytes"
	"fmt"
	"sync"
)

// MockDevice is in-memory character display with HD44780 cursor semantics.
type MockDevice struct {
	mu       sync.Mutex
	width    uint8
	rows     [Rows][]byte
	row, col uint8
	writes   int
	clears   int
}

func NewMockDevice(width uint8) *MockDevice {
	self := &MockDevice{width: width}
	self.clear()
	return self
}

func (self *MockDevice) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.clear()
	self.clears++
}

func (self *MockDevice) SetCursor(row, col uint8) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	if row >= Rows || col >= self.width {
		return false
	}
	self.row, self.col = row, col
	return true
}

// WriteChar past last column is dropped.
func (self *MockDevice) WriteChar(c byte) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.col < self.width {
		self.rows[self.row][self.col] = c
		self.col++
	}
	self.writes++
}

func (self *MockDevice) Line(row uint8) string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return string(self.rows[row])
}

// Writes counts WriteChar calls.
func (self *MockDevice) Writes() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.writes
}

func (self *MockDevice) Clears() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.clears
}

func (self *MockDevice) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return fmt.Sprintf("%s\n%s", self.rows[0], self.rows[1])
}

func (self *MockDevice) clear() {
	for i := range self.rows {
		self.rows[i] = bytes.Repeat([]byte{' '}, int(self.width))
	}
	self.row, self.col = 0, 0
}
