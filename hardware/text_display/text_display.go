// Package text_display keeps two text lines and writes changes to a
// character device. Long lines scroll when Tick is called.
package text_display

import (
	"bytes"
	"fmt"

	"github.com/juju/errors"
	"github.com/paulrosania/go-charset/charset"
	_ "github.com/paulrosania/go-charset/data"
	"github.com/temoto/qcounter/log2"
)

const MaxWidth = 40

var spaceBytes = bytes.Repeat([]byte{' '}, MaxWidth)

// Devicer is the character display driver boundary.
type Devicer interface {
	Clear()
	SetCursor(row, col uint8) bool
	WriteChar(c byte)
}

type TextDisplay struct {
	Log   *log2.Log
	dev   Devicer
	tr    charset.Translator
	width uint32
	state State
	shown [2][MaxWidth]byte
	valid bool // shown matches device
	tick  uint32
	upd   chan<- State
}

type TextDisplayConfig struct {
	Codepage string
	Width    uint32
}

func NewTextDisplay(opt *TextDisplayConfig, dev Devicer, log *log2.Log) (*TextDisplay, error) {
	if opt == nil {
		opt = &TextDisplayConfig{}
	}
	if opt.Width == 0 {
		opt.Width = 16
	}
	if opt.Width > MaxWidth {
		return nil, errors.NotValidf("text display width=%d max=%d", opt.Width, MaxWidth)
	}
	self := &TextDisplay{
		Log:   log,
		dev:   dev,
		width: opt.Width,
	}
	if opt.Codepage != "" {
		if err := self.SetCodepage(opt.Codepage); err != nil {
			return nil, errors.Annotatef(err, "text display codepage=%s", opt.Codepage)
		}
	}
	return self, nil
}

func (self *TextDisplay) SetCodepage(cp string) error {
	tr, err := charset.TranslatorTo(cp)
	if err != nil {
		return err
	}
	self.tr = tr
	return nil
}

func (self *TextDisplay) Width() uint32 { return self.width }

// Clear blanks device and forgets written content.
func (self *TextDisplay) Clear() {
	self.state.Clear()
	self.dev.Clear()
	for i := range self.shown {
		copy(self.shown[i][:], spaceBytes)
	}
	self.valid = true
}

// SetLines nil keeps line, len=0 sets empty.
func (self *TextDisplay) SetLinesBytes(b1, b2 []byte) {
	if b1 != nil {
		self.state.L1 = b1
	}
	if b2 != nil {
		self.state.L2 = b2
	}
	self.tick = 0
	self.flush()
}

func (self *TextDisplay) SetLines(line1, line2 string) {
	if self.Log.Enabled(log2.LDebug) && (string(self.state.L1) != line1 || string(self.state.L2) != line2) {
		self.Log.Debugf("text display l1=%q l2=%q", line1, line2)
	}
	self.SetLinesBytes(self.Translate(line1), self.Translate(line2))
}

// Tick scrolls lines longer than width by one position.
func (self *TextDisplay) Tick() {
	if uint32(len(self.state.L1)) <= self.width && uint32(len(self.state.L2)) <= self.width {
		return
	}
	self.tick++
	self.flush()
}

func (self *TextDisplay) Translate(s string) []byte {
	if len(s) == 0 {
		return spaceBytes[:0]
	}
	result := []byte(s)
	if self.tr != nil {
		_, tb, err := self.tr.Translate(result, true)
		if err != nil {
			self.Log.Errorf("text display translate s=%q err=%v", s, err)
			return result
		}
		// translator reuses single internal buffer, make a copy
		result = append([]byte(nil), tb...)
	}
	return result
}

func (self *TextDisplay) SetUpdateChan(ch chan<- State) {
	self.upd = ch
}

func (self *TextDisplay) State() State { return self.state.Copy() }

// flush writes only characters that differ from device content.
func (self *TextDisplay) flush() {
	var buf [2][MaxWidth]byte
	scrollWrap(buf[0][:self.width], self.state.L1, self.tick)
	scrollWrap(buf[1][:self.width], self.state.L2, self.tick)

	for row := range buf {
		next := buf[row][:self.width]
		prev := self.shown[row][:self.width]
		if self.valid && bytes.Equal(next, prev) {
			continue
		}
		cursor := false
		for col := uint8(0); col < uint8(self.width); col++ {
			if self.valid && next[col] == prev[col] {
				cursor = false
				continue
			}
			if !cursor {
				if !self.dev.SetCursor(uint8(row), col) {
					self.Log.Errorf("text display cursor row=%d col=%d rejected", row, col)
					break
				}
				cursor = true
			}
			self.dev.WriteChar(next[col])
		}
		copy(prev, next)
	}
	self.valid = true

	if self.upd != nil {
		self.upd <- self.state.Copy()
	}
}

type State struct {
	L1, L2 []byte
}

func (s *State) Clear() {
	s.L1 = nil
	s.L2 = nil
}

func (s State) Copy() State {
	return State{
		L1: append([]byte(nil), s.L1...),
		L2: append([]byte(nil), s.L2...),
	}
}

func (s State) Format(width uint32) string {
	return fmt.Sprintf("%s\n%s",
		PadSpace(s.L1, width),
		PadSpace(s.L2, width),
	)
}

func (s State) String() string {
	return fmt.Sprintf("%s\n%s", s.L1, s.L2)
}

func PadSpace(b []byte, width uint32) []byte {
	l := uint32(len(b))

	if l == 0 {
		return spaceBytes[:width]
	}
	if l >= width {
		return b
	}
	buf := make([]byte, 0, width)
	buf = append(append(buf, b...), spaceBytes[:width-l]...)
	return buf
}

// relies that len(buf) == display width
func scrollWrap(buf []byte, content []byte, tick uint32) uint32 {
	length := uint32(len(content))
	width := uint32(len(buf))
	gap := uint32(width / 2)
	n := 0
	if length <= width {
		n = copy(buf, content)
		copy(buf[n:], spaceBytes)
		return uint32(n)
	}

	offset := tick % (length + gap)
	if offset < length {
		n = copy(buf, content[offset:])
	} else {
		gap = gap - (offset - length)
	}
	n += copy(buf[n:], spaceBytes[:gap])
	n += copy(buf[n:], content[0:])
	return uint32(n)
}
