// Package display multiplexes counter digits and renders status text.
package display

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/segment"
	"github.com/temoto/qcounter/internal/queue"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

// Digits is implemented by segment.Bank.
type Digits interface {
	Show(pos int, g segment.Glyph)
}

// Text is implemented by text_display.TextDisplay.
type Text interface {
	SetLines(line1, line2 string)
	Tick()
}

type Config struct {
	DigitHoldTicks uint16
	FlickerBudget  uint16
	ScrollTicks    uint16 // 0 disables text scroll
	Messages       Messages
}

// Frame is renderable state derived from counters and last status.
type Frame struct {
	Digits [types.CategoryCount]segment.Glyph
	Lit    int
	L1, L2 string
}

func (f Frame) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, g := range f.Digits {
		if i == f.Lit {
			fmt.Fprintf(&b, "(%s)", g.String())
		} else {
			fmt.Fprintf(&b, " %s ", g.String())
		}
	}
	fmt.Fprintf(&b, "]\n%s\n%s", f.L1, f.L2)
	return b.String()
}

type Multiplexer struct {
	Log    *log2.Log
	store  *queue.Store
	digits Digits
	text   Text
	c      Config
	pos    int
	lit    int
	held   uint16
	scroll uint16
	status types.Status
	seen   bool // any status reported
	dirty  bool
	l1, l2 string
}

var _ types.Reporter = &Multiplexer{} // compile-time interface test

func NewMultiplexer(store *queue.Store, digits Digits, text Text, c Config, log *log2.Log) (*Multiplexer, error) {
	if c.DigitHoldTicks == 0 {
		c.DigitHoldTicks = 1
	}
	if c.FlickerBudget == 0 {
		c.FlickerBudget = 1
	}
	if c.DigitHoldTicks > c.FlickerBudget {
		return nil, errors.NotValidf("display digit_hold_ticks=%d > flicker_budget=%d", c.DigitHoldTicks, c.FlickerBudget)
	}
	c.Messages = c.Messages.WithDefaults()
	self := &Multiplexer{
		Log:    log,
		store:  store,
		digits: digits,
		text:   text,
		c:      c,
		lit:    -1,
		dirty:  true,
	}
	self.l1, self.l2 = self.render()
	return self, nil
}

// Report remembers status for next Refresh.
func (self *Multiplexer) Report(s types.Status) {
	self.Log.Debugf("display %s", s.String())
	self.status = s
	self.seen = true
	self.dirty = true
}

// Tick lights current digit position then rotates after hold ticks.
func (self *Multiplexer) Tick() {
	if self.digits != nil {
		self.digits.Show(self.pos, self.glyph(self.pos))
	}
	self.lit = self.pos
	if self.held++; self.held >= self.c.DigitHoldTicks {
		self.held = 0
		self.pos = (self.pos + 1) % types.CategoryCount
	}
	if self.c.ScrollTicks != 0 && self.text != nil {
		if self.scroll++; self.scroll >= self.c.ScrollTicks {
			self.scroll = 0
			self.text.Tick()
		}
	}
}

// Refresh writes text only after a status change. Returns true if written.
func (self *Multiplexer) Refresh() bool {
	if !self.dirty {
		return false
	}
	self.dirty = false
	self.l1, self.l2 = self.render()
	if self.text != nil {
		self.text.SetLines(self.l1, self.l2)
	}
	return true
}

func (self *Multiplexer) Dirty() bool { return self.dirty }

// Pos is digit position lit on next Tick.
func (self *Multiplexer) Pos() int { return self.pos }

// Frame is pure projection, text lines are the ones last refreshed.
// Lit is position shown by last Tick or -1.
func (self *Multiplexer) Frame() Frame {
	f := Frame{Lit: self.lit, L1: self.l1, L2: self.l2}
	for i := range f.Digits {
		f.Digits[i] = self.glyph(i)
	}
	return f
}

func (self *Multiplexer) glyph(pos int) segment.Glyph {
	cur := self.store.Counter(types.Categories[pos]).Current
	if cur == types.TokenNone {
		return segment.GlyphBlank
	}
	return segment.Digit(uint(cur))
}

func (self *Multiplexer) render() (string, string) {
	if !self.seen {
		return self.c.Messages.Welcome, ""
	}
	return self.c.Messages.Lines(self.status)
}
