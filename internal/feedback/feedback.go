// Package feedback sequences buzzer and lamp pulses in scheduler ticks.
package feedback

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/gpio"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAudible
	PhaseVisual
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAudible:
		return "audible"
	case PhaseVisual:
		return "visual"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Sequencer plays one Pattern at a time. Signal while busy keeps the newest
// pattern pending, active pulse is never interrupted.
type Sequencer struct {
	Log       *log2.Log
	pins      gpio.Pins
	buzzer    gpio.Line
	lamp      gpio.Line
	phase     Phase
	remaining uint16
	active    types.Pattern
	pending   types.Pattern
	pend      bool
	// started by Signal in this tick, first Tick keeps remaining
	fresh bool
}

var _ types.Signaler = &Sequencer{} // compile-time interface test

func NewSequencer(pins gpio.Pins, buzzer, lamp gpio.Line, log *log2.Log) (*Sequencer, error) {
	if buzzer == lamp {
		return nil, errors.NotValidf("feedback buzzer=lamp=%d", buzzer)
	}
	if err := gpio.Setup(pins, gpio.DirectionOutput, buzzer, lamp); err != nil {
		return nil, errors.Annotate(err, "feedback")
	}
	self := &Sequencer{Log: log, pins: pins, buzzer: buzzer, lamp: lamp}
	pins.WriteDigital(buzzer, false)
	pins.WriteDigital(lamp, false)
	return self, nil
}

func (self *Sequencer) Signal(p types.Pattern) {
	if p.IsZero() {
		return
	}
	if self.phase == PhaseIdle {
		self.start(p)
		self.fresh = true
		return
	}
	if self.pend {
		self.Log.Debugf("feedback pending %s replaced by %s", self.pending.Name, p.Name)
	}
	self.pending = p
	self.pend = true
}

// Tick advances one scheduler tick. A pattern of N ticks keeps its output
// on for exactly N ticks whether it started from Signal or from pending.
func (self *Sequencer) Tick() {
	if self.fresh {
		self.fresh = false
		return
	}
	switch self.phase {
	case PhaseIdle:
		if self.pend {
			p := self.pending
			self.pending, self.pend = types.Pattern{}, false
			self.start(p)
		}

	case PhaseAudible:
		if self.remaining--; self.remaining == 0 {
			self.pins.WriteDigital(self.buzzer, false)
			if self.active.Visual != 0 {
				self.enter(PhaseVisual, self.active.Visual)
			} else {
				self.phase = PhaseIdle
			}
		}

	case PhaseVisual:
		if self.remaining--; self.remaining == 0 {
			self.pins.WriteDigital(self.lamp, false)
			self.phase = PhaseIdle
		}
	}
}

// State returns current phase and ticks left in it.
func (self *Sequencer) State() (Phase, uint16) { return self.phase, self.remaining }
func (self *Sequencer) Pending() (types.Pattern, bool) { return self.pending, self.pend }

func (self *Sequencer) start(p types.Pattern) {
	self.active = p
	if p.Audible != 0 {
		self.enter(PhaseAudible, p.Audible)
	} else {
		self.enter(PhaseVisual, p.Visual)
	}
}

func (self *Sequencer) enter(phase Phase, ticks uint16) {
	self.phase = phase
	self.remaining = ticks
	switch phase {
	case PhaseAudible:
		self.pins.WriteDigital(self.buzzer, true)
	case PhaseVisual:
		self.pins.WriteDigital(self.lamp, true)
	}
}
