// Package scheduler runs the cooperative tick loop: input scan, queue
// operations, feedback, display, then one HAL flush.
package scheduler

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/atomic_clock"
	"github.com/temoto/qcounter/hardware/gpio"
	"github.com/temoto/qcounter/hardware/input"
	"github.com/temoto/qcounter/internal/display"
	"github.com/temoto/qcounter/internal/feedback"
	"github.com/temoto/qcounter/internal/queue"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

const DefaultPeriod = 2 * time.Millisecond

type Config struct {
	Period       time.Duration
	StatInterval uint64 // ticks between debug stat logs, 0 disables
}

type Parts struct {
	Pins       gpio.Pins
	Source     input.Source
	Debouncer  *input.Debouncer
	Store      *queue.Store
	Issuer     *queue.Issuer
	Controller *queue.Controller
	Feedback   *feedback.Sequencer
	Display    *display.Multiplexer
}

func (p *Parts) validate() error {
	switch {
	case p.Pins == nil:
		return errors.NotValidf("scheduler Pins=nil")
	case p.Source == nil:
		return errors.NotValidf("scheduler Source=nil")
	case p.Debouncer == nil:
		return errors.NotValidf("scheduler Debouncer=nil")
	case p.Store == nil || p.Issuer == nil || p.Controller == nil:
		return errors.NotValidf("scheduler queue parts=nil")
	case p.Feedback == nil:
		return errors.NotValidf("scheduler Feedback=nil")
	case p.Display == nil:
		return errors.NotValidf("scheduler Display=nil")
	}
	return nil
}

// Loop owns all engine state, methods must be called from one goroutine.
type Loop struct {
	Log    *log2.Log
	p      Parts
	c      Config
	events []input.KeyEvent
	// call control press already took a token, long event of same press is ignored
	pressTook  [types.CategoryCount]bool
	halFailing bool
	stat       Stat
}

func NewLoop(p Parts, c Config, log *log2.Log) (*Loop, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
	self := &Loop{
		Log:    log,
		p:      p,
		c:      c,
		events: make([]input.KeyEvent, 0, 2*input.ControlCount),
	}
	return self, nil
}

func (self *Loop) Period() time.Duration { return self.c.Period }
func (self *Loop) Stat() Stat            { return self.stat }

// Debouncer exposes window and hold for operator tools.
func (self *Loop) Debouncer() *input.Debouncer { return self.p.Debouncer }

// Check verifies store invariants, counted in stat on failure.
func (self *Loop) Check() error {
	err := self.p.Store.Check()
	if err != nil {
		self.stat.CheckErrors++
	}
	return err
}

func (self *Loop) logCheck() {
	if err := self.Check(); err != nil {
		self.Log.Errorf("scheduler store check err=%v", err)
	}
}

// Tick does a bounded amount of work: one poll, routed events,
// one feedback step, one digit slice, text refresh if dirty, flush.
func (self *Loop) Tick() {
	start := atomic_clock.Now()

	self.hal(gpio.Sample(self.p.Pins))
	self.events = self.p.Debouncer.Poll(self.p.Source.Scan(), self.events[:0])
	for _, e := range self.events {
		self.Dispatch(e)
	}
	self.p.Feedback.Tick()
	self.p.Display.Tick()
	self.p.Display.Refresh()
	self.hal(self.p.Pins.Flush())

	self.stat.Ticks++
	elapsed := atomic_clock.Since(start)
	if elapsed > self.stat.MaxTick {
		self.stat.MaxTick = elapsed
	}
	if elapsed > self.c.Period {
		self.stat.Overruns++
	}
	if self.c.StatInterval != 0 && self.stat.Ticks%self.c.StatInterval == 0 {
		self.Log.Debugf("scheduler stat %s", self.stat.String())
		self.logCheck()
	}
}

// Dispatch routes one key event to issuer or controller.
func (self *Loop) Dispatch(e input.KeyEvent) {
	self.stat.Events++
	c := e.Control.Category()
	switch e.Control.Kind() {
	case input.KindToken:
		if e.Long {
			return
		}
		_, err := self.p.Issuer.Request(c)
		self.count(err)
		if err == nil {
			self.stat.Issued++
		}

	case input.KindCall:
		var err error
		if e.Long {
			if self.pressTook[c] {
				self.Log.Debugf("scheduler %s long ignored, press already called", e.Control.String())
				return
			}
			_, err = self.p.Controller.Advance(c)
		} else {
			_, err = self.p.Controller.CallNext(c)
			self.pressTook[c] = err == nil
		}
		self.count(err)
		if err == nil {
			self.stat.Served++
		}
	}
}

// Release makes counter idle.
func (self *Loop) Release(c types.Category) types.Token {
	return self.p.Controller.Release(c)
}

// Reset is operator reset of one category: queue, counter, exhausted flag.
func (self *Loop) Reset(c types.Category) {
	self.p.Store.Reset(c)
	self.p.Display.Report(types.Status{Kind: types.StatusReset, Category: c})
	self.Log.Infof("scheduler reset category=%s", c.String())
}

// Run ticks until a is stopped. Current tick always completes.
func (self *Loop) Run(a *alive.Alive) {
	if !a.Add(1) {
		return
	}
	defer a.Done()
	tmr := time.NewTicker(self.c.Period)
	defer tmr.Stop()
	stopch := a.StopChan()
	self.Log.Infof("scheduler run period=%s debounce=%d hold=%d",
		self.c.Period, self.p.Debouncer.Window(), self.p.Debouncer.Hold())
	for {
		select {
		case <-tmr.C:
			self.Tick()
		case <-stopch:
			self.Log.Debugf("scheduler stop stat %s", self.stat.String())
			return
		}
	}
}

func (self *Loop) count(err error) {
	switch err {
	case nil:
	case queue.ErrQueueFull:
		self.stat.QueueFull++
	case queue.ErrQueueEmpty:
		self.stat.QueueEmpty++
	case queue.ErrAlreadyServing:
		self.stat.AlreadyServing++
	case queue.ErrTokenOverflow:
		self.stat.TokenOverflow++
	default:
		self.Log.Errorf("scheduler unexpected err=%v", errors.ErrorStack(err))
	}
}

// hal logs first error of a failing streak.
func (self *Loop) hal(err error) {
	if err == nil {
		self.halFailing = false
		return
	}
	self.stat.HALErrors++
	if !self.halFailing {
		self.Log.Errorf("scheduler hal err=%v", err)
	}
	self.halFailing = true
}
