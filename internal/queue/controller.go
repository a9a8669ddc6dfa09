package queue

import "github.com/temoto/qcounter/internal/types"

type Controller struct {
	store   *Store
	signal  types.Signaler
	report  types.Reporter
	pattern types.Pattern
}

func NewController(store *Store, signal types.Signaler, report types.Reporter, pattern types.Pattern) *Controller {
	return &Controller{store: store, signal: signal, report: report, pattern: pattern}
}

// CallNext takes queue head for service on an idle counter.
// Occupied counter is left as is with ErrAlreadyServing.
func (self *Controller) CallNext(c types.Category) (types.Token, error) {
	cs := &self.store.counters[c]
	if !cs.Idle() {
		self.status(types.StatusAlreadyServing, c, cs.Current)
		return cs.Current, ErrAlreadyServing
	}
	return self.take(c)
}

// Advance finishes current service and takes queue head in one step.
// With empty queue the counter ends idle and ErrQueueEmpty is returned.
func (self *Controller) Advance(c types.Category) (types.Token, error) {
	self.store.counters[c].Current = types.TokenNone
	return self.take(c)
}

// Release makes counter idle without taking next token.
func (self *Controller) Release(c types.Category) types.Token {
	cs := &self.store.counters[c]
	prev := cs.Current
	cs.Current = types.TokenNone
	self.status(types.StatusIdle, c, prev)
	return prev
}

func (self *Controller) take(c types.Category) (types.Token, error) {
	t, ok := self.store.queues[c].pop()
	if !ok {
		self.status(types.StatusQueueEmpty, c, types.TokenNone)
		return types.TokenNone, ErrQueueEmpty
	}
	self.store.counters[c].Current = t
	self.status(types.StatusServing, c, t)
	if self.signal != nil {
		self.signal.Signal(self.pattern)
	}
	return t, nil
}

func (self *Controller) status(kind types.StatusKind, c types.Category, t types.Token) {
	if self.report != nil {
		self.report.Report(types.Status{Kind: kind, Category: c, Token: t})
	}
}
