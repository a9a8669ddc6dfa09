package queue

import "github.com/temoto/qcounter/internal/types"

type Issuer struct {
	store   *Store
	signal  types.Signaler
	report  types.Reporter
	pattern types.Pattern
}

// NewIssuer accepts nil signal or report, those outputs are skipped.
func NewIssuer(store *Store, signal types.Signaler, report types.Reporter, pattern types.Pattern) *Issuer {
	return &Issuer{store: store, signal: signal, report: report, pattern: pattern}
}

// Request issues next token of category c and appends it to the queue.
// Rejected request changes nothing but the displayed status.
func (self *Issuer) Request(c types.Category) (types.Token, error) {
	q := &self.store.queues[c]
	switch {
	case self.store.counters[c].Exhausted:
		self.status(types.StatusTokenOverflow, c, types.TokenNone)
		return types.TokenNone, ErrTokenOverflow
	case q.Full():
		self.status(types.StatusQueueFull, c, types.TokenNone)
		return types.TokenNone, ErrQueueFull
	}

	t, err := self.store.allocate(c)
	if err != nil {
		self.status(types.StatusTokenOverflow, c, types.TokenNone)
		return types.TokenNone, err
	}
	if !q.push(t) {
		panic("code error queue push after Full check")
	}
	self.status(types.StatusIssued, c, t)
	if self.signal != nil {
		self.signal.Signal(self.pattern)
	}
	return t, nil
}

func (self *Issuer) status(kind types.StatusKind, c types.Category, t types.Token) {
	if self.report != nil {
		self.report.Report(types.Status{Kind: kind, Category: c, Token: t})
	}
}
