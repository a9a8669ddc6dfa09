// Package queue owns the per-category token queues and counter states.
// Issuer appends tokens, Controller takes them for service; both write
// only through the Store they were built with.
package queue

import (
	"math"

	"github.com/juju/errors"
	"github.com/temoto/qcounter/internal/types"
)

const DefaultTokenLimit types.Token = math.MaxUint16

type CounterState struct {
	// token being served, TokenNone when idle
	Current types.Token
	// next token to issue, starts at 1
	Next types.Token
	// last representable token was issued, refuse more until Reset
	Exhausted bool
}

func (cs CounterState) Idle() bool { return cs.Current == types.TokenNone }

type Store struct {
	queues   [types.CategoryCount]Queue
	counters [types.CategoryCount]CounterState
	limit    types.Token
}

// NewStore returns empty idle store. Capacity is per category.
// Zero limit means DefaultTokenLimit.
func NewStore(capacity int, limit types.Token) (*Store, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, errors.NotValidf("queue capacity=%d (valid 1..%d)", capacity, MaxCapacity)
	}
	if limit == 0 {
		limit = DefaultTokenLimit
	}
	self := &Store{limit: limit}
	for _, c := range types.Categories {
		self.queues[c].setCap(uint8(capacity))
		self.counters[c].Next = 1
	}
	return self, nil
}

func (self *Store) Queue(c types.Category) *Queue { return &self.queues[c] }
func (self *Store) Counter(c types.Category) CounterState { return self.counters[c] }
func (self *Store) TokenLimit() types.Token { return self.limit }

// Waiting returns copy of queued tokens in FIFO order.
func (self *Store) Waiting(c types.Category) []types.Token {
	q := &self.queues[c]
	return q.AppendTo(make([]types.Token, 0, q.Len()))
}

// Reset is the operator level reset of one category: empty queue,
// idle counter, numbering restarts at 1.
func (self *Store) Reset(c types.Category) {
	self.queues[c].clear()
	self.counters[c] = CounterState{Next: 1}
}

// Check verifies invariants: queue tokens strictly increasing,
// below Next, above Current; Next never exceeds limit.
func (self *Store) Check() error {
	for _, c := range types.Categories {
		cs := &self.counters[c]
		q := &self.queues[c]
		if cs.Next == 0 || cs.Next > self.limit {
			return errors.Errorf("category=%s next=%d limit=%d", c.String(), cs.Next, self.limit)
		}
		prev := cs.Current
		for i := 0; i < q.Len(); i++ {
			t := q.buf[(int(q.head)+i)%MaxCapacity]
			if t <= prev {
				return errors.Errorf("category=%s queue not ascending at=%d token=%d prev=%d", c.String(), i, t, prev)
			}
			if t >= cs.Next && !cs.Exhausted {
				return errors.Errorf("category=%s token=%d not below next=%d", c.String(), t, cs.Next)
			}
			prev = t
		}
	}
	return nil
}

// allocate takes next token number or fails with ErrTokenOverflow.
func (self *Store) allocate(c types.Category) (types.Token, error) {
	cs := &self.counters[c]
	if cs.Exhausted {
		return types.TokenNone, ErrTokenOverflow
	}
	t := cs.Next
	if t >= self.limit {
		cs.Exhausted = true
	} else {
		cs.Next++
	}
	return t, nil
}
