package scheduler

import (
	"fmt"
	"time"
)

type Stat struct {
	Ticks          uint64
	Events         uint64
	Issued         uint64
	Served         uint64
	QueueFull      uint64
	QueueEmpty     uint64
	AlreadyServing uint64
	TokenOverflow  uint64
	HALErrors      uint64
	CheckErrors    uint64 // store invariant violations
	Overruns       uint64 // ticks with work longer than period
	MaxTick        time.Duration
}

func (s Stat) String() string {
	return fmt.Sprintf("ticks=%d events=%d issued=%d served=%d queue_full=%d queue_empty=%d already_serving=%d token_overflow=%d hal_errors=%d check_errors=%d overruns=%d max_tick=%s",
		s.Ticks, s.Events, s.Issued, s.Served, s.QueueFull, s.QueueEmpty, s.AlreadyServing, s.TokenOverflow, s.HALErrors, s.CheckErrors, s.Overruns, s.MaxTick)
}
