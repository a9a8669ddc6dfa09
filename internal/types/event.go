package types

import "fmt"

// Pattern is one feedback sequence, audible phase then visual phase.
// Durations are in scheduler ticks, zero skips the phase.
type Pattern struct {
	Name    string
	Audible uint16
	Visual  uint16
}

func (p Pattern) IsZero() bool { return p.Audible == 0 && p.Visual == 0 }

type StatusKind uint8

const (
	StatusIdle StatusKind = iota
	StatusIssued
	StatusServing
	StatusQueueFull
	StatusQueueEmpty
	StatusAlreadyServing
	StatusTokenOverflow
	StatusReset
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "Idle"
	case StatusIssued:
		return "Issued"
	case StatusServing:
		return "Serving"
	case StatusQueueFull:
		return "QueueFull"
	case StatusQueueEmpty:
		return "QueueEmpty"
	case StatusAlreadyServing:
		return "AlreadyServing"
	case StatusTokenOverflow:
		return "TokenOverflow"
	case StatusReset:
		return "Reset"
	}
	return fmt.Sprintf("StatusKind(%d)", uint8(k))
}

// Status is a state-changing event surfaced on the text display.
type Status struct {
	Kind     StatusKind
	Category Category
	Token    Token
}

func (s Status) String() string {
	return fmt.Sprintf("Status(%s category=%s token=%d)", s.Kind.String(), s.Category.String(), s.Token)
}

type Signaler interface {
	Signal(Pattern)
}

type Reporter interface {
	Report(Status)
}
