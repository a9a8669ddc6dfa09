package display

import (
	"strconv"
	"strings"

	"github.com/temoto/qcounter/internal/types"
)

// Names of service categories for text line 1.
type Names struct {
	Withdraw string `hcl:"withdraw"`
	Account  string `hcl:"account"`
	Loan     string `hcl:"loan"`
	Inquiry  string `hcl:"inquiry"`
}

func (n Names) Get(c types.Category) string {
	switch c {
	case types.WithdrawDeposit:
		return n.Withdraw
	case types.AccountOpening:
		return n.Account
	case types.LoanServices:
		return n.Loan
	case types.GeneralInquiry:
		return n.Inquiry
	}
	return c.String()
}

// Messages are line 2 templates, %d is replaced with token number.
type Messages struct {
	Welcome        string `hcl:"msg_welcome"`
	Issued         string `hcl:"msg_issued"`
	Serving        string `hcl:"msg_serving"`
	Idle           string `hcl:"msg_idle"`
	QueueFull      string `hcl:"msg_queue_full"`
	QueueEmpty     string `hcl:"msg_queue_empty"`
	AlreadyServing string `hcl:"msg_already_serving"`
	TokenOverflow  string `hcl:"msg_token_overflow"`
	Reset          string `hcl:"msg_reset"`
	Names          Names  `hcl:"names"`
}

func DefaultMessages() Messages {
	return Messages{
		Welcome:        "Please take a token",
		Issued:         "Token: %d",
		Serving:        "Token: %d",
		Idle:           "Counter free",
		QueueFull:      "Queue full",
		QueueEmpty:     "No one waiting",
		AlreadyServing: "Serving %d",
		TokenOverflow:  "Tokens exhausted",
		Reset:          "Queue reset",
		Names: Names{
			Withdraw: "Withdraw/Deposit",
			Account:  "Account Opening",
			Loan:     "Loan Services",
			Inquiry:  "General Inquiry",
		},
	}
}

// WithDefaults fills empty fields from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	d := DefaultMessages()
	fill := func(s *string, def string) {
		if *s == "" {
			*s = def
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.Issued, d.Issued)
	fill(&m.Serving, d.Serving)
	fill(&m.Idle, d.Idle)
	fill(&m.QueueFull, d.QueueFull)
	fill(&m.QueueEmpty, d.QueueEmpty)
	fill(&m.AlreadyServing, d.AlreadyServing)
	fill(&m.TokenOverflow, d.TokenOverflow)
	fill(&m.Reset, d.Reset)
	fill(&m.Names.Withdraw, d.Names.Withdraw)
	fill(&m.Names.Account, d.Names.Account)
	fill(&m.Names.Loan, d.Names.Loan)
	fill(&m.Names.Inquiry, d.Names.Inquiry)
	return m
}

// Lines renders status into two text lines.
func (m Messages) Lines(s types.Status) (string, string) {
	var tpl string
	switch s.Kind {
	case types.StatusIdle:
		tpl = m.Idle
	case types.StatusIssued:
		tpl = m.Issued
	case types.StatusServing:
		tpl = m.Serving
	case types.StatusQueueFull:
		tpl = m.QueueFull
	case types.StatusQueueEmpty:
		tpl = m.QueueEmpty
	case types.StatusAlreadyServing:
		tpl = m.AlreadyServing
	case types.StatusTokenOverflow:
		tpl = m.TokenOverflow
	case types.StatusReset:
		tpl = m.Reset
	default:
		tpl = s.Kind.String()
	}
	return m.Names.Get(s.Category), strings.Replace(tpl, "%d", strconv.Itoa(int(s.Token)), -1)
}
