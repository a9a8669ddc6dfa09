// Package input turns raw keypad levels into debounced key events.
package input

import (
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/temoto/qcounter/internal/types"
)

// Control is one of eight physical buttons. Numeric order is scan order:
// token controls first, then call controls, ascending category.
type Control uint8

const (
	TokenWithdraw Control = iota
	TokenAccount
	TokenLoan
	TokenInquiry
	CallWithdraw
	CallAccount
	CallLoan
	CallInquiry
)

const ControlCount = 8

type Kind uint8

const (
	KindToken Kind = iota
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindCall:
		return "call"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func TokenControl(c types.Category) Control { return Control(c) }
func CallControl(c types.Category) Control  { return Control(c) + types.CategoryCount }

func (c Control) Kind() Kind {
	if c < types.CategoryCount {
		return KindToken
	}
	return KindCall
}

func (c Control) Category() types.Category {
	return types.Category(c % types.CategoryCount)
}

func (c Control) String() string {
	if c >= ControlCount {
		return fmt.Sprintf("Control(%d)", uint8(c))
	}
	return c.Kind().String() + "/" + c.Category().Key()
}

// ParseControl accepts "token/loan", "c/3" and other kind/category forms.
func ParseControl(s string) (Control, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, errors.NotValidf("control=%s expected kind/category", s)
	}
	c, err := types.ParseCategory(parts[1])
	if err != nil {
		return 0, errors.Annotatef(err, "control=%s", s)
	}
	switch parts[0] {
	case "token", "t":
		return TokenControl(c), nil
	case "call", "c":
		return CallControl(c), nil
	}
	return 0, errors.NotValidf("control=%s kind valid: token, call", s)
}

// KeyEvent is consumed within the tick it was produced.
// Long marks the hold event produced after the press event.
type KeyEvent struct {
	Control Control
	Long    bool
}

func (e KeyEvent) String() string {
	if e.Long {
		return "KeyEvent(" + e.Control.String() + " long)"
	}
	return "KeyEvent(" + e.Control.String() + ")"
}

// Levels is instant pressed state of all controls, indexed by Control.
type Levels [ControlCount]bool

// Source provides raw (not debounced) levels once per poll.
type Source interface {
	Scan() Levels
	String() string
}
