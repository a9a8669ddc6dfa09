package types

import (
	"fmt"

	"github.com/juju/errors"
)

type Category uint8

const (
	WithdrawDeposit Category = iota
	AccountOpening
	LoanServices
	GeneralInquiry
)

// Count of categories, size of every per-category array.
const CategoryCount = 4

var Categories = [CategoryCount]Category{WithdrawDeposit, AccountOpening, LoanServices, GeneralInquiry}

func (c Category) Valid() bool { return c < CategoryCount }

func (c Category) String() string {
	switch c {
	case WithdrawDeposit:
		return "WithdrawDeposit"
	case AccountOpening:
		return "AccountOpening"
	case LoanServices:
		return "LoanServices"
	case GeneralInquiry:
		return "GeneralInquiry"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Key is the short name used in config and the simulator shell.
func (c Category) Key() string {
	switch c {
	case WithdrawDeposit:
		return "withdraw"
	case AccountOpening:
		return "account"
	case LoanServices:
		return "loan"
	case GeneralInquiry:
		return "inquiry"
	}
	return ""
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if s == c.Key() || s == c.String() || s == fmt.Sprint(uint8(c)+1) {
			return c, nil
		}
	}
	return 0, errors.NotValidf("category=%s (withdraw, account, loan, inquiry or 1-4)", s)
}

// Token is a per-category sequence number, zero means none.
type Token uint16

const TokenNone Token = 0
