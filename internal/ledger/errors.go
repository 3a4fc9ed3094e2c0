package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Code is the stable, machine-readable kind of a ledger error.
type Code string

const (
	CodeInvalidAccount    Code = "InvalidAccount"
	CodeNonPositiveAmount Code = "NonPositiveAmount"
	CodeInsufficientFunds Code = "InsufficientFunds"

	// CodeAmountOutOfRange rejects positive amounts whose decimal exponent
	// lies outside ±MaxAmountScale, such as 1e-30 or 5e40.
	CodeAmountOutOfRange Code = "AmountOutOfRange"
)

// Error is returned for every rule the ledger enforces. Callers branch on
// Code, either with errors.Is against the sentinels below or errors.As.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so a detailed error returned by
// an operation satisfies errors.Is(err, ErrInvalidAccount).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidAccount    = &Error{Code: CodeInvalidAccount, Message: "account does not exist"}
	ErrNonPositiveAmount = &Error{Code: CodeNonPositiveAmount, Message: "amount must be positive"}
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds, Message: "cannot withdraw more than current balance"}
	ErrAmountOutOfRange  = &Error{Code: CodeAmountOutOfRange, Message: "amount scale is out of range"}
)

func invalidAccount(accountId string) error {
	return &Error{Code: CodeInvalidAccount, Message: fmt.Sprintf("account %q does not exist", accountId)}
}

func nonPositiveAmount(amount decimal.Decimal) error {
	// printing an amount like -1e-10000000 would allocate megabytes
	if exp := amount.Exponent(); exp < -MaxAmountScale || exp > MaxAmountScale {
		return &Error{Code: CodeNonPositiveAmount, Message: "amount must be positive"}
	}
	return &Error{Code: CodeNonPositiveAmount, Message: fmt.Sprintf("amount must be positive, got %s", amount)}
}

func insufficientFunds(accountId string, amount, balance fmt.Stringer) error {
	return &Error{
		Code:    CodeInsufficientFunds,
		Message: fmt.Sprintf("cannot withdraw %s from %q: balance is %s", amount, accountId, balance),
	}
}

func amountOutOfRange(exponent int32) error {
	return &Error{
		Code:    CodeAmountOutOfRange,
		Message: fmt.Sprintf("amount exponent %d is outside ±%d", exponent, MaxAmountScale),
	}
}
