package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTransient       = errors.New("temporarily unavailable")
)

var (
	ErrContractNotActive   = fmt.Errorf("%w: contract not active", ErrConflict)
	ErrAlreadyPaid         = fmt.Errorf("%w: already paid", ErrConflict)
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", ErrConflict)
	ErrDepositCapExceeded  = fmt.Errorf("%w: deposit exceeds cap", ErrConflict)
	ErrJobNotPaid          = fmt.Errorf("%w: job not paid", ErrConflict)
)

// DepositCapError is returned when a deposit is above the allowed share of the
// client's outstanding jobs. It matches ErrDepositCapExceeded and ErrConflict.
type DepositCapError struct {
	Ratio decimal.Decimal
	Limit decimal.Decimal
}

func (e *DepositCapError) Error() string {
	return fmt.Sprintf("%s: deposit exceeds %s%% cap (max %s)", ErrConflict, e.Ratio.Shift(2).String(), e.Limit.String())
}

func (e *DepositCapError) Is(target error) bool {
	return target == ErrDepositCapExceeded
}

func (e *DepositCapError) Unwrap() error {
	return ErrConflict
}
