package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the account ledger
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInvalidAmount       = errors.New("invalid amount: must be positive")
	ErrInsufficientFunds   = errors.New("insufficient funds: minimum balance must be maintained")
	ErrOverdraftExceeded   = errors.New("withdrawal exceeds overdraft limit")
	ErrSameAccount         = errors.New("source and destination accounts cannot be the same")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidCustomerType = errors.New("invalid customer type")
	ErrMalformedRecord     = errors.New("malformed record")

	ErrAccountAlreadyExists  = errors.New("account already exists")
	ErrCustomerAlreadyExists = errors.New("customer already exists")

	// ErrSimulationTimeout is a harness failure, not a ledger rejection.
	ErrSimulationTimeout = errors.New("simulation did not finish before the timeout")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

type TransactionError struct {
	Operation string
	Cause     error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction error during '%s': %v", e.Operation, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}

func NewTransactionError(operation string, cause error) error {
	return &TransactionError{
		Operation: operation,
		Cause:     cause,
	}
}

// MalformedRecordError is scoped to a single persisted row. Loaders log it and
// move on to the next row.
type MalformedRecordError struct {
	Source string
	Line   int
	Record string
	Cause  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record in %s at line %d (%q): %v", e.Source, e.Line, e.Record, e.Cause)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Cause
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func NewMalformedRecordError(source string, line int, record string, cause error) error {
	return &MalformedRecordError{
		Source: source,
		Line:   line,
		Record: record,
		Cause:  cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrCustomerNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAccountAlreadyExists) || errors.Is(err, ErrCustomerAlreadyExists)
}

func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

func IsOverdraftExceeded(err error) bool {
	return errors.Is(err, ErrOverdraftExceeded)
}

func IsInvalidAmount(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// IsRejection reports whether err is one of the typed ledger rejections that
// callers are expected to display and recover from.
func IsRejection(err error) bool {
	switch {
	case IsNotFound(err), IsInsufficientFunds(err), IsOverdraftExceeded(err), IsInvalidAmount(err):
		return true
	case errors.Is(err, ErrSameAccount), errors.Is(err, ErrInvalidAccountType), errors.Is(err, ErrInvalidCustomerType):
		return true
	case IsValidationError(err), IsAlreadyExists(err):
		return true
	}
	return false
}
