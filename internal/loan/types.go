package loan

import (
	"errors"
	"fmt"
	"time"
)

// Loan is a fixed-rate, fixed-term loan. All fields are set at creation and
// never change; payments are tracked as separate rows.
type Loan struct {
	ID           string    `json:"id"`
	Amount       int64     `json:"amount"` // principal
	Term         int       `json:"term"`   // months
	Rate         float64   `json:"rate"`   // nominal annual rate, e.g. 0.12
	CreationDate time.Time `json:"creation_date"`
}

// Payment records funds applied toward a loan. IDs are assigned by the store.
type Payment struct {
	ID       int64     `json:"id"`
	LoanID   string    `json:"loan_id"`
	Amount   float64   `json:"amount"`
	Executed bool      `json:"executed"`
	Date     time.Time `json:"date"`
}

var (
	ErrNotFound      = errors.New("loan not found")
	ErrOutOfRange    = errors.New("date outside repayment window")
	ErrInvalidAmount = errors.New("invalid amount (must be > 0)")
	ErrInvalidTerm   = errors.New("invalid term (must be > 0)")
	ErrInvalidRate   = errors.New("invalid rate (must be >= 0)")

	// ErrNonAmortizing is returned for a zero-rate loan: the amortization
	// formula divides by (1+r)^term - 1, which is zero at r=0.
	ErrNonAmortizing = errors.New("zero-rate loan has no amortizing installment")
)

// StorageError wraps a persistence failure after the enclosing transaction
// has been rolled back. Callers decide how much of the cause to expose.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
