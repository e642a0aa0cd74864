package loan

import (
	"context"
	"sort"
	"sync"
	"time"

	"lendo.org/internal/ids"
)

// Service defines the loan ledger operations.
type Service interface {
	CreateLoan(ctx context.Context, amount int64, term int, rate float64, creationDate time.Time) (Loan, error)
	GetLoan(ctx context.Context, id string) (Loan, error)
	CreatePayment(ctx context.Context, loanID string, amount float64, executed bool, date time.Time) (Payment, error)
	ListPayments(ctx context.Context, loanID string) ([]Payment, error)
	DebtLeft(ctx context.Context, loanID string, date time.Time) (float64, error)
}

func validateLoanInput(amount int64, term int, rate float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if term <= 0 {
		return ErrInvalidTerm
	}
	if rate < 0 {
		return ErrInvalidRate
	}
	return nil
}

// InMemory implements Service with in-process concurrency safety. Used by
// tests and DSN-less development runs; production uses the Postgres store.
type InMemory struct {
	mu        sync.RWMutex
	loans     map[string]Loan
	payments  map[string][]Payment // loan id -> payments in insertion order
	paymentID int64
}

// NewInMemory creates an empty in-memory loan ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		loans:    make(map[string]Loan),
		payments: make(map[string][]Payment),
	}
}

func (s *InMemory) CreateLoan(ctx context.Context, amount int64, term int, rate float64, creationDate time.Time) (Loan, error) {
	if err := validateLoanInput(amount, term, rate); err != nil {
		return Loan{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := Loan{
		ID:           ids.NewLoan(),
		Amount:       amount,
		Term:         term,
		Rate:         rate,
		CreationDate: creationDate,
	}
	s.loans[l.ID] = l
	return l, nil
}

func (s *InMemory) GetLoan(ctx context.Context, id string) (Loan, error) {
	if !ids.ValidLoan(id) {
		return Loan{}, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[id]
	if !ok {
		return Loan{}, ErrNotFound
	}
	return l, nil
}

func (s *InMemory) CreatePayment(ctx context.Context, loanID string, amount float64, executed bool, date time.Time) (Payment, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return Payment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.paymentID++
	p := Payment{
		ID:       s.paymentID,
		LoanID:   l.ID,
		Amount:   amount,
		Executed: executed,
		Date:     date,
	}
	s.payments[l.ID] = append(s.payments[l.ID], p)
	return p, nil
}

func (s *InMemory) ListPayments(ctx context.Context, loanID string) ([]Payment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Payment(nil), s.payments[loanID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DebtLeft(ctx context.Context, loanID string, date time.Time) (float64, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return 0, err
	}
	return DebtLeft(l, date)
}
