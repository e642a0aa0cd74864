package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lendo.org/internal/loan"
)

// Cache is a string key/value store with best-effort semantics: a miss and
// a backend failure look the same to readers.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// Service is a read-through loan cache over another loan.Service. Loans are
// immutable once created, so cached copies never go stale.
type Service struct {
	next  loan.Service
	cache Cache
}

var _ loan.Service = (*Service)(nil)

// Wrap decorates next with a loan-by-id cache.
func Wrap(next loan.Service, c Cache) *Service {
	return &Service{next: next, cache: c}
}

func loanKey(id string) string { return "loan:" + id }

func (s *Service) CreateLoan(ctx context.Context, amount int64, term int, rate float64, creationDate time.Time) (loan.Loan, error) {
	l, err := s.next.CreateLoan(ctx, amount, term, rate, creationDate)
	if err != nil {
		return loan.Loan{}, err
	}
	s.prime(ctx, l)
	return l, nil
}

func (s *Service) GetLoan(ctx context.Context, id string) (loan.Loan, error) {
	if raw, ok := s.cache.Get(ctx, loanKey(id)); ok {
		var l loan.Loan
		if err := json.Unmarshal([]byte(raw), &l); err == nil {
			return l, nil
		}
		// Undecodable entry: fall through to the store.
	}

	l, err := s.next.GetLoan(ctx, id)
	if err != nil {
		return loan.Loan{}, err
	}
	s.prime(ctx, l)
	return l, nil
}

func (s *Service) CreatePayment(ctx context.Context, loanID string, amount float64, executed bool, date time.Time) (loan.Payment, error) {
	return s.next.CreatePayment(ctx, loanID, amount, executed, date)
}

func (s *Service) ListPayments(ctx context.Context, loanID string) ([]loan.Payment, error) {
	return s.next.ListPayments(ctx, loanID)
}

func (s *Service) DebtLeft(ctx context.Context, loanID string, date time.Time) (float64, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return 0, err
	}
	return loan.DebtLeft(l, date)
}

// prime stores a loan in the cache; failures are non-critical.
func (s *Service) prime(ctx context.Context, l loan.Loan) {
	raw, err := json.Marshal(l)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, loanKey(l.ID), string(raw)); err != nil {
		log.Printf("warning: failed to cache loan %s: %v", l.ID, err)
	}
}
