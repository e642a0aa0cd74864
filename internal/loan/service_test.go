package loan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var testDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCreateLoanRoundTrip(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	created, err := s.CreateLoan(ctx, 12000, 12, 0.12, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("expected generated loan id")
	}

	got, err := s.GetLoan(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != created {
		t.Fatalf("round-trip mismatch: %#v != %#v", got, created)
	}
}

func TestCreateLoanValidation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if _, err := s.CreateLoan(ctx, 0, 12, 0.12, testDate); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := s.CreateLoan(ctx, 12000, 0, 0.12, testDate); !errors.Is(err, ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm, got %v", err)
	}
	if _, err := s.CreateLoan(ctx, 12000, 12, -0.1, testDate); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestGetLoanNotFound(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	// A well-formed but absent id and a malformed id collapse to the same
	// outcome.
	if _, err := s.GetLoan(ctx, "5a8bd8f8-62ca-4323-95b3-65454c25dfa1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent id, got %v", err)
	}
	if _, err := s.GetLoan(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestCreatePaymentMissingLoan(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if _, err := s.CreatePayment(ctx, "5a8bd8f8-62ca-4323-95b3-65454c25dfa1", 100, true, testDate); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(s.payments) != 0 {
		t.Fatalf("payment written for missing loan: %v", s.payments)
	}
}

func TestCreatePaymentAssignsSequentialIDs(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	l, _ := s.CreateLoan(ctx, 12000, 12, 0.12, testDate)

	first, err := s.CreatePayment(ctx, l.ID, 1066.19, true, testDate.AddDate(0, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.CreatePayment(ctx, l.ID, 1066.19, false, testDate.AddDate(0, 2, 0))
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Fatalf("duplicate payment ids: %d", first.ID)
	}
	if first.LoanID != l.ID || second.LoanID != l.ID {
		t.Fatalf("payments reference wrong loan: %s, %s", first.LoanID, second.LoanID)
	}
}

func TestConcurrentPayments(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	l, _ := s.CreateLoan(ctx, 12000, 12, 0.12, testDate)

	var wg sync.WaitGroup
	N := 50
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreatePayment(ctx, l.ID, 100, true, testDate.AddDate(0, 1, 0)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := s.ListPayments(ctx, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != N {
		t.Fatalf("expected %d payments, got %d", N, len(got))
	}
	seen := make(map[int64]bool, N)
	for _, p := range got {
		if seen[p.ID] {
			t.Fatalf("duplicate payment id %d", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestListPaymentsOrderedAndScoped(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	a, _ := s.CreateLoan(ctx, 12000, 12, 0.12, testDate)
	b, _ := s.CreateLoan(ctx, 6000, 6, 0.10, testDate)

	_, _ = s.CreatePayment(ctx, a.ID, 100, true, testDate.AddDate(0, 1, 0))
	_, _ = s.CreatePayment(ctx, b.ID, 200, true, testDate.AddDate(0, 1, 0))
	_, _ = s.CreatePayment(ctx, a.ID, 300, false, testDate.AddDate(0, 2, 0))

	got, err := s.ListPayments(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 payments for loan a, got %d", len(got))
	}
	if got[0].ID >= got[1].ID {
		t.Fatalf("payments out of order: %d, %d", got[0].ID, got[1].ID)
	}

	if _, err := s.ListPayments(ctx, "5a8bd8f8-62ca-4323-95b3-65454c25dfa1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceDebtLeft(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	l, _ := s.CreateLoan(ctx, 12000, 12, 0.12, testDate)

	got, err := s.DebtLeft(ctx, l.ID, testDate.AddDate(0, 6, 0))
	if err != nil {
		t.Fatal(err)
	}
	if got != 1066.19*6 {
		t.Fatalf("unexpected debt: %v", got)
	}

	if _, err := s.DebtLeft(ctx, l.ID, testDate.AddDate(0, 13, 0)); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := s.DebtLeft(ctx, "nope", testDate.AddDate(0, 6, 0)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
