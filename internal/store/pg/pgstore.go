package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lendo.org/internal/ids"
	"lendo.org/internal/loan"
)

type Store struct {
	db *sql.DB
}

var _ loan.Service = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing connection pool (used by tests with sqlmock).
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) CreateLoan(ctx context.Context, amount int64, term int, rate float64, creationDate time.Time) (loan.Loan, error) {
	if amount <= 0 {
		return loan.Loan{}, loan.ErrInvalidAmount
	}
	if term <= 0 {
		return loan.Loan{}, loan.ErrInvalidTerm
	}
	if rate < 0 {
		return loan.Loan{}, loan.ErrInvalidRate
	}
	id := ids.NewLoan()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return loan.Loan{}, storageErr("create loan", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into loans(id, amount, term, rate, creation_date)
		values ($1,$2,$3,$4,$5)
	`, id, amount, term, rate, creationDate); err != nil {
		return loan.Loan{}, storageErr("create loan", err)
	}
	if err := tx.Commit(); err != nil {
		return loan.Loan{}, storageErr("create loan", err)
	}

	return loan.Loan{
		ID:           id,
		Amount:       amount,
		Term:         term,
		Rate:         rate,
		CreationDate: creationDate,
	}, nil
}

func (s *Store) GetLoan(ctx context.Context, id string) (loan.Loan, error) {
	// A malformed id can never match a row, so it collapses to not-found
	// without touching the database.
	if !ids.ValidLoan(id) {
		return loan.Loan{}, loan.ErrNotFound
	}

	l := loan.Loan{ID: id}
	err := s.db.QueryRowContext(ctx, `
		select amount, term, rate, creation_date from loans where id=$1
	`, id).Scan(&l.Amount, &l.Term, &l.Rate, &l.CreationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return loan.Loan{}, loan.ErrNotFound
	}
	if err != nil {
		return loan.Loan{}, storageErr("get loan", err)
	}
	return l, nil
}

func (s *Store) CreatePayment(ctx context.Context, loanID string, amount float64, executed bool, date time.Time) (loan.Payment, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return loan.Payment{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return loan.Payment{}, storageErr("create payment", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := loan.Payment{
		LoanID:   l.ID,
		Amount:   amount,
		Executed: executed,
		Date:     date,
	}
	if err := tx.QueryRowContext(ctx, `
		insert into payments(loan_id, amount, executed, date)
		values ($1,$2,$3,$4) returning id
	`, l.ID, amount, executed, date).Scan(&p.ID); err != nil {
		return loan.Payment{}, storageErr("create payment", err)
	}
	if err := tx.Commit(); err != nil {
		return loan.Payment{}, storageErr("create payment", err)
	}
	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, loanID string) ([]loan.Payment, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select id, amount, executed, date
		from payments
		where loan_id=$1
		order by id asc
	`, l.ID)
	if err != nil {
		return nil, storageErr("list payments", err)
	}
	defer rows.Close()

	var res []loan.Payment
	for rows.Next() {
		p := loan.Payment{LoanID: l.ID}
		if err := rows.Scan(&p.ID, &p.Amount, &p.Executed, &p.Date); err != nil {
			return nil, storageErr("list payments", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list payments", err)
	}
	return res, nil
}

func (s *Store) DebtLeft(ctx context.Context, loanID string, date time.Time) (float64, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return 0, err
	}
	return loan.DebtLeft(l, date)
}

func storageErr(op string, err error) error {
	return &loan.StorageError{Op: op, Err: err}
}
