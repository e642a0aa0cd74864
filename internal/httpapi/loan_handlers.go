package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"lendo.org/internal/loan"
	"lendo.org/internal/obs"
)

type createLoanRequest struct {
	Amount int64     `json:"amount"`
	Term   int       `json:"term"`
	Rate   float64   `json:"rate"`
	Date   time.Time `json:"date"`
}

type createLoanResponse struct {
	LoanID      string  `json:"loan_id"`
	Installment float64 `json:"installment"`
}

type createPaymentRequest struct {
	Amount   float64   `json:"amount"`
	Executed *bool     `json:"executed"`
	Date     time.Time `json:"date"`
}

type balanceRequest struct {
	Date time.Time `json:"date"`
}

type listPaymentsResponse struct {
	Items []loan.Payment `json:"items"`
	AsOf  time.Time      `json:"as_of"`
}

func (a *API) handleLoansCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createLoan(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handleLoanResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/loans/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/payments") {
		id := strings.TrimSuffix(path, "/payments")
		if id == "" {
			writeError(w, r, http.StatusNotFound, "loan not found")
			return
		}
		switch r.Method {
		case http.MethodPost:
			a.createPayment(w, r, id)
		case http.MethodGet:
			a.listPayments(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
		}
		return
	}

	if strings.HasSuffix(path, "/balance") {
		id := strings.TrimSuffix(path, "/balance")
		if id == "" {
			writeError(w, r, http.StatusNotFound, "loan not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.getBalance(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getLoan(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) createLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount <= 0 {
		writeError(w, r, http.StatusBadRequest, "amount must be > 0")
		return
	}
	if req.Term <= 0 {
		writeError(w, r, http.StatusBadRequest, "term must be > 0")
		return
	}
	if req.Rate < 0 {
		writeError(w, r, http.StatusBadRequest, "rate must be >= 0")
		return
	}
	if req.Date.IsZero() {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}

	l, err := a.loans.CreateLoan(r.Context(), req.Amount, req.Term, req.Rate, req.Date)
	if err != nil {
		handleLoanError(w, r, err)
		return
	}

	installment, err := loan.Installment(l)
	if err != nil {
		// The loan row is committed at this point; the installment failure
		// surfaces like any other internal error, detail suppressed.
		handleLoanError(w, r, err)
		return
	}

	obs.LoanCreated()
	w.Header().Set("Location", "/v1/loans/"+l.ID)
	writeJSON(w, http.StatusCreated, createLoanResponse{
		LoanID:      l.ID,
		Installment: installment,
	})
}

func (a *API) getLoan(w http.ResponseWriter, r *http.Request, id string) {
	l, err := a.loans.GetLoan(r.Context(), id)
	if err != nil {
		handleLoanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *API) createPayment(w http.ResponseWriter, r *http.Request, id string) {
	var req createPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Amount <= 0 {
		writeError(w, r, http.StatusBadRequest, "amount must be > 0")
		return
	}
	if req.Executed == nil {
		writeError(w, r, http.StatusBadRequest, "executed is required")
		return
	}
	if req.Date.IsZero() {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}

	p, err := a.loans.CreatePayment(r.Context(), id, req.Amount, *req.Executed, req.Date)
	if err != nil {
		handleLoanError(w, r, err)
		return
	}

	obs.PaymentRecorded()
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) listPayments(w http.ResponseWriter, r *http.Request, id string) {
	items, err := a.loans.ListPayments(r.Context(), id)
	if err != nil {
		handleLoanError(w, r, err)
		return
	}
	if items == nil {
		items = []loan.Payment{}
	}
	writeJSON(w, http.StatusOK, listPaymentsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) getBalance(w http.ResponseWriter, r *http.Request, id string) {
	var req balanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Date.IsZero() {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}

	balance, err := a.loans.DebtLeft(r.Context(), id, req.Date)
	if err != nil {
		handleLoanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance": balance})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleLoanError maps domain outcomes to status codes. A date outside the
// repayment window answers 404 exactly like an unknown loan, matching the
// collapsed "no value" signal of the balance query. Storage and arithmetic
// failures are logged with their cause but answer an opaque 500.
func handleLoanError(w http.ResponseWriter, r *http.Request, err error) {
	var serr *loan.StorageError
	switch {
	case errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, loan.ErrInvalidTerm),
		errors.Is(err, loan.ErrInvalidRate):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, loan.ErrOutOfRange):
		writeError(w, r, http.StatusNotFound, "loan not found")
	case errors.As(err, &serr), errors.Is(err, loan.ErrNonAmortizing):
		obs.LogError("loan operation failed", err, map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	default:
		obs.LogError("unexpected loan error", err, map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
