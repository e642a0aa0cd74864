package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Exercises a running lendo-api end to end: create a loan, record a payment,
// query the balance mid-term, and check the numbers line up.
func main() {
	base := os.Getenv("LENDO_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 5 * time.Second}

	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	var loanResp struct {
		LoanID      string  `json:"loan_id"`
		Installment float64 `json:"installment"`
	}
	postJSON(client, base+"/v1/loans", map[string]any{
		"amount": 12000,
		"term":   12,
		"rate":   0.12,
		"date":   created,
	}, http.StatusCreated, &loanResp)
	if loanResp.LoanID == "" || loanResp.Installment <= 0 {
		log.Fatalf("unexpected loan response: %+v", loanResp)
	}

	var payment struct {
		ID int64 `json:"id"`
	}
	postJSON(client, base+"/v1/loans/"+loanResp.LoanID+"/payments", map[string]any{
		"amount":   loanResp.Installment,
		"executed": true,
		"date":     created.AddDate(0, 1, 0),
	}, http.StatusCreated, &payment)
	if payment.ID == 0 {
		log.Fatal("payment id was not assigned")
	}

	var balance struct {
		Balance float64 `json:"balance"`
	}
	postJSON(client, base+"/v1/loans/"+loanResp.LoanID+"/balance", map[string]any{
		"date": created.AddDate(0, 6, 0),
	}, http.StatusOK, &balance)

	want := loanResp.Installment * 6
	if diff := balance.Balance - want; diff > 0.01 || diff < -0.01 {
		log.Fatalf("balance mismatch: got %.2f, want %.2f", balance.Balance, want)
	}

	fmt.Printf("✅ lendo-api smoke test passed: loan=%s installment=%.2f\n", loanResp.LoanID, loanResp.Installment)
}

func postJSON(client *http.Client, url string, body any, wantStatus int, out any) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("marshal %s: %v", url, err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("post %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s: %v", url, err)
		}
	}
}
