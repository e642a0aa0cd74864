package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                       "/",
		"/metrics":               "/metrics",
		"/v1/loans":              "/v1/loans",
		"/v1/loans/abc":          "/v1/loans/:id",
		"/v1/loans/abc/payments": "/v1/loans/:id/payments",
		"/v1/loans/abc/balance":  "/v1/loans/:id/balance",
		"/v1/loans/abc/extra":    "/v1/loans/abc/extra",
		"/v1/loans/abc?expand=1": "/v1/loans/:id",
		"/v1/info":               "/v1/info",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
