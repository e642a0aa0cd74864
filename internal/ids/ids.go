package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewLoan returns a new loan identifier (UUID).
func NewLoan() string {
	return uuid.NewString()
}

// ValidLoan reports whether s is a well-formed loan identifier. Lookups
// treat a malformed id the same as an absent one, so this never errors.
func ValidLoan(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// NewRequest returns a lexicographically sortable identifier for tagging
// HTTP requests in logs and error payloads.
func NewRequest() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
