package signature

import "github.com/google/uuid"

// NewIdempotencyID returns a random UUIDv4 drawn from crypto/rand.
func NewIdempotencyID() string {
	return uuid.New().String()
}
