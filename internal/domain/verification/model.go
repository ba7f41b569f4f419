package verification

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is one row of the per-phone code log. Every issued code
// and every failed verify attempt appends a row; successful verification
// flips IsVerified on the matched row. Rows older than an hour are purged.
type VerificationCode struct {
	ID         uuid.UUID `json:"id"`
	Phone      string    `json:"phone"`
	Code       string    `json:"code"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
