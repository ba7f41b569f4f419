package verification

import (
	"context"
	"errors"
	"time"
)

// ErrNoCode is returned by lookups that match no row.
var ErrNoCode = errors.New("verification code not found")

// Repository is the persistence contract for the verification code log.
type Repository interface {
	Create(ctx context.Context, c *VerificationCode) error
	// Latest returns the most recently created row for a phone regardless of
	// code or verification state. Returns ErrNoCode when the phone has none.
	Latest(ctx context.Context, phone string) (*VerificationCode, error)
	// LatestMatching returns the most recent row for (phone, code).
	LatestMatching(ctx context.Context, phone, code string) (*VerificationCode, error)
	// LatestVerified returns the most recent row with IsVerified=true.
	LatestVerified(ctx context.Context, phone string) (*VerificationCode, error)
	MarkVerified(ctx context.Context, id string) error
	// CountSince counts rows for a phone created at or after the given time.
	CountSince(ctx context.Context, phone string, since time.Time) (int, error)
	// DeleteOlderThan removes rows created before the cutoff and reports how
	// many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
