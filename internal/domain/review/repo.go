package review

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	// ListByDoctor returns a page of reviews newest first, with the author
	// name attached.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Review, int, error)
}
