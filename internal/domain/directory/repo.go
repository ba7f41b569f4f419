package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrClinicNotFound = errors.New("clinic not found")
	ErrDoctorNotFound = errors.New("doctor not found")
)

// DoctorFilter narrows doctor listings. Query matches doctor name, specialty,
// and clinic name case-insensitively.
type DoctorFilter struct {
	Query    string
	ClinicID uuid.UUID
}

type ClinicRepository interface {
	Create(ctx context.Context, c *VetClinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*VetClinic, error)
	List(ctx context.Context, limit, offset int) ([]*VetClinic, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	// GetByID returns the doctor with clinic and rating aggregates attached.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error)
}
