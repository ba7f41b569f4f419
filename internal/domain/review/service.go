package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrDoctorNotFound = errors.New("doctor not found")
)

// DoctorDirectory is the slice of the directory service a review needs:
// just enough to confirm the doctor being reviewed exists.
type DoctorDirectory interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo    Repository
	doctors DoctorDirectory
	logger  zerolog.Logger
}

func NewService(repo Repository, doctors DoctorDirectory, logger zerolog.Logger) *Service {
	return &Service{repo: repo, doctors: doctors, logger: logger}
}

type CreateInput struct {
	DoctorID uuid.UUID
	UserID   uuid.UUID
	Rating   int
	Comment  string
}

func (s *Service) CreateReview(ctx context.Context, in CreateInput) (*Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}

	ok, err := s.doctors.DoctorExists(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDoctorNotFound
	}

	rv := &Review{
		DoctorID: in.DoctorID,
		UserID:   in.UserID,
		Rating:   in.Rating,
		Comment:  strings.TrimSpace(in.Comment),
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("doctor_id", in.DoctorID.String()).
		Str("user_id", in.UserID.String()).
		Int("rating", in.Rating).
		Msg("review created")
	return rv, nil
}

func (s *Service) ListDoctorReviews(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	ok, err := s.doctors.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrDoctorNotFound
	}
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}
