package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation failed")

type Service struct {
	clinics ClinicRepository
	doctors DoctorRepository
}

func NewService(clinics ClinicRepository, doctors DoctorRepository) *Service {
	return &Service{clinics: clinics, doctors: doctors}
}

// -- Clinics --

func (s *Service) CreateClinic(ctx context.Context, c *VetClinic) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: clinic name is required", ErrValidation)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: clinic address is required", ErrValidation)
	}
	return s.clinics.Create(ctx, c)
}

// GetClinic returns the clinic with its doctors attached.
func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*VetClinic, error) {
	c, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doctors, err := s.doctors.ListByClinic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load clinic doctors: %w", err)
	}
	c.Doctors = doctors
	return c, nil
}

func (s *Service) ListClinics(ctx context.Context, limit, offset int) ([]*VetClinic, int, error) {
	return s.clinics.List(ctx, limit, offset)
}

// -- Doctors --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: doctor name is required", ErrValidation)
	}
	if d.ClinicID == uuid.Nil {
		return fmt.Errorf("%w: clinic_id is required", ErrValidation)
	}
	if _, err := s.clinics.GetByID(ctx, d.ClinicID); err != nil {
		return err
	}

	if d.WorkStart == "" && d.WorkEnd == "" && d.SlotMinutes == 0 {
		d.WorkStart = DefaultWorkStart
		d.WorkEnd = DefaultWorkEnd
		d.SlotMinutes = DefaultSlotMinutes
	}
	if !ValidTimeSlot(d.WorkStart) || !ValidTimeSlot(d.WorkEnd) {
		return fmt.Errorf("%w: working hours must be HH:mm", ErrValidation)
	}
	if d.SlotMinutes <= 0 || d.SlotMinutes > 8*60 {
		return fmt.Errorf("%w: slot_minutes must be in (0, 480]", ErrValidation)
	}
	if len(d.SlotTimes()) == 0 {
		return fmt.Errorf("%w: work_end must be after work_start", ErrValidation)
	}

	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.doctors.Exists(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, f, limit, offset)
}

func (s *Service) ListClinicDoctors(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.doctors.ListByClinic(ctx, clinicID)
}
