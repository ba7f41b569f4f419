package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("appointment not found")

	// ErrSlotTaken is the authoritative booking conflict: the partial unique
	// index on (doctor_id, date, time_slot) for CONFIRMED rows surfaces it
	// even when two requests race past the availability pre-check.
	ErrSlotTaken = errors.New("time slot is already booked")
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error

	// ListByUser returns the user's appointments, any status, ordered by
	// date then slot, with doctor and clinic attached.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Appointment, error)

	// ListByDoctorRange returns CONFIRMED appointments for the doctor with
	// from <= date < to. Dates are YYYY-MM-DD.
	ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*Appointment, error)

	ExistsConfirmed(ctx context.Context, doctorID uuid.UUID, date, timeSlot string) (bool, error)
	ExistsConfirmedForUser(ctx context.Context, userID, doctorID uuid.UUID, date, timeSlot string) (bool, error)
}
