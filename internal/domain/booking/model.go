package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetbook/vetbook/internal/domain/directory"
)

// Status is the lifecycle state of an appointment. Cancelled rows are kept:
// only CONFIRMED rows block a slot, so a cancelled slot can be rebooked.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

const dateLayout = "2006-01-02"

// Appointment is a booked slot. Date is a calendar day in YYYY-MM-DD form and
// TimeSlot an HH:mm time from the doctor's working-hours template.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Doctor is attached on reads that feed user-facing lists.
	Doctor *directory.Doctor `json:"doctor,omitempty"`
}
