package directory

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// VetClinic is a clinic doctors belong to.
type VetClinic struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	City      string     `json:"city"`
	Phone     string     `json:"phone"`
	PhotoID   *uuid.UUID `json:"photo_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	// Doctors is attached on single-clinic reads.
	Doctors []*Doctor `json:"doctors,omitempty"`
}

// Doctor is a bookable practitioner. WorkStart/WorkEnd/SlotMinutes define the
// daily slot template the schedule projection consumes: slots run from
// WorkStart up to but excluding WorkEnd in SlotMinutes steps.
type Doctor struct {
	ID          uuid.UUID  `json:"id"`
	ClinicID    uuid.UUID  `json:"clinic_id"`
	Name        string     `json:"name"`
	Specialty   string     `json:"specialty"`
	Bio         string     `json:"bio,omitempty"`
	PhotoID     *uuid.UUID `json:"photo_id,omitempty"`
	WorkStart   string     `json:"work_start"`
	WorkEnd     string     `json:"work_end"`
	SlotMinutes int        `json:"slot_minutes"`
	CreatedAt   time.Time  `json:"created_at"`

	// Aggregates and joins filled by reads.
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Clinic      *VetClinic `json:"clinic,omitempty"`
}

// Default working-hours template applied when a doctor record omits one.
const (
	DefaultWorkStart   = "09:00"
	DefaultWorkEnd     = "18:00"
	DefaultSlotMinutes = 60
)

var slotTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ValidTimeSlot reports whether s is a well-formed HH:mm slot time.
func ValidTimeSlot(s string) bool {
	return slotTimeRe.MatchString(s)
}

func parseMinutes(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// SlotTimes expands the doctor's working-hours template into the ordered list
// of bookable HH:mm times for one day. An unusable template falls back to the
// defaults.
func (d *Doctor) SlotTimes() []string {
	start, end, step := d.WorkStart, d.WorkEnd, d.SlotMinutes
	if !ValidTimeSlot(start) || !ValidTimeSlot(end) || step <= 0 {
		start, end, step = DefaultWorkStart, DefaultWorkEnd, DefaultSlotMinutes
	}

	from, _ := parseMinutes(start)
	to, _ := parseMinutes(end)
	if to <= from {
		return nil
	}

	var slots []string
	for m := from; m < to; m += step {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}
