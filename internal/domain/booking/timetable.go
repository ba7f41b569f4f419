package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetbook/vetbook/internal/domain/directory"
)

// Schedule horizon bounds, in weeks. The grid always starts on the Monday of
// the current week so week boundaries are stable as days pass.
const (
	DefaultScheduleWeeks = 4
	MaxScheduleWeeks     = 12
)

// ScheduleSlot is one bookable time in a day. BookedByMe is only set when the
// schedule is built for an authenticated viewer.
type ScheduleSlot struct {
	Time       string `json:"time"`
	Available  bool   `json:"available"`
	BookedByMe bool   `json:"booked_by_me"`
}

// ScheduleDay carries the display fields clients render in a calendar header
// alongside the day's slot list.
type ScheduleDay struct {
	Date         string         `json:"date"`
	Weekday      string         `json:"weekday"`
	WeekdayShort string         `json:"weekday_short"`
	DayOfMonth   int            `json:"day_of_month"`
	IsToday      bool           `json:"is_today"`
	Slots        []ScheduleSlot `json:"slots"`
}

// Schedule is the projected booking grid for one doctor. It is synthesized
// from the working-hours template and confirmed appointments on every read,
// never stored.
type Schedule struct {
	Weeks            [][]ScheduleDay `json:"weeks"`
	CurrentWeekIndex int             `json:"current_week_index"`
}

// mondayOf returns midnight of the Monday of t's week.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ClampWeeks normalizes a requested horizon to [1, MaxScheduleWeeks], with
// DefaultScheduleWeeks for an absent or non-positive request.
func ClampWeeks(weeks int) int {
	if weeks <= 0 {
		return DefaultScheduleWeeks
	}
	if weeks > MaxScheduleWeeks {
		return MaxScheduleWeeks
	}
	return weeks
}

// BuildSchedule projects confirmed appointments onto the doctor's slot
// template. viewerID may be uuid.Nil for anonymous viewers; their slots never
// carry BookedByMe.
func BuildSchedule(doctor *directory.Doctor, appts []*Appointment, viewerID uuid.UUID, today time.Time, weeks int) *Schedule {
	weeks = ClampWeeks(weeks)
	template := doctor.SlotTimes()

	booked := make(map[string]uuid.UUID, len(appts))
	for _, a := range appts {
		if a.Status == StatusConfirmed {
			booked[a.Date+" "+a.TimeSlot] = a.UserID
		}
	}

	start := mondayOf(today)
	todayStr := today.Format(dateLayout)

	sched := &Schedule{Weeks: make([][]ScheduleDay, 0, weeks)}
	for w := 0; w < weeks; w++ {
		days := make([]ScheduleDay, 0, 7)
		for i := 0; i < 7; i++ {
			date := start.AddDate(0, 0, w*7+i)
			dateStr := date.Format(dateLayout)
			weekday := date.Weekday().String()

			day := ScheduleDay{
				Date:         dateStr,
				Weekday:      weekday,
				WeekdayShort: weekday[:3],
				DayOfMonth:   date.Day(),
				IsToday:      dateStr == todayStr,
				Slots:        make([]ScheduleSlot, 0, len(template)),
			}
			if day.IsToday {
				sched.CurrentWeekIndex = w
			}
			for _, slot := range template {
				booker, taken := booked[dateStr+" "+slot]
				day.Slots = append(day.Slots, ScheduleSlot{
					Time:       slot,
					Available:  !taken,
					BookedByMe: taken && viewerID != uuid.Nil && booker == viewerID,
				})
			}
			days = append(days, day)
		}
		sched.Weeks = append(sched.Weeks, days)
	}
	return sched
}
