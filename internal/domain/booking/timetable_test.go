package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vetbook/vetbook/internal/domain/directory"
)

func testDoctor() *directory.Doctor {
	return &directory.Doctor{
		ID:          uuid.New(),
		Name:        "Dr. Rivera",
		WorkStart:   directory.DefaultWorkStart,
		WorkEnd:     directory.DefaultWorkEnd,
		SlotMinutes: directory.DefaultSlotMinutes,
	}
}

func TestClampWeeks(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, DefaultScheduleWeeks},
		{-3, DefaultScheduleWeeks},
		{1, 1},
		{4, 4},
		{12, 12},
		{13, MaxScheduleWeeks},
		{100, MaxScheduleWeeks},
	}
	for _, tc := range cases {
		if got := ClampWeeks(tc.in); got != tc.want {
			t.Errorf("ClampWeeks(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBuildScheduleEmptyAllAvailable(t *testing.T) {
	// A Wednesday; the grid should start on Monday the 13th.
	today := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)
	sched := BuildSchedule(testDoctor(), nil, uuid.Nil, today, 4)

	if len(sched.Weeks) != 4 {
		t.Fatalf("expected 4 weeks, got %d", len(sched.Weeks))
	}
	if sched.CurrentWeekIndex != 0 {
		t.Errorf("expected current week index 0, got %d", sched.CurrentWeekIndex)
	}

	first := sched.Weeks[0][0]
	if first.Date != "2024-05-13" || first.Weekday != "Monday" {
		t.Errorf("expected grid to start Monday 2024-05-13, got %s %s", first.Weekday, first.Date)
	}

	for _, week := range sched.Weeks {
		if len(week) != 7 {
			t.Fatalf("expected 7 days per week, got %d", len(week))
		}
		for _, day := range week {
			if len(day.Slots) != 9 {
				t.Fatalf("day %s: expected 9 slots from the default template, got %d", day.Date, len(day.Slots))
			}
			if day.Slots[0].Time != "09:00" || day.Slots[8].Time != "17:00" {
				t.Errorf("day %s: unexpected slot bounds %s..%s", day.Date, day.Slots[0].Time, day.Slots[8].Time)
			}
			for _, slot := range day.Slots {
				if !slot.Available || slot.BookedByMe {
					t.Errorf("day %s slot %s: expected free slot", day.Date, slot.Time)
				}
			}
		}
	}
}

func TestBuildScheduleDayFields(t *testing.T) {
	today := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	sched := BuildSchedule(testDoctor(), nil, uuid.Nil, today, 1)

	wed := sched.Weeks[0][2]
	if wed.Date != "2024-05-15" {
		t.Fatalf("expected Wednesday to be 2024-05-15, got %s", wed.Date)
	}
	if !wed.IsToday {
		t.Error("expected IsToday on 2024-05-15")
	}
	if wed.Weekday != "Wednesday" || wed.WeekdayShort != "Wed" {
		t.Errorf("unexpected weekday fields %q/%q", wed.Weekday, wed.WeekdayShort)
	}
	if wed.DayOfMonth != 15 {
		t.Errorf("expected day of month 15, got %d", wed.DayOfMonth)
	}

	for i, day := range sched.Weeks[0] {
		if day.IsToday != (i == 2) {
			t.Errorf("day %s: IsToday = %v", day.Date, day.IsToday)
		}
	}
}

func TestBuildScheduleMarksBookedSlots(t *testing.T) {
	doctor := testDoctor()
	me := uuid.New()
	other := uuid.New()
	today := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	appts := []*Appointment{
		{DoctorID: doctor.ID, UserID: me, Date: "2024-05-16", TimeSlot: "10:00", Status: StatusConfirmed},
		{DoctorID: doctor.ID, UserID: other, Date: "2024-05-16", TimeSlot: "11:00", Status: StatusConfirmed},
		{DoctorID: doctor.ID, UserID: other, Date: "2024-05-16", TimeSlot: "12:00", Status: StatusCancelled},
	}
	sched := BuildSchedule(doctor, appts, me, today, 1)

	slots := map[string]ScheduleSlot{}
	for _, slot := range sched.Weeks[0][3].Slots {
		slots[slot.Time] = slot
	}

	if s := slots["10:00"]; s.Available || !s.BookedByMe {
		t.Errorf("10:00: expected my booking, got %+v", s)
	}
	if s := slots["11:00"]; s.Available || s.BookedByMe {
		t.Errorf("11:00: expected someone else's booking, got %+v", s)
	}
	if s := slots["12:00"]; !s.Available {
		t.Errorf("12:00: cancelled appointment should not block the slot, got %+v", s)
	}
}

func TestBuildScheduleAnonymousViewer(t *testing.T) {
	doctor := testDoctor()
	today := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	appts := []*Appointment{
		{DoctorID: doctor.ID, UserID: uuid.New(), Date: "2024-05-15", TimeSlot: "09:00", Status: StatusConfirmed},
	}

	sched := BuildSchedule(doctor, appts, uuid.Nil, today, 1)
	slot := sched.Weeks[0][2].Slots[0]
	if slot.Available || slot.BookedByMe {
		t.Errorf("expected taken slot without booked_by_me for anonymous viewer, got %+v", slot)
	}
}

func TestBuildScheduleCustomTemplate(t *testing.T) {
	doctor := testDoctor()
	doctor.WorkStart = "10:00"
	doctor.WorkEnd = "12:00"
	doctor.SlotMinutes = 30
	today := time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC)

	sched := BuildSchedule(doctor, nil, uuid.Nil, today, 1)
	day := sched.Weeks[0][0]
	want := []string{"10:00", "10:30", "11:00", "11:30"}
	if len(day.Slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(day.Slots))
	}
	for i, slot := range day.Slots {
		if slot.Time != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], slot.Time)
		}
	}
}

func TestMondayOf(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), "2024-05-13"}, // Monday
		{time.Date(2024, 5, 15, 23, 59, 0, 0, time.UTC), "2024-05-13"},
		{time.Date(2024, 5, 19, 12, 0, 0, 0, time.UTC), "2024-05-13"}, // Sunday
	}
	for _, tc := range cases {
		if got := mondayOf(tc.in).Format(dateLayout); got != tc.want {
			t.Errorf("mondayOf(%s) = %s, want %s", tc.in.Format(dateLayout), got, tc.want)
		}
	}
}
