package directory

import (
	"reflect"
	"testing"
)

func TestValidTimeSlot(t *testing.T) {
	valid := []string{"00:00", "09:00", "13:30", "23:59"}
	for _, s := range valid {
		if !ValidTimeSlot(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{"24:00", "9:00", "09:60", "0900", "09:0", "", "ab:cd"}
	for _, s := range invalid {
		if ValidTimeSlot(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestSlotTimes_DefaultTemplate(t *testing.T) {
	d := &Doctor{WorkStart: "09:00", WorkEnd: "18:00", SlotMinutes: 60}

	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}
	if got := d.SlotTimes(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected slots: %v", got)
	}
}

func TestSlotTimes_CustomGranularity(t *testing.T) {
	d := &Doctor{WorkStart: "10:00", WorkEnd: "12:00", SlotMinutes: 30}

	want := []string{"10:00", "10:30", "11:00", "11:30"}
	if got := d.SlotTimes(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected slots: %v", got)
	}
}

func TestSlotTimes_FallsBackOnBrokenTemplate(t *testing.T) {
	d := &Doctor{WorkStart: "", WorkEnd: "18:00", SlotMinutes: 60}

	got := d.SlotTimes()
	if len(got) != 9 || got[0] != "09:00" || got[len(got)-1] != "17:00" {
		t.Errorf("expected default 09:00..17:00 slots, got %v", got)
	}
}

func TestSlotTimes_EndNotAfterStart(t *testing.T) {
	d := &Doctor{WorkStart: "18:00", WorkEnd: "09:00", SlotMinutes: 60}
	if got := d.SlotTimes(); got != nil {
		t.Errorf("expected no slots, got %v", got)
	}
}
