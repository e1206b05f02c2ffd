package models

import (
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

func validHabit() Habit {
	return Habit{
		ID:   "h1",
		Name: "Read",
		Type: constants.HabitTypeBuild,
		Occurrence: Occurrence{
			Type: constants.OccurrenceDaily,
		},
		Notification: Notification{
			Message: "Read a chapter",
			Time:    time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC),
		},
		IsActive: true,
	}
}

func TestHabitValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Habit)
		wantErr bool
	}{
		{"valid daily habit", func(h *Habit) {}, false},
		{
			"valid custom habit",
			func(h *Habit) {
				h.Occurrence = Occurrence{
					Type: constants.OccurrenceCustom,
					Days: []time.Weekday{time.Monday, time.Friday},
				}
			},
			false,
		},
		{"empty name", func(h *Habit) { h.Name = "  " }, true},
		{"bad type", func(h *Habit) { h.Type = "maintain" }, true},
		{"bad occurrence type", func(h *Habit) { h.Occurrence.Type = "weekly" }, true},
		{
			"custom without days",
			func(h *Habit) { h.Occurrence = Occurrence{Type: constants.OccurrenceCustom} },
			true,
		},
		{
			"custom with invalid weekday",
			func(h *Habit) {
				h.Occurrence = Occurrence{
					Type: constants.OccurrenceCustom,
					Days: []time.Weekday{time.Weekday(9)},
				}
			},
			true,
		},
		{"empty message", func(h *Habit) { h.Notification.Message = "" }, true},
		{"zero notification time", func(h *Habit) { h.Notification.Time = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHabit()
			tt.mutate(&h)
			err := h.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestOccursOn(t *testing.T) {
	daily := validHabit()
	if !daily.OccursOn(time.Sunday) || !daily.OccursOn(time.Wednesday) {
		t.Error("daily habit should occur on every weekday")
	}

	custom := validHabit()
	custom.Occurrence = Occurrence{
		Type: constants.OccurrenceCustom,
		Days: []time.Weekday{time.Monday, time.Friday},
	}
	if !custom.OccursOn(time.Monday) {
		t.Error("expected occurrence on Monday")
	}
	if custom.OccursOn(time.Tuesday) {
		t.Error("unexpected occurrence on Tuesday")
	}
}

func TestNeedsNotificationUpdate(t *testing.T) {
	old := validHabit()

	same := old
	if NeedsNotificationUpdate(old, same) {
		t.Error("identical habits should not need an update")
	}

	renamed := old
	renamed.Name = "Read more"
	if !NeedsNotificationUpdate(old, renamed) {
		t.Error("renamed habit should need an update")
	}

	retimed := old
	retimed.Notification.Time = old.Notification.Time.Add(30 * time.Minute)
	if !NeedsNotificationUpdate(old, retimed) {
		t.Error("retimed habit should need an update")
	}

	reworded := old
	reworded.Notification.Message = "Read two chapters"
	if !NeedsNotificationUpdate(old, reworded) {
		t.Error("reworded habit should need an update")
	}

	// Whitespace-only differences are not a real change.
	padded := old
	padded.Name = "  " + old.Name + "  "
	if NeedsNotificationUpdate(old, padded) {
		t.Error("whitespace padding should not need an update")
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"MONDAY", time.Monday, false},
		{"sunday", time.Sunday, false},
		{" Friday ", time.Friday, false},
		{"wed", time.Wednesday, false},
		{"THU", time.Thursday, false},
		{"someday", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseWeekday(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWeekday(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWeekdays(t *testing.T) {
	got, err := ParseWeekdays("mon, wed ,FRIDAY")
	if err != nil {
		t.Fatalf("ParseWeekdays failed: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(got) != len(want) {
		t.Fatalf("ParseWeekdays returned %d days, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := ParseWeekdays("mon,funday"); err == nil {
		t.Error("expected error for invalid day in list")
	}
}

func TestFormatSchedule(t *testing.T) {
	daily := validHabit()
	if got := daily.FormatSchedule(); got != "Every day" {
		t.Errorf("FormatSchedule() = %q, want %q", got, "Every day")
	}

	custom := validHabit()
	custom.Occurrence = Occurrence{
		Type: constants.OccurrenceCustom,
		Days: []time.Weekday{time.Friday, time.Monday},
	}
	if got := custom.FormatSchedule(); got != "Weekly: Mon, Fri" {
		t.Errorf("FormatSchedule() = %q, want %q", got, "Weekly: Mon, Fri")
	}
}

func TestFilterByType(t *testing.T) {
	build := validHabit()
	brk := validHabit()
	brk.ID = "h2"
	brk.Type = constants.HabitTypeBreak
	inactive := validHabit()
	inactive.ID = "h3"
	inactive.IsActive = false

	got := FilterByType([]Habit{build, brk, inactive}, constants.HabitTypeBuild)
	if len(got) != 1 || got[0].ID != "h1" {
		t.Errorf("FilterByType returned %v, want only h1", got)
	}
}
