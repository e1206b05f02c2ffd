package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestValidateInstant(t *testing.T) {
	if err := ValidateInstant(time.Time{}); err == nil {
		t.Error("expected error for zero time")
	}
	if err := ValidateInstant(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Errorf("unexpected error for valid instant: %v", err)
	}
	if err := ValidateInstant(time.Date(10001, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Error("expected error for out-of-range year")
	}
}

func TestParseInstant(t *testing.T) {
	got, err := ParseInstant("2024-06-01T09:30:00Z")
	if err != nil {
		t.Fatalf("ParseInstant failed: %v", err)
	}
	want := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseInstant() = %v, want %v", got, want)
	}

	_, err = ParseInstant("not a time")
	var ierr *InstantError
	if !errors.As(err, &ierr) {
		t.Errorf("expected InstantError, got %T", err)
	}
}

func TestFormatForDisplay(t *testing.T) {
	at := time.Date(2024, 6, 1, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name string
		opts DisplayOptions
		want string
	}{
		{"default 12 hour", DisplayOptions{}, "2:05 PM"},
		{"24 hour", DisplayOptions{Use24Hour: true}, "14:05"},
		{"24 hour with seconds", DisplayOptions{Use24Hour: true, WithSeconds: true}, "14:05:09"},
		{"12 hour with seconds", DisplayOptions{WithSeconds: true}, "2:05:09 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatForDisplay(at, tt.opts)
			if err != nil {
				t.Fatalf("FormatForDisplay failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatForDisplay() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := FormatForDisplay(time.Time{}, DisplayOptions{}); err == nil {
		t.Error("expected error for zero time")
	}
}

func TestCombineDateAndTime(t *testing.T) {
	got, err := CombineDateAndTime("2024-06-01", "09:30", time.UTC)
	if err != nil {
		t.Fatalf("CombineDateAndTime failed: %v", err)
	}
	want := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineDateAndTime() = %v, want %v", got, want)
	}

	if _, err := CombineDateAndTime("06/01/2024", "09:30", time.UTC); err == nil {
		t.Error("expected error for bad date format")
	}
	if _, err := CombineDateAndTime("2024-06-01", "9:30am", time.UTC); err == nil {
		t.Error("expected error for bad time format")
	}
}

func TestDayOf(t *testing.T) {
	at := time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)
	if got := DayOf(at); got != "2024-06-01" {
		t.Errorf("DayOf() = %q, want 2024-06-01", got)
	}
}
