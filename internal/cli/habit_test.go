package cli

import "testing"

func TestHabitListCmd_ValidateType(t *testing.T) {
	for _, typ := range []string{"", "build", "break"} {
		cmd := &HabitListCmd{Type: typ}
		if err := cmd.Validate(); err != nil {
			t.Errorf("Validate(%q) returned error: %v", typ, err)
		}
	}

	cmd := &HabitListCmd{Type: "bad"}
	if err := cmd.Validate(); err == nil {
		t.Error("expected error for unknown type")
	}
}
