package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryBackend(t *testing.T) {
	m := NewMemoryBackend()
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	h1, err := m.Submit(ctx, Content{Title: "one"}, OnceAt(at))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	h2, err := m.Submit(ctx, Content{Title: "two"}, DailyAt(at))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if h1 == h2 {
		t.Errorf("handles must be unique, both %q", h1)
	}
	if len(m.Active()) != 2 {
		t.Fatalf("expected 2 active, got %d", len(m.Active()))
	}

	if err := m.Cancel(ctx, h1); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, ok := m.Get(h1); ok {
		t.Error("cancelled registration still active")
	}

	// Cancelling an unknown handle is recorded but not an error.
	if err := m.Cancel(ctx, "bogus"); err != nil {
		t.Errorf("Cancel of unknown handle failed: %v", err)
	}
	if len(m.Cancelled) != 2 {
		t.Errorf("cancel log = %v", m.Cancelled)
	}

	if err := m.DismissDelivered(ctx, h2); err != nil {
		t.Fatalf("DismissDelivered failed: %v", err)
	}
	if len(m.Dismissed) != 1 || m.Dismissed[0] != h2 {
		t.Errorf("dismiss log = %v", m.Dismissed)
	}
}

func TestMemoryBackend_ErrorInjection(t *testing.T) {
	m := NewMemoryBackend()
	m.SubmitErr = errors.New("down")

	if _, err := m.Submit(context.Background(), Content{}, OnceAt(time.Now())); err == nil {
		t.Fatal("expected injected submit error")
	}
	if len(m.Active()) != 0 {
		t.Error("failed submit must not register anything")
	}
}
