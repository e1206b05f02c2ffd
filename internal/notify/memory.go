package notify

import (
	"context"
	"fmt"
	"sync"
)

// Registration is one reminder held by the MemoryBackend.
type Registration struct {
	Handle  string
	Content Content
	Trigger Trigger
}

// MemoryBackend is an in-process Backend used by tests and dry runs. It
// records every registration and never delivers anything.
type MemoryBackend struct {
	mu     sync.Mutex
	seq    int
	active map[string]Registration

	// WeekdayRepeat toggles the advertised native capability.
	WeekdayRepeat bool

	// SubmitErr, when set, makes Submit fail. CancelErr likewise for
	// Cancel and DismissErr for DismissDelivered.
	SubmitErr  error
	CancelErr  error
	DismissErr error

	// Cancelled and Dismissed record every handle passed to the
	// respective call, including unknown ones.
	Cancelled []string
	Dismissed []string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{active: make(map[string]Registration)}
}

func (m *MemoryBackend) SupportsWeekdayRepeat() bool { return m.WeekdayRepeat }

func (m *MemoryBackend) Submit(_ context.Context, content Content, trigger Trigger) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}

	m.seq++
	handle := fmt.Sprintf("mem-%d", m.seq)
	m.active[handle] = Registration{Handle: handle, Content: content, Trigger: trigger}
	return handle, nil
}

func (m *MemoryBackend) Cancel(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Cancelled = append(m.Cancelled, handle)
	if m.CancelErr != nil {
		return m.CancelErr
	}
	delete(m.active, handle)
	return nil
}

func (m *MemoryBackend) DismissDelivered(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Dismissed = append(m.Dismissed, handle)
	return m.DismissErr
}

// Active returns a snapshot of the currently registered reminders.
func (m *MemoryBackend) Active() []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Registration, 0, len(m.active))
	for _, r := range m.active {
		out = append(out, r)
	}
	return out
}

// Get returns the registration for a handle, if present.
func (m *MemoryBackend) Get(handle string) (Registration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.active[handle]
	return r, ok
}

var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*TrayBackend)(nil)
)
