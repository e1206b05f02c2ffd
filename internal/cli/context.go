package cli

import (
	"github.com/julianstephens/habitual/internal/clock"
	"github.com/julianstephens/habitual/internal/feedback"
	"github.com/julianstephens/habitual/internal/scheduler"
	"github.com/julianstephens/habitual/internal/storage"
)

// Context carries the composed application services into every command.
// The composition root in cmd/habitual builds it once; commands never
// construct collaborators themselves.
type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Feedback  *feedback.Handler
	Clock     clock.Clock
}
