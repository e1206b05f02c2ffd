// Package clock provides an injectable time source.
//
// Scheduling logic must never read the wall clock directly; every
// computation takes the current time from a Clock so tests can pin it.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock. Use only at composition roots (cmd/*).
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. For tests.
type Fixed struct {
	T time.Time
}

func (c Fixed) Now() time.Time { return c.T }

// Func wraps a function as a Clock, for tests that need advancing time.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

var (
	_ Clock = Real{}
	_ Clock = Fixed{}
	_ Clock = Func(nil)
)
