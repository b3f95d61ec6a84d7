// Package clock lets time-dependent code, such as the TTL checks on shared
// tables, run against a fixed instant in tests.
package clock

import "time"

//go:generate mockgen -destination=mock/mock.go -package=mockclock github.com/KirkDiggler/rpg-sheets/internal/pkg/clock Clock

type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// New is the wall clock, in UTC so stored expiry times compare the same on
// every host.
func New() Clock {
	return Func(func() time.Time { return time.Now().UTC() })
}

// Fixed always reports t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
