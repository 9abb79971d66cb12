package utils

import "time"

// Clock abstracts "now" so period and trial math is testable
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock
func RealClock() Clock { return realClock{} }

// FixedClock always reports the given instant, for tests
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }
