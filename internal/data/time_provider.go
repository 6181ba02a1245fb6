package data

import "time"

// TimeProvider supplies the current time; tests substitute a fixed clock.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using real system time.
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider implements TimeProvider with a settable time for testing.
type FixedTimeProvider struct {
	fixedTime time.Time
}

// NewFixedTimeProvider creates a new FixedTimeProvider with the given time.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixedTime: t}
}

func (f *FixedTimeProvider) Now() time.Time { return f.fixedTime }

// AddTime adds a duration to the current fixed time.
func (f *FixedTimeProvider) AddTime(d time.Duration) {
	f.fixedTime = f.fixedTime.Add(d)
}
