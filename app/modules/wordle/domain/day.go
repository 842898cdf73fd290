package wordledomain

import (
	"errors"
	"fmt"
	"time"
)

// ErrDayOutOfWindow is returned when a report's day does not match the time
// it was posted.
var ErrDayOutOfWindow = errors.New("puzzle day outside accepted window")

// DefaultEpoch is the UTC start of puzzle day 1.
var DefaultEpoch = time.Date(2021, time.June, 20, 0, 0, 0, 0, time.UTC)

const dayLength = 24 * time.Hour

// Calendar converts between puzzle days and wall-clock time for a given
// epoch (the start of day 1).
type Calendar struct {
	Epoch time.Time
}

// Start returns the start of puzzle day d.
func (c Calendar) Start(d uint32) time.Time {
	return c.Epoch.Add(time.Duration(int64(d)-1) * dayLength)
}

// DayAt returns the puzzle day in progress at t. Times before the epoch
// return 0.
func (c Calendar) DayAt(t time.Time) uint32 {
	if t.Before(c.Epoch) {
		return 0
	}
	return uint32(t.Sub(c.Epoch)/dayLength) + 1
}

// Cutoff is the oldest message time a backfill needs to look at.
func (c Calendar) Cutoff(grace time.Duration) time.Time {
	return c.Epoch.Add(-grace)
}

// DayPolicy decides whether a reported day is plausible for the time the
// report was posted. A disabled policy accepts every report.
type DayPolicy struct {
	Enabled   bool
	Calendar  Calendar
	Tolerance time.Duration
}

// Check returns nil when a report for puzzle day d posted at t is accepted.
func (p DayPolicy) Check(d uint32, t time.Time) error {
	if !p.Enabled {
		return nil
	}
	if d == 0 {
		return fmt.Errorf("%w: day 0", ErrDayOutOfWindow)
	}
	start := p.Calendar.Start(d)
	lo := start.Add(-p.Tolerance)
	hi := start.Add(dayLength + p.Tolerance)
	if t.Before(lo) || !t.Before(hi) {
		return fmt.Errorf("%w: day %d posted at %s", ErrDayOutOfWindow, d, t.UTC().Format(time.RFC3339))
	}
	return nil
}
