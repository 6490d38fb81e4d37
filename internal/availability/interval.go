package availability

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a time window. Bookings are stored as [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the interval has a positive length.
func (i Interval) Valid() bool {
	return !i.Start.IsZero() && i.End.After(i.Start)
}

// OverlapsHalfOpen reports whether two [start, end) windows share an instant.
// Back-to-back intervals do not overlap.
func (i Interval) OverlapsHalfOpen(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// OverlapsInclusive treats both ends as closed, so a booking ending exactly
// when the other starts counts as a conflict.
func (i Interval) OverlapsInclusive(o Interval) bool {
	return !i.Start.After(o.End) && !i.End.Before(o.Start)
}

// OverlapRule selects the overlap test used by FindAvailable.
type OverlapRule int

const (
	// OverlapInclusive is the dashboard's historical rule:
	// booking.start <= window.end && booking.end >= window.start.
	// It is over-restrictive for back-to-back bookings.
	OverlapInclusive OverlapRule = iota
	// OverlapHalfOpen only blocks windows that share a real instant.
	OverlapHalfOpen
)

// Overlaps applies the rule to a booking interval and a query window.
func (r OverlapRule) Overlaps(booking, window Interval) bool {
	if r == OverlapHalfOpen {
		return booking.OverlapsHalfOpen(window)
	}
	return booking.OverlapsInclusive(window)
}

func (r OverlapRule) String() string {
	if r == OverlapHalfOpen {
		return "half_open"
	}
	return "inclusive"
}

// ParseOverlapRule maps a configuration value to a rule. An empty value
// selects OverlapInclusive.
func ParseOverlapRule(s string) (OverlapRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inclusive":
		return OverlapInclusive, nil
	case "half_open", "half-open":
		return OverlapHalfOpen, nil
	}
	return OverlapInclusive, fmt.Errorf("unknown overlap rule %q", s)
}
