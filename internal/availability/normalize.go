package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedTimestamp is returned when a stored timestamp matches none of
// the accepted layouts.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// DefaultStorageOffset is the shift between the storage clock (UTC) and the
// office display clock.
const DefaultStorageOffset = 2 * time.Hour

// naiveLayouts are timestamps without zone information. They are read as
// storage time (UTC).
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// RawBooking is a booking row before its timestamps have been parsed, as it
// comes from spreadsheet imports.
type RawBooking struct {
	ID         string
	Name       string
	ResourceID string
	Start      string
	End        string
}

// Normalizer brings persisted timestamps into the display zone so that every
// comparison in the engine happens on one canonical clock.
type Normalizer struct {
	offset time.Duration
	loc    *time.Location
}

// NewNormalizer builds a normalizer whose display zone is UTC+offset.
func NewNormalizer(offset time.Duration) *Normalizer {
	return &Normalizer{
		offset: offset,
		loc:    time.FixedZone(zoneName(offset), int(offset/time.Second)),
	}
}

func zoneName(offset time.Duration) string {
	if offset == 0 {
		return "UTC"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}

// Location returns the display zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Offset returns the configured storage-to-display shift.
func (n *Normalizer) Offset() time.Duration {
	return n.offset
}

// ParseTimestamp parses a stored timestamp. Values carrying a zone keep their
// instant; naive values are storage time. The result is in the display zone.
func (n *Normalizer) ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(n.loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.In(n.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
}

// ParseDate parses a calendar date (YYYY-MM-DD) as midnight in the display
// zone.
func (n *Normalizer) ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(raw), n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}
	return t, nil
}

// ParseRow converts a raw row into a booking in the display zone.
func (n *Normalizer) ParseRow(r RawBooking) (Booking, error) {
	start, err := n.ParseTimestamp(r.Start)
	if err != nil {
		return Booking{}, fmt.Errorf("start: %w", err)
	}
	end, err := n.ParseTimestamp(r.End)
	if err != nil {
		return Booking{}, fmt.Errorf("end: %w", err)
	}
	b := Booking{ID: r.ID, Name: r.Name, ResourceID: r.ResourceID, Start: start, End: end}
	if !b.Interval().Valid() {
		return Booking{}, fmt.Errorf("%w: end %s is not after start %s", ErrMalformedTimestamp, r.End, r.Start)
	}
	return b, nil
}

// Normalize moves a typed booking into the display zone. It reports false
// for rows with a missing timestamp or a non-positive duration.
func (n *Normalizer) Normalize(b Booking) (Booking, bool) {
	if !b.Interval().Valid() {
		return Booking{}, false
	}
	b.Start = b.Start.In(n.loc)
	b.End = b.End.In(n.loc)
	return b, true
}

// NormalizeAll normalizes a snapshot and returns the usable rows together
// with the number of rows that were dropped.
func (n *Normalizer) NormalizeAll(rows []Booking) ([]Booking, int) {
	out := make([]Booking, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		b, ok := n.Normalize(r)
		if !ok {
			dropped++
			continue
		}
		out = append(out, b)
	}
	return out, dropped
}
