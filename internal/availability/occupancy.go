package availability

import (
	"sort"
	"time"
)

// Classify counts the bookings starting on onDate (calendar date only,
// evaluated in loc) per resource and buckets every resource into a category.
//
// The result holds one entry per resource, in input order, followed by one
// unclassified entry per unknown resource id seen that day, sorted by id.
func Classify(bookings []Booking, resources []Resource, onDate time.Time, loc *time.Location) []Occupancy {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := onDate.Date()

	counts := make(map[string]int)
	for _, b := range bookings {
		by, bm, bd := b.Start.In(loc).Date()
		if by != y || bm != m || bd != d {
			continue
		}
		counts[b.ResourceID]++
	}

	out := make([]Occupancy, 0, len(resources))
	known := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		if _, dup := known[r.ID]; dup {
			continue
		}
		known[r.ID] = struct{}{}
		out = append(out, newOccupancy(r.ID, counts[r.ID], r.Capacity))
	}

	var unknown []string
	for id := range counts {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		out = append(out, unclassifiedOccupancy(id, counts[id]))
	}
	return out
}

type hourKey struct {
	resourceID string
	hour       int64
}

// ClassifyHourly is the hourly variant of Classify. A booking counts towards
// every hour slot [h, h+1h) of onDate that intersects its [start, end)
// window: the starting hour is included, an end exactly on the hour does not
// touch the next slot.
//
// Known resources get an entry for every hour of the day, sorted by resource
// (input order) then hour. Unknown resource ids only appear for hours that
// have bookings.
func ClassifyHourly(bookings []Booking, resources []Resource, onDate time.Time, loc *time.Location) []HourlyOccupancy {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := onDate.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	counts := make(map[hourKey]int)
	for _, b := range bookings {
		for _, h := range hourSlots(b.Interval(), dayStart, dayEnd, loc) {
			counts[hourKey{b.ResourceID, h.Unix()}]++
		}
	}

	var hours []time.Time
	for h := dayStart; h.Before(dayEnd); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}

	out := make([]HourlyOccupancy, 0, len(resources)*len(hours))
	known := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		if _, dup := known[r.ID]; dup {
			continue
		}
		known[r.ID] = struct{}{}
		for _, h := range hours {
			n := counts[hourKey{r.ID, h.Unix()}]
			out = append(out, HourlyOccupancy{Occupancy: newOccupancy(r.ID, n, r.Capacity), Hour: h})
		}
	}

	var unknown []hourKey
	for k := range counts {
		if _, ok := known[k.resourceID]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Slice(unknown, func(i, j int) bool {
		if unknown[i].resourceID != unknown[j].resourceID {
			return unknown[i].resourceID < unknown[j].resourceID
		}
		return unknown[i].hour < unknown[j].hour
	})
	for _, k := range unknown {
		out = append(out, HourlyOccupancy{
			Occupancy: unclassifiedOccupancy(k.resourceID, counts[k]),
			Hour:      time.Unix(k.hour, 0).In(loc),
		})
	}
	return out
}

// hourSlots returns the starts of the hour slots of [dayStart, dayEnd) that
// intersect iv.
func hourSlots(iv Interval, dayStart, dayEnd time.Time, loc *time.Location) []time.Time {
	if !iv.Valid() {
		return nil
	}
	start, end := iv.Start, iv.End
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return nil
	}
	s := start.In(loc)
	h := time.Date(s.Year(), s.Month(), s.Day(), s.Hour(), 0, 0, 0, loc)
	var slots []time.Time
	for ; h.Before(end); h = h.Add(time.Hour) {
		slots = append(slots, h)
	}
	return slots
}
