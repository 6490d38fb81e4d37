package availability

import "sort"

// FindAvailable returns the ids of pool that have no booking overlapping
// window under rule, de-duplicated and sorted ascending.
//
// It is a pure function of a snapshot. Callers that check availability and
// then insert are not protected against a concurrent insert in between.
func FindAvailable(bookings []Booking, pool []string, window Interval, rule OverlapRule) []string {
	blocked := make(map[string]struct{})
	for _, b := range bookings {
		if rule.Overlaps(b.Interval(), window) {
			blocked[b.ResourceID] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(pool))
	free := make([]string, 0, len(pool))
	for _, id := range pool {
		if _, ok := blocked[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		free = append(free, id)
	}
	sort.Strings(free)
	return free
}

// IsAvailable reports whether a single resource is free for window.
func IsAvailable(bookings []Booking, resourceID string, window Interval, rule OverlapRule) bool {
	return len(FindAvailable(bookings, []string{resourceID}, window, rule)) == 1
}
