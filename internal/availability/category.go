package availability

import "encoding/json"

// Category is the occupancy bucket of a resource for a day or an hour slot.
// The declaration order is the order the dashboard uses for legends and
// colours, so new values must only ever be appended.
type Category int

const (
	CategoryEmpty Category = iota
	CategorySomePlacesBooked
	CategoryMostPlacesBooked
	CategoryBooked
	CategoryOverbooked
	// CategoryUnclassified marks bookings whose resource id has no entry in
	// the capacity table. They are reported instead of dropped.
	CategoryUnclassified
)

var categoryNames = [...]string{
	"empty",
	"some places booked",
	"most places booked",
	"booked",
	"overbooked",
	"unclassified",
}

var categoryColors = [...]string{
	"#63B71D",
	"#ECB309",
	"#EC7309",
	"#C9081F",
	"#9C0629",
	"#9E9E9E",
}

// String returns the display label of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Color returns the chart fill colour of the category.
func (c Category) Color() string {
	if c < 0 || int(c) >= len(categoryColors) {
		return ""
	}
	return categoryColors[c]
}

// MarshalJSON encodes the category as its display label.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryEmpty,
		CategorySomePlacesBooked,
		CategoryMostPlacesBooked,
		CategoryBooked,
		CategoryOverbooked,
		CategoryUnclassified,
	}
}

// Ratio returns count/capacity. A booked resource with a capacity of zero
// is treated as fully booked, so the ratio is 1 instead of a division by
// zero. This is a policy choice for rooms that exist on the floor plan but
// offer no places.
func Ratio(count, capacity int) float64 {
	if count <= 0 {
		return 0
	}
	if capacity <= 0 {
		return 1
	}
	return float64(count) / float64(capacity)
}

// CategoryFor buckets a booking count against a capacity.
//
//	count == 0                  -> empty
//	0 < count < capacity/2      -> some places booked
//	capacity/2 <= count < cap   -> most places booked
//	count == capacity           -> booked
//	count > capacity            -> overbooked
//
// The comparisons are done on integers so the 0.5 boundary is exact. A
// resource without bookings is always empty, even with zero capacity.
func CategoryFor(count, capacity int) Category {
	switch {
	case count <= 0:
		return CategoryEmpty
	case capacity <= 0:
		return CategoryBooked
	case 2*count < capacity:
		return CategorySomePlacesBooked
	case count < capacity:
		return CategoryMostPlacesBooked
	case count == capacity:
		return CategoryBooked
	default:
		return CategoryOverbooked
	}
}
