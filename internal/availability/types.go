package availability

import "time"

// Booking is the engine's read-only view of a persisted booking.
type Booking struct {
	ID         string
	Name       string
	ResourceID string
	Start      time.Time
	End        time.Time
}

// Interval returns the booking window.
func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// Resource is a bookable unit with a fixed number of places.
type Resource struct {
	ID       string
	Capacity int
}

// Occupancy is the classification of one resource for one day.
type Occupancy struct {
	ResourceID string   `json:"resource_id"`
	Count      int      `json:"count"`
	Capacity   int      `json:"capacity"`
	Ratio      float64  `json:"ratio"`
	Category   Category `json:"category"`
}

// HourlyOccupancy is the classification of one resource for one hour slot.
type HourlyOccupancy struct {
	Occupancy
	Hour time.Time `json:"hour"`
}

func newOccupancy(id string, count, capacity int) Occupancy {
	return Occupancy{
		ResourceID: id,
		Count:      count,
		Capacity:   capacity,
		Ratio:      Ratio(count, capacity),
		Category:   CategoryFor(count, capacity),
	}
}

func unclassifiedOccupancy(id string, count int) Occupancy {
	return Occupancy{
		ResourceID: id,
		Count:      count,
		Category:   CategoryUnclassified,
	}
}
