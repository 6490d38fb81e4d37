package booking

import (
	"time"

	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/parse"
)

// Pool names accepted by Available.
const (
	PoolRooms      = "rooms"
	PoolWorkplaces = "workplaces"
	PoolZoom       = "zoom"
)

// CreateRequest is the input of Create.
type CreateRequest struct {
	Name       string
	Kind       model.Kind
	ResourceID string
	Start      time.Time
	End        time.Time
}

// View is a booking as shown on the dashboard, in the display zone.
type View struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       model.Kind `json:"kind"`
	ResourceID string     `json:"resource_id"`
	Room       string     `json:"room"`
	Place      string     `json:"place,omitempty"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
}

// record is a normalized booking together with the columns the engine does
// not carry.
type record struct {
	availability.Booking
	Kind  model.Kind
	Room  string
	Place string
}

func (r record) view() View {
	return View{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       r.Kind,
		ResourceID: r.ResourceID,
		Room:       r.Room,
		Place:      r.Place,
		Start:      r.Start,
		End:        r.End,
	}
}

// Snapshot is one consistent read of the booking and capacity tables.
type Snapshot struct {
	records []record
	Rooms   []model.RoomCoord
	Dropped int
}

// Bookings returns the normalized bookings keyed by their resource id.
func (s Snapshot) Bookings() []availability.Booking {
	out := make([]availability.Booking, len(s.records))
	for i, r := range s.records {
		out[i] = r.Booking
	}
	return out
}

// roomBookings returns the room and workplace bookings keyed by room, the
// granularity the occupancy view works on.
func (s Snapshot) roomBookings() []availability.Booking {
	out := make([]availability.Booking, 0, len(s.records))
	for _, r := range s.records {
		if r.Kind == model.KindZoom {
			continue
		}
		b := r.Booking
		b.ResourceID = r.Room
		if b.ResourceID == "" {
			b.ResourceID = parse.RoomOf(r.ResourceID)
		}
		out = append(out, b)
	}
	return out
}

func (s Snapshot) resources() []availability.Resource {
	out := make([]availability.Resource, len(s.Rooms))
	for i, r := range s.Rooms {
		out[i] = availability.Resource{ID: r.RoomNo, Capacity: r.Capacity}
	}
	return out
}
