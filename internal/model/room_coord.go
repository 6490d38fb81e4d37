package model

// Floors of the building. Each floor has its own coordinate table.
const (
	FloorOG = "OG"
	FloorUG = "UG"
)

// RoomCoord holds the capacity and the floor plan position of a room.
type RoomCoord struct {
	RoomNo   string  `gorm:"primaryKey;size:64" json:"roomno"`
	Capacity int     `gorm:"not null" json:"capacity"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Floor    string  `gorm:"size:8;not null" json:"floor"`
}

// RoomCoordOG is a room on the upper floor.
type RoomCoordOG struct {
	RoomCoord
}

func (RoomCoordOG) TableName() string { return "room_coords_og" }

// RoomCoordUG is a room on the ground floor.
type RoomCoordUG struct {
	RoomCoord
}

func (RoomCoordUG) TableName() string { return "room_coords_ug" }

// GroupByFloor splits rooms by their floor. Rooms without a floor go to the
// upper floor.
func GroupByFloor(rooms []RoomCoord) map[string][]RoomCoord {
	out := make(map[string][]RoomCoord)
	for _, r := range rooms {
		floor := r.Floor
		if floor == "" {
			floor = FloorOG
		}
		r.Floor = floor
		out[floor] = append(out[floor], r)
	}
	return out
}
