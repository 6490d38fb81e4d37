package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"room-booking-backend/internal/model"
)

func tableForFloor(floor string) (string, error) {
	switch floor {
	case model.FloorOG:
		return model.RoomCoordOG{}.TableName(), nil
	case model.FloorUG:
		return model.RoomCoordUG{}.TableName(), nil
	default:
		return "", fmt.Errorf("unknown floor %q", floor)
	}
}

// ListRooms returns the rooms of both floors, upper floor first.
func (s *gormStore) ListRooms(ctx context.Context) ([]model.RoomCoord, error) {
	var rooms []model.RoomCoord
	for _, floor := range []string{model.FloorOG, model.FloorUG} {
		table, _ := tableForFloor(floor)
		var part []model.RoomCoord
		if err := s.db.WithContext(ctx).Table(table).Order("room_no").Find(&part).Error; err != nil {
			return nil, fmt.Errorf("failed to list rooms on %s: %w", floor, err)
		}
		for i := range part {
			part[i].Floor = floor
		}
		rooms = append(rooms, part...)
	}
	return rooms, nil
}

// UpsertRooms writes the capacity and coordinates of the given rooms into
// the table of floor.
func (s *gormStore) UpsertRooms(ctx context.Context, floor string, rooms []model.RoomCoord) error {
	table, err := tableForFloor(floor)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		return nil
	}

	rows := make([]model.RoomCoord, len(rooms))
	for i, r := range rooms {
		r.Floor = floor
		rows[i] = r
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"capacity", "x", "y", "floor"}),
		}).Create(&rows).Error
	})
}
