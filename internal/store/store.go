package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"room-booking-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListBookingsOn(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id string) (int64, error)
	ImportBookings(ctx context.Context, rows []model.Booking) (int64, error)

	ListRooms(ctx context.Context) ([]model.RoomCoord, error)
	UpsertRooms(ctx context.Context, floor string, rooms []model.RoomCoord) error

	PutSubscription(ctx context.Context, sub *model.PushSubscription, resourceIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForResource(ctx context.Context, resourceID string) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db           *gorm.DB
	shadowWrites bool
}

// NewGormStore creates a new GORM-backed store. With shadowWrites set every
// created booking is also copied into the shadow table.
func NewGormStore(db *gorm.DB, shadowWrites bool) Store {
	return &gormStore{db: db, shadowWrites: shadowWrites}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
