package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"room-booking-backend/internal/metrics"
	"room-booking-backend/internal/model"
)

func (s *gormStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var rows []model.Booking
	if err := s.db.WithContext(ctx).Order("starts_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return rows, nil
}

// ListBookingsOn returns the bookings whose interval touches [from, to).
func (s *gormStore) ListBookingsOn(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var rows []model.Booking
	err := s.db.WithContext(ctx).
		Where("starts_at < ? AND ends_at > ?", to.UTC(), from.UTC()).
		Order("starts_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return rows, nil
}

func (s *gormStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking %s: %w", id, err)
	}
	return &b, nil
}

// CreateBooking inserts b. The shadow copy is best effort: a failed shadow
// insert is logged and counted but the primary row stays.
func (s *gormStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	res := s.db.WithContext(ctx).Create(b)
	if res.Error != nil || res.RowsAffected == 0 {
		metrics.WriteFailures.WithLabelValues("create").Inc()
		return &WriteError{Op: "create", Table: "bookings", Err: res.Error}
	}

	if !s.shadowWrites {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(model.ShadowOf(b)).Error; err != nil {
		metrics.ShadowWriteFailures.Inc()
		log.Printf("Warning: shadow write for booking %s failed: %v", b.ID, err)
	}
	return nil
}

// DeleteBooking removes a booking by id. The shadow copy is left in place.
func (s *gormStore) DeleteBooking(ctx context.Context, id string) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Booking{})
	if res.Error != nil || res.RowsAffected == 0 {
		metrics.WriteFailures.WithLabelValues("delete").Inc()
		return 0, &WriteError{Op: "delete", Table: "bookings", Err: res.Error}
	}
	return res.RowsAffected, nil
}

// ImportBookings inserts rows whose id is not yet present and returns the
// number of new rows.
func (s *gormStore) ImportBookings(ctx context.Context, rows []model.Booking) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		metrics.WriteFailures.WithLabelValues("import").Inc()
		return 0, &WriteError{Op: "import", Table: "bookings", Err: res.Error}
	}
	return res.RowsAffected, nil
}
