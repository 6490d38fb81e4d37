package model

import "time"

// Kind tells which pool a booking draws from.
type Kind string

const (
	KindWorkplace Kind = "workplace"
	KindRoom      Kind = "room"
	KindZoom      Kind = "zoom"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindWorkplace, KindRoom, KindZoom:
		return true
	}
	return false
}

// Booking is a reservation of one resource for a time interval.
// StartsAt and EndsAt are stored in UTC.
type Booking struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Name       string    `gorm:"size:256;not null"`
	Kind       Kind      `gorm:"size:16;not null"`
	ResourceID string    `gorm:"size:128;not null;index"`
	Room       string    `gorm:"size:64;not null;index"`
	Place      string    `gorm:"size:64"`
	StartsAt   time.Time `gorm:"not null;index"`
	EndsAt     time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// BookingShadow is the write-through copy of a booking, kept for auditing.
// Rows are never removed when the primary booking is cancelled.
type BookingShadow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Name       string    `gorm:"size:256;not null"`
	Kind       Kind      `gorm:"size:16;not null"`
	ResourceID string    `gorm:"size:128;not null"`
	Room       string    `gorm:"size:64;not null"`
	Place      string    `gorm:"size:64"`
	StartsAt   time.Time `gorm:"not null"`
	EndsAt     time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName overrides the pluralized default.
func (BookingShadow) TableName() string {
	return "bookings_shadow"
}

// ShadowOf copies a booking into its shadow row.
func ShadowOf(b *Booking) *BookingShadow {
	return &BookingShadow{
		ID:         b.ID,
		Name:       b.Name,
		Kind:       b.Kind,
		ResourceID: b.ResourceID,
		Room:       b.Room,
		Place:      b.Place,
		StartsAt:   b.StartsAt,
		EndsAt:     b.EndsAt,
		CreatedAt:  b.CreatedAt,
	}
}
