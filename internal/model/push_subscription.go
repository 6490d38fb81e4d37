package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Resources []*WatchedResource `gorm:"many2many:subscription_resource_mapping;"`
}

// WatchedResource is a resource id somebody wants a "free again" push for.
type WatchedResource struct {
	ID string `gorm:"primaryKey;size:128"`
}
