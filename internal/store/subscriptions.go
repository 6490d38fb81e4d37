package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"room-booking-backend/internal/model"
)

// PutSubscription creates or replaces a subscription together with the set
// of resources it watches.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, resourceIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Omit(clause.Associations).Create(sub).Error; err != nil {
			return err
		}

		resources := make([]*model.WatchedResource, 0, len(resourceIDs))
		for _, id := range resourceIDs {
			resources = append(resources, &model.WatchedResource{ID: id})
		}
		if len(resources) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&resources).Error; err != nil {
				return err
			}
		}

		return tx.Model(sub).Association("Resources").Replace(resources)
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Resources").First(&sub, "endpoint = ?", endpoint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	sub := model.PushSubscription{Endpoint: endpoint}
	return s.db.WithContext(ctx).Select(clause.Associations).Delete(&sub).Error
}

// SubscriptionsForResource returns every subscription watching resourceID.
func (s *gormStore) SubscriptionsForResource(ctx context.Context, resourceID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_resource_mapping srm ON srm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("srm.watched_resource_id = ?", resourceID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for %s: %w", resourceID, err)
	}
	return subs, nil
}
