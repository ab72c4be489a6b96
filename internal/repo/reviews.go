// Package repo – review snapshots.
//
// One row per place holds the last successful upstream answer as JSON.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/hvac-site-backend/internal/domain"
)

// GetReviewSnapshot returns the cached snapshot for placeID or ErrNotFound.
func GetReviewSnapshot(ctx context.Context, db *gorm.DB, placeID string) (*domain.ReviewSnapshot, error) {
	var snap domain.ReviewSnapshot
	err := db.WithContext(ctx).Where("place_id = ?", placeID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveReviewSnapshot inserts or replaces the snapshot for placeID.
func SaveReviewSnapshot(ctx context.Context, db *gorm.DB, placeID, payload string, fetchedAt time.Time) error {
	snap := &domain.ReviewSnapshot{
		PlaceID:   placeID,
		Payload:   payload,
		FetchedAt: fetchedAt.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "fetched_at", "updated_at", "deleted_at"}),
	}).Create(snap).Error
}
