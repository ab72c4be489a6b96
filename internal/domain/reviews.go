package domain

import (
	"time"

	"gorm.io/gorm"
)

// Review is a single third-party review as rendered on the site.
type Review struct {
	ID              string `json:"id"`
	Author          string `json:"author"`
	Role            string `json:"role"`
	Company         string `json:"company"`
	Content         string `json:"content"`
	Rating          int    `json:"rating"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
}

// ReviewSummary is the payload served by GET /api/reviews.
type ReviewSummary struct {
	Reviews      []Review `json:"reviews"`
	Rating       float64  `json:"rating"`
	TotalReviews int      `json:"totalReviews"`
	PlaceURL     string   `json:"placeUrl"`
}

// ReviewSnapshot caches the last successful upstream fetch for a place.
//
// Fields:
//   - PlaceID: upstream place identifier, one row per place.
//   - Payload: JSON-encoded ReviewSummary.
//   - FetchedAt: when the upstream answered; freshness is judged against it.
type ReviewSnapshot struct {
	PlaceID   string         `gorm:"type:varchar(255);primaryKey"`
	Payload   string         `gorm:"type:text;not null"`
	FetchedAt time.Time      `gorm:"not null;index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the database table name for ReviewSnapshot.
func (ReviewSnapshot) TableName() string { return "review_snapshots" }
