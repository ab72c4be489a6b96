// Package services – ReviewsService
//
// ReviewsService serves the site's review carousel from the Google Places
// Details API. Answers are cached per place in SQLite for TTL; when the
// upstream fails and a cached answer exists (however old) the cached answer
// is served instead of an error.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hvac-site-backend/internal/domain"
	"github.com/tbourn/hvac-site-backend/internal/repo"
)

// DefaultPlacesBaseURL is the Places Details endpoint.
const DefaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place/details/json"

// ReviewRepo is the persistence contract for cached review snapshots.
type ReviewRepo interface {
	GetReviewSnapshot(ctx context.Context, db *gorm.DB, placeID string) (*domain.ReviewSnapshot, error)
	SaveReviewSnapshot(ctx context.Context, db *gorm.DB, placeID, payload string, fetchedAt time.Time) error
}

// GormReviewRepo adapts the repo package functions to ReviewRepo.
type GormReviewRepo struct{}

func (GormReviewRepo) GetReviewSnapshot(ctx context.Context, db *gorm.DB, placeID string) (*domain.ReviewSnapshot, error) {
	return repo.GetReviewSnapshot(ctx, db, placeID)
}

func (GormReviewRepo) SaveReviewSnapshot(ctx context.Context, db *gorm.DB, placeID, payload string, fetchedAt time.Time) error {
	return repo.SaveReviewSnapshot(ctx, db, placeID, payload, fetchedAt)
}

// ReviewsService fetches and caches place reviews.
type ReviewsService struct {
	// DB and Repo back the cache. A nil DB disables caching.
	DB   *gorm.DB
	Repo ReviewRepo

	HTTP    *http.Client
	BaseURL string
	APIKey  string
	PlaceID string
	TTL     time.Duration

	now func() time.Time
}

// NewReviewsService constructs a ReviewsService with a 10s HTTP timeout.
func NewReviewsService(db *gorm.DB, r ReviewRepo, apiKey, placeID string, ttl time.Duration) *ReviewsService {
	return &ReviewsService{
		DB:      db,
		Repo:    r,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: DefaultPlacesBaseURL,
		APIKey:  apiKey,
		PlaceID: placeID,
		TTL:     ttl,
		now:     time.Now,
	}
}

// Get returns the review summary for the configured place.
//
// Errors: ErrReviewsNotConfigured when key or place is missing,
// *PlacesStatusError when the API answers with a non-OK status,
// ErrReviewsUnavailable when the API cannot be reached. The latter two are
// only returned when no cached snapshot exists.
func (s *ReviewsService) Get(ctx context.Context) (domain.ReviewSummary, error) {
	tr := otel.Tracer("services/ReviewsService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("place.id", s.PlaceID)))
	defer span.End()

	if s.APIKey == "" || s.PlaceID == "" {
		return domain.ReviewSummary{}, ErrReviewsNotConfigured
	}
	now := s.clock()

	cached, cachedOK := s.loadCache(ctx)
	if cachedOK && s.TTL > 0 && now.Sub(cached.fetchedAt) < s.TTL {
		reviewFetches.WithLabelValues("cache").Inc()
		return cached.summary, nil
	}

	summary, err := s.fetch(ctx, now)
	if err != nil {
		if cachedOK {
			reviewFetches.WithLabelValues("stale").Inc()
			zerolog.Ctx(ctx).Warn().Err(err).Time("fetched_at", cached.fetchedAt).Msg("reviews upstream failed; serving cached copy")
			return cached.summary, nil
		}
		reviewFetches.WithLabelValues("error").Inc()
		span.RecordError(err)
		return domain.ReviewSummary{}, err
	}
	reviewFetches.WithLabelValues("upstream").Inc()
	s.storeCache(ctx, summary, now)
	return summary, nil
}

type cachedSummary struct {
	summary   domain.ReviewSummary
	fetchedAt time.Time
}

func (s *ReviewsService) loadCache(ctx context.Context) (cachedSummary, bool) {
	if s.DB == nil || s.Repo == nil {
		return cachedSummary{}, false
	}
	snap, err := s.Repo.GetReviewSnapshot(ctx, s.DB, s.PlaceID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("reviews cache read failed")
		}
		return cachedSummary{}, false
	}
	var sum domain.ReviewSummary
	if err := json.Unmarshal([]byte(snap.Payload), &sum); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("reviews cache payload unreadable")
		return cachedSummary{}, false
	}
	return cachedSummary{summary: sum, fetchedAt: snap.FetchedAt}, true
}

func (s *ReviewsService) storeCache(ctx context.Context, sum domain.ReviewSummary, at time.Time) {
	if s.DB == nil || s.Repo == nil {
		return
	}
	raw, err := json.Marshal(sum)
	if err == nil {
		err = s.Repo.SaveReviewSnapshot(ctx, s.DB, s.PlaceID, string(raw), at)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("reviews cache write failed")
	}
}

// placeDetails is the subset of the Places Details response we read.
type placeDetails struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		URL              string  `json:"url"`
		Reviews          []struct {
			AuthorName              string `json:"author_name"`
			Rating                  int    `json:"rating"`
			RelativeTimeDescription string `json:"relative_time_description"`
			Text                    string `json:"text"`
			ProfilePhotoURL         string `json:"profile_photo_url"`
		} `json:"reviews"`
	} `json:"result"`
}

func (s *ReviewsService) fetch(ctx context.Context, now time.Time) (domain.ReviewSummary, error) {
	base := s.BaseURL
	if base == "" {
		base = DefaultPlacesBaseURL
	}
	q := url.Values{}
	q.Set("place_id", s.PlaceID)
	q.Set("fields", "reviews,rating,user_ratings_total,url")
	q.Set("key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("%w: %w", ErrReviewsUnavailable, err)
	}
	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("%w: %w", ErrReviewsUnavailable, scrubKey(err, s.APIKey))
	}
	defer resp.Body.Close()

	var d placeDetails
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("%w: decode (http %d): %w", ErrReviewsUnavailable, resp.StatusCode, err)
	}
	if d.Status != "OK" {
		return domain.ReviewSummary{}, &PlacesStatusError{Status: d.Status, Message: d.ErrorMessage}
	}

	out := domain.ReviewSummary{
		Reviews:      make([]domain.Review, 0, len(d.Result.Reviews)),
		Rating:       d.Result.Rating,
		TotalReviews: d.Result.UserRatingsTotal,
		PlaceURL:     d.Result.URL,
	}
	if out.Rating == 0 {
		out.Rating = 5
	}
	if out.PlaceURL == "" {
		out.PlaceURL = "https://www.google.com/maps/search/?api=1&query=google&query_place_id=" + url.QueryEscape(s.PlaceID)
	}
	ms := now.UnixMilli()
	for i, r := range d.Result.Reviews {
		out.Reviews = append(out.Reviews, domain.Review{
			ID:              fmt.Sprintf("google-%d-%d", i, ms),
			Author:          r.AuthorName,
			Role:            "Verified Customer",
			Company:         r.RelativeTimeDescription,
			Content:         r.Text,
			Rating:          r.Rating,
			ProfilePhotoURL: r.ProfilePhotoURL,
		})
	}
	return out, nil
}

func (s *ReviewsService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// scrubKey strips the API key from transport errors, which embed the URL.
func scrubKey(err error, key string) error {
	var uerr *url.Error
	if key != "" && errors.As(err, &uerr) {
		return fmt.Errorf("%s places details: %w", uerr.Op, uerr.Err)
	}
	return err
}
