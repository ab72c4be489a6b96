package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/hvac-site-backend/internal/domain"
)

const placesOK = `{
  "status": "OK",
  "result": {
    "rating": 4.8,
    "user_ratings_total": 57,
    "url": "https://maps.google.com/?cid=1",
    "reviews": [
      {"author_name": "Ana", "rating": 5, "relative_time_description": "a week ago", "text": "Fast and friendly", "profile_photo_url": "https://p/ana.png"},
      {"author_name": "Ben", "rating": 4, "relative_time_description": "2 months ago", "text": "Good work"}
    ]
  }
}`

func newReviewsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.ReviewSnapshot{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type placesStub struct {
	hits atomic.Int32
	body atomic.Value // string
	down atomic.Bool
}

func newPlacesStub(t *testing.T, body string) (*placesStub, *httptest.Server) {
	t.Helper()
	st := &placesStub{}
	st.body.Store(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st.hits.Add(1)
		if st.down.Load() {
			http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
			return
		}
		if r.URL.Query().Get("place_id") != "place-1" || r.URL.Query().Get("key") != "k" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(st.body.Load().(string)))
	}))
	t.Cleanup(srv.Close)
	return st, srv
}

func newTestReviews(db *gorm.DB, baseURL string, now *time.Time) *ReviewsService {
	s := NewReviewsService(db, GormReviewRepo{}, "k", "place-1", time.Hour)
	s.BaseURL = baseURL
	s.now = func() time.Time { return *now }
	return s
}

func TestReviews_NotConfigured(t *testing.T) {
	s := NewReviewsService(nil, nil, "", "place-1", time.Hour)
	if _, err := s.Get(context.Background()); !errors.Is(err, ErrReviewsNotConfigured) {
		t.Fatalf("expected ErrReviewsNotConfigured, got %v", err)
	}
	s = NewReviewsService(nil, nil, "k", "", time.Hour)
	if _, err := s.Get(context.Background()); !errors.Is(err, ErrReviewsNotConfigured) {
		t.Fatalf("expected ErrReviewsNotConfigured, got %v", err)
	}
}

func TestReviews_ReshapesUpstream(t *testing.T) {
	_, srv := newPlacesStub(t, placesOK)
	now := time.UnixMilli(1_700_000_000_000)
	s := newTestReviews(nil, srv.URL, &now)

	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := domain.ReviewSummary{
		Reviews: []domain.Review{
			{ID: "google-0-1700000000000", Author: "Ana", Role: "Verified Customer", Company: "a week ago", Content: "Fast and friendly", Rating: 5, ProfilePhotoURL: "https://p/ana.png"},
			{ID: "google-1-1700000000000", Author: "Ben", Role: "Verified Customer", Company: "2 months ago", Content: "Good work", Rating: 4},
		},
		Rating:       4.8,
		TotalReviews: 57,
		PlaceURL:     "https://maps.google.com/?cid=1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestReviews_Defaults(t *testing.T) {
	_, srv := newPlacesStub(t, `{"status":"OK","result":{}}`)
	now := time.Now()
	s := newTestReviews(nil, srv.URL, &now)

	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Rating != 5 || got.TotalReviews != 0 || len(got.Reviews) != 0 || got.Reviews == nil {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.PlaceURL != "https://www.google.com/maps/search/?api=1&query=google&query_place_id=place-1" {
		t.Fatalf("placeUrl default = %q", got.PlaceURL)
	}
}

func TestReviews_StatusError(t *testing.T) {
	_, srv := newPlacesStub(t, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
	now := time.Now()
	s := newTestReviews(nil, srv.URL, &now)

	_, err := s.Get(context.Background())
	var perr *PlacesStatusError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PlacesStatusError, got %v", err)
	}
	if perr.Status != "REQUEST_DENIED" || perr.Message != "The provided API key is invalid." {
		t.Fatalf("unexpected status error: %+v", perr)
	}
}

func TestReviews_UpstreamDown(t *testing.T) {
	st, srv := newPlacesStub(t, placesOK)
	st.down.Store(true)
	now := time.Now()
	s := newTestReviews(nil, srv.URL, &now)

	if _, err := s.Get(context.Background()); !errors.Is(err, ErrReviewsUnavailable) {
		t.Fatalf("expected ErrReviewsUnavailable, got %v", err)
	}
}

func TestReviews_CachesWithinTTLThenRefreshes(t *testing.T) {
	st, srv := newPlacesStub(t, placesOK)
	db := newReviewsDB(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestReviews(db, srv.URL, &now)
	ctx := context.Background()

	first, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}

	now = now.Add(30 * time.Minute)
	second, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if st.hits.Load() != 1 {
		t.Fatalf("expected cached answer inside TTL, upstream hits=%d", st.hits.Load())
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached summary differs (-first +second):\n%s", diff)
	}

	now = now.Add(time.Hour)
	st.body.Store(`{"status":"OK","result":{"rating":4.1,"user_ratings_total":60}}`)
	third, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("third Get: %v", err)
	}
	if st.hits.Load() != 2 || third.Rating != 4.1 {
		t.Fatalf("expected refresh after TTL, hits=%d rating=%v", st.hits.Load(), third.Rating)
	}
}

func TestReviews_ServesStaleWhenUpstreamFails(t *testing.T) {
	st, srv := newPlacesStub(t, placesOK)
	db := newReviewsDB(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestReviews(db, srv.URL, &now)
	ctx := context.Background()

	fresh, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("seed Get: %v", err)
	}

	now = now.Add(48 * time.Hour)
	st.down.Store(true)
	stale, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("expected stale copy, got %v", err)
	}
	if diff := cmp.Diff(fresh, stale, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("stale summary differs (-fresh +stale):\n%s", diff)
	}
}

func TestScrubKey_RemovesURL(t *testing.T) {
	in := &url.Error{Op: "Get", URL: "https://maps.example/details?key=secret", Err: errors.New("dial tcp: timeout")}
	err := scrubKey(in, "secret")
	if err == nil || strings.Contains(err.Error(), "secret") {
		t.Fatalf("key leaked: %v", err)
	}
	if !strings.Contains(err.Error(), "dial tcp: timeout") {
		t.Fatalf("cause lost: %v", err)
	}
}
