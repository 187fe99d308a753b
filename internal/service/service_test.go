package service

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/rosie/reelworthy/internal/config"
	"github.com/rosie/reelworthy/internal/domain"
	"github.com/rosie/reelworthy/internal/logger"
	"github.com/rosie/reelworthy/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// stubSentiment returns canned polarities keyed by review body, so tests can
// pin exact multiplier values.
type stubSentiment struct {
	scores map[string]float64
}

func (s *stubSentiment) Polarity(text string) float64 {
	return s.scores[text]
}

type testEnv struct {
	svc        *RecommendService
	movieRepo  *repository.MovieRepository
	ratingRepo *repository.RatingRepository
	reviewRepo *repository.ReviewRepository
	sentiment  *stubSentiment
}

// newTestEnv builds a service over an isolated in-memory SQLite database.
func newTestEnv(t *testing.T, cfg config.RecommendConfig) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if cfg.DefaultTopN == 0 {
		cfg.DefaultTopN = 10
	}
	if cfg.MaxTopN == 0 {
		cfg.MaxTopN = 50
	}

	movieRepo := repository.NewMovieRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	sentiment := &stubSentiment{scores: map[string]float64{}}

	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	svc := NewRecommendService(movieRepo, ratingRepo, reviewRepo, sentiment, log, cfg)

	return &testEnv{
		svc:        svc,
		movieRepo:  movieRepo,
		ratingRepo: ratingRepo,
		reviewRepo: reviewRepo,
		sentiment:  sentiment,
	}
}

func (e *testEnv) addMovie(t *testing.T, id uint, title, compositeDoc string) {
	t.Helper()
	err := e.movieRepo.Upsert(context.Background(), &domain.Movie{
		MovieID:      id,
		Title:        title,
		CompositeDoc: compositeDoc,
	})
	if err != nil {
		t.Fatalf("failed to seed movie %d: %v", id, err)
	}
}

func (e *testEnv) addRating(t *testing.T, userID, movieID uint, score int) {
	t.Helper()
	err := e.ratingRepo.Upsert(context.Background(), &domain.Rating{
		UserID:  userID,
		MovieID: movieID,
		Score:   score,
	})
	if err != nil {
		t.Fatalf("failed to seed rating (%d, %d): %v", userID, movieID, err)
	}
}

func (e *testEnv) addReview(t *testing.T, userID, movieID uint, body string) {
	t.Helper()
	err := e.reviewRepo.Create(context.Background(), &domain.Review{
		UserID:  userID,
		MovieID: movieID,
		Body:    body,
	})
	if err != nil {
		t.Fatalf("failed to seed review (%d, %d): %v", userID, movieID, err)
	}
}

func scoredIDs(movies []domain.ScoredMovie) []uint {
	ids := make([]uint, len(movies))
	for i, m := range movies {
		ids[i] = m.MovieID
	}
	return ids
}

func sameIDs(a []uint, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
