package service

import (
	"context"
	"math"
	"testing"

	"github.com/rosie/reelworthy/internal/config"
	"github.com/rosie/reelworthy/internal/domain"
)

func candidateList(ids ...uint) []domain.ScoredMovie {
	out := make([]domain.ScoredMovie, len(ids))
	for i, id := range ids {
		out[i] = domain.ScoredMovie{Movie: domain.Movie{MovieID: id}}
	}
	return out
}

func TestRerankUnauthenticatedIdentity(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	candidates := candidateList(1, 2, 3)

	got, err := env.svc.Rerank(context.Background(), candidates, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{1, 2, 3}) {
		t.Errorf("unauthenticated rerank must be identity, got %v", scoredIDs(got))
	}
}

func TestRerankUnratedUserIdentity(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	// Other users have ratings; the target user has none.
	env.addRating(t, 2, 1, 5)
	env.addRating(t, 2, 2, 3)

	candidates := candidateList(1, 2)
	got, err := env.svc.Rerank(context.Background(), candidates, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{1, 2}) {
		t.Errorf("rerank for a user with no ratings must be identity, got %v", scoredIDs(got))
	}
}

func TestRerankNoContributorsIdentity(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	// The target user has ratings but nobody else rated the candidates.
	env.addRating(t, 1, 100, 5)
	env.addRating(t, 1, 101, 4)

	candidates := candidateList(1, 2)
	got, err := env.svc.Rerank(context.Background(), candidates, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{1, 2}) {
		t.Errorf("rerank with no contributing ratings must be identity, got %v", scoredIDs(got))
	}
}

// User 1 rated X=5, Y=5. User 2 rated X=5, Y=4, Z=5. User 2 is the only
// contributor, so each candidate's predicted score is their rating and Z
// must move ahead of Y.
func TestRerankSingleContributor(t *testing.T) {
	const (
		movieX = uint(10)
		movieY = uint(11)
		movieZ = uint(12)
	)
	env := newTestEnv(t, config.RecommendConfig{})
	env.addRating(t, 1, movieX, 5)
	env.addRating(t, 1, movieY, 5)
	env.addRating(t, 2, movieX, 5)
	env.addRating(t, 2, movieY, 4)
	env.addRating(t, 2, movieZ, 5)

	got, err := env.svc.Rerank(context.Background(), candidateList(movieY, movieZ), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sameIDs(scoredIDs(got), []uint{movieZ, movieY}) {
		t.Fatalf("expected [Z Y], got %v", scoredIDs(got))
	}
	// Weighted average over a single contributor collapses to the rating.
	if math.Abs(got[0].Score-5) > 1e-9 {
		t.Errorf("predicted score for Z = %f, want 5", got[0].Score)
	}
	if math.Abs(got[1].Score-4) > 1e-9 {
		t.Errorf("predicted score for Y = %f, want 4", got[1].Score)
	}
}

// A +0.8 polarity review on a rating of 4 with similarity 1.0 must scale the
// contribution by 1.8 relative to the unweighted 1.0 × 4.
func TestRerankSentimentScaling(t *testing.T) {
	const movieZ = uint(20)
	env := newTestEnv(t, config.RecommendConfig{})
	// Identical rating vectors give similarity exactly 1.
	env.addRating(t, 1, 1, 5)
	env.addRating(t, 1, 2, 3)
	env.addRating(t, 2, 1, 5)
	env.addRating(t, 2, 2, 3)
	env.addRating(t, 2, movieZ, 4)

	env.sentiment.scores["glowing review"] = 0.8
	env.addReview(t, 2, movieZ, "glowing review")

	got, err := env.svc.Rerank(context.Background(), candidateList(movieZ), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (1.0 × 4 × 1.8) / 1.0
	if math.Abs(got[0].Score-7.2) > 1e-9 {
		t.Errorf("sentiment-scaled prediction = %f, want 7.2", got[0].Score)
	}
}

func TestRerankNegativeSentimentDampens(t *testing.T) {
	const movieZ = uint(30)
	env := newTestEnv(t, config.RecommendConfig{})
	env.addRating(t, 1, 1, 4)
	env.addRating(t, 2, 1, 4)
	env.addRating(t, 2, movieZ, 5)

	env.sentiment.scores["scathing review"] = -0.6
	env.addReview(t, 2, movieZ, "scathing review")

	got, err := env.svc.Rerank(context.Background(), candidateList(movieZ), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (1.0 × 5 × 0.4) / 1.0
	if math.Abs(got[0].Score-2.0) > 1e-9 {
		t.Errorf("dampened prediction = %f, want 2.0", got[0].Score)
	}
}

func TestRerankSentimentFloorClamp(t *testing.T) {
	const movieZ = uint(40)
	env := newTestEnv(t, config.RecommendConfig{SentimentFloor: 0})
	env.addRating(t, 1, 1, 4)
	env.addRating(t, 2, 1, 4)
	env.addRating(t, 2, movieZ, 5)

	// A polarity below -1 would invert the contribution's sign without the
	// floor.
	env.sentiment.scores["beyond scathing"] = -1.5
	env.addReview(t, 2, movieZ, "beyond scathing")

	got, err := env.svc.Rerank(context.Background(), candidateList(movieZ), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Score != 0 {
		t.Errorf("clamped prediction = %f, want 0", got[0].Score)
	}
}

func TestRerankPreservesMembership(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	env.addRating(t, 1, 1, 5)
	env.addRating(t, 2, 1, 5)
	env.addRating(t, 2, 3, 2)

	candidates := candidateList(5, 3, 7)
	got, err := env.svc.Rerank(context.Background(), candidates, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(candidates) {
		t.Fatalf("rerank changed candidate count: %d -> %d", len(candidates), len(got))
	}

	seen := make(map[uint]bool)
	for _, m := range got {
		seen[m.MovieID] = true
	}
	for _, c := range candidates {
		if !seen[c.MovieID] {
			t.Errorf("candidate %d dropped by rerank", c.MovieID)
		}
	}
}

// Untouched candidates all score 0 and must keep their incoming order.
func TestRerankStableTies(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	env.addRating(t, 1, 100, 5)
	env.addRating(t, 2, 100, 5)
	env.addRating(t, 2, 8, 4)

	got, err := env.svc.Rerank(context.Background(), candidateList(5, 6, 8, 7), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{8, 5, 6, 7}) {
		t.Errorf("expected rated candidate first and stable zero-score tail, got %v", scoredIDs(got))
	}
}

func TestRatingCosine(t *testing.T) {
	tests := []struct {
		name string
		a    map[uint]int
		b    map[uint]int
		want float64
	}{
		{
			name: "identical vectors",
			a:    map[uint]int{1: 5, 2: 3},
			b:    map[uint]int{1: 5, 2: 3},
			want: 1,
		},
		{
			name: "no overlap",
			a:    map[uint]int{1: 5},
			b:    map[uint]int{2: 5},
			want: 0,
		},
		{
			name: "partial overlap ignores disjoint movies",
			a:    map[uint]int{1: 5, 2: 5},
			b:    map[uint]int{1: 5, 2: 4, 3: 5},
			want: 45 / (math.Sqrt(50) * math.Sqrt(41)),
		},
		{
			name: "empty target",
			a:    map[uint]int{},
			b:    map[uint]int{1: 4},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratingCosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ratingCosine = %f, want %f", got, tt.want)
			}
		})
	}
}
