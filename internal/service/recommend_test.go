package service

import (
	"context"
	"testing"

	"github.com/rosie/reelworthy/internal/config"
)

// seedCatalog loads the shared-cast scenario: Alpha and Beta share cast
// member Ann, Gamma shares nothing.
func seedCatalog(t *testing.T, env *testEnv) {
	env.addMovie(t, 1, "Alpha", "alpha ann reeves bob moss neo trinity")
	env.addMovie(t, 2, "Beta", "beta ann reeves cid lake morpheus smith")
	env.addMovie(t, 3, "Gamma", "gamma dora hill evan stone marty doc")
}

func TestFindSimilarUnknownTitle(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)

	got, err := env.svc.FindSimilar(context.Background(), "No Such Movie", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown title should yield empty result, got %d movies", len(got))
	}
}

func TestFindSimilarExcludesSelf(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)

	got, err := env.svc.FindSimilar(context.Background(), "Alpha", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range got {
		if m.MovieID == 1 {
			t.Errorf("query movie must not appear in its own results")
		}
	}
}

func TestFindSimilarSharedCastRanksHigher(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)

	got, err := env.svc.FindSimilar(context.Background(), "Alpha", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].MovieID != 2 {
		t.Errorf("expected Beta (shared cast) first, got movie %d", got[0].MovieID)
	}
	if got[1].MovieID != 3 {
		t.Errorf("expected Gamma last, got movie %d", got[1].MovieID)
	}
	if !(got[0].Score > got[1].Score) {
		t.Errorf("shared cast should score higher: %f vs %f", got[0].Score, got[1].Score)
	}
}

func TestFindSimilarCaseInsensitiveAndCleaned(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)

	got, err := env.svc.FindSimilar(context.Background(), "  ALPHA! ", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("cleaned uppercase title should still match the catalog")
	}
}

func TestFindSimilarShortCatalog(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)

	// Catalog has 3 movies; excluding the query leaves at most 2.
	got, err := env.svc.FindSimilar(context.Background(), "Alpha", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > 2 {
		t.Errorf("expected at most catalog_size-1 results, got %d", len(got))
	}
}

func TestFindSimilarDeterministicAcrossRebuilds(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)
	ctx := context.Background()

	first, err := env.svc.FindSimilar(ctx, "Alpha", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.svc.BuildIndex(ctx); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	second, err := env.svc.FindSimilar(ctx, "Alpha", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sameIDs(scoredIDs(first), scoredIDs(second)) {
		t.Errorf("results changed across identical rebuilds: %v vs %v", scoredIDs(first), scoredIDs(second))
	}
	for i := range first {
		if first[i].Score != second[i].Score {
			t.Errorf("score at rank %d changed across rebuilds: %f vs %f", i, first[i].Score, second[i].Score)
		}
	}
}

func TestBuildIndexPicksUpCatalogChanges(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)
	ctx := context.Background()

	if err := env.svc.BuildIndex(ctx); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// A new movie sharing Alpha's whole cast is invisible until rebuild.
	env.addMovie(t, 4, "Delta", "delta ann reeves bob moss neo trinity")

	got, err := env.svc.FindSimilar(ctx, "Alpha", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > 0 && got[0].MovieID == 4 {
		t.Fatal("new movie should not be visible before rebuild")
	}

	if err := env.svc.BuildIndex(ctx); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	got, err = env.svc.FindSimilar(ctx, "Alpha", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 || got[0].MovieID != 4 {
		t.Errorf("expected the new near-duplicate first after rebuild, got %v", scoredIDs(got))
	}
}

func TestFinalRecommendationsTruncation(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})

	candidates := candidateList(1, 2, 3, 4, 5)
	got, err := env.svc.FinalRecommendations(context.Background(), candidates, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 results after truncation, got %d", len(got))
	}
	if !sameIDs(scoredIDs(got), []uint{1, 2, 3}) {
		t.Errorf("truncation must preserve order, got %v", scoredIDs(got))
	}
}

func TestFinalRecommendationsEmptyInput(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})

	got, err := env.svc.FinalRecommendations(context.Background(), nil, 7, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty candidates must yield empty result, got %d", len(got))
	}
}

// A user clearing the per-user threshold but not the global one must get the
// content-based order unchanged.
func TestFinalRecommendationsBelowGlobalThreshold(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{
		MinUserRatings:   5,
		MinGlobalRatings: 1000,
	})
	for movieID := uint(100); movieID < 106; movieID++ {
		env.addRating(t, 1, movieID, 4)
	}
	// A contributor that would reorder the candidates if re-ranking ran.
	env.addRating(t, 2, 100, 4)
	env.addRating(t, 2, 9, 5)

	got, err := env.svc.FinalRecommendations(context.Background(), candidateList(8, 9), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{8, 9}) {
		t.Errorf("below-global-threshold order must pass through unchanged, got %v", scoredIDs(got))
	}
}

func TestFinalRecommendationsBelowUserThreshold(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{
		MinUserRatings:   5,
		MinGlobalRatings: 1,
	})
	env.addRating(t, 1, 100, 4)
	env.addRating(t, 2, 100, 4)
	env.addRating(t, 2, 9, 5)

	got, err := env.svc.FinalRecommendations(context.Background(), candidateList(8, 9), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{8, 9}) {
		t.Errorf("below-user-threshold order must pass through unchanged, got %v", scoredIDs(got))
	}
}

func TestFinalRecommendationsRerankApplies(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{
		MinUserRatings:   2,
		MinGlobalRatings: 3,
	})
	env.addRating(t, 1, 100, 5)
	env.addRating(t, 1, 101, 5)
	env.addRating(t, 2, 100, 5)
	env.addRating(t, 2, 101, 5)
	env.addRating(t, 2, 9, 5)

	got, err := env.svc.FinalRecommendations(context.Background(), candidateList(8, 9), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameIDs(scoredIDs(got), []uint{9, 8}) {
		t.Errorf("qualifying user should get re-ranked order [9 8], got %v", scoredIDs(got))
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{
		MinUserRatings:   1,
		MinGlobalRatings: 1,
	})
	seedCatalog(t, env)
	// Contributor strongly prefers Gamma.
	env.addRating(t, 1, 1, 5)
	env.addRating(t, 2, 1, 5)
	env.addRating(t, 2, 3, 5)
	env.addRating(t, 2, 2, 1)

	got, err := env.svc.Recommend(context.Background(), "Alpha", 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(got))
	}
	// Collaborative signal flips the content-based [Beta Gamma] order.
	if !sameIDs(scoredIDs(got), []uint{3, 2}) {
		t.Errorf("expected collaborative order [3 2], got %v", scoredIDs(got))
	}
}

func TestStatsReportsIndexState(t *testing.T) {
	env := newTestEnv(t, config.RecommendConfig{})
	seedCatalog(t, env)
	ctx := context.Background()

	stats, err := env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, ok := stats["index"].(IndexStatus)
	if !ok {
		t.Fatalf("missing index status in stats: %v", stats)
	}
	if status.Built {
		t.Error("index should be unbuilt before first use")
	}

	if err := env.svc.BuildIndex(ctx); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	stats, err = env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status = stats["index"].(IndexStatus)
	if !status.Built || status.Corpus != 3 || status.Version != 1 {
		t.Errorf("unexpected index status after build: %+v", status)
	}

	if stats["total_movies"].(int64) != 3 {
		t.Errorf("expected 3 movies in stats, got %v", stats["total_movies"])
	}
}
