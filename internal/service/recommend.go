package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rosie/reelworthy/internal/config"
	"github.com/rosie/reelworthy/internal/document"
	"github.com/rosie/reelworthy/internal/domain"
	"github.com/rosie/reelworthy/internal/logger"
	"github.com/rosie/reelworthy/internal/repository"
	"github.com/rosie/reelworthy/internal/similarity"
)

// RecommendService runs the hybrid recommendation pipeline: content-based
// similarity search over composite documents, followed by collaborative
// re-ranking of the candidates when the rating signal is significant enough.
// It owns the process-wide similarity index.
type RecommendService struct {
	movieRepo  *repository.MovieRepository
	ratingRepo *repository.RatingRepository
	reviewRepo *repository.ReviewRepository
	index      *similarity.Index
	sentiment  SentimentScorer
	logger     *logger.Logger
	cfg        config.RecommendConfig

	// buildMu serializes index (re)builds so concurrent EnsureIndex calls
	// do not vectorize the catalog twice.
	buildMu sync.Mutex
}

// NewRecommendService creates a new recommendation service.
// Parameters:
//   - movieRepo: catalog repository.
//   - ratingRepo: rating repository.
//   - reviewRepo: review repository.
//   - sentiment: review sentiment scorer.
//   - log: logger instance.
//   - cfg: recommendation thresholds and limits.
// Returns:
//   - *RecommendService: initialized service with an unbuilt index.
func NewRecommendService(
	movieRepo *repository.MovieRepository,
	ratingRepo *repository.RatingRepository,
	reviewRepo *repository.ReviewRepository,
	sentiment SentimentScorer,
	log *logger.Logger,
	cfg config.RecommendConfig,
) *RecommendService {
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 10
	}
	if cfg.MaxTopN <= 0 {
		cfg.MaxTopN = 50
	}
	return &RecommendService{
		movieRepo:  movieRepo,
		ratingRepo: ratingRepo,
		reviewRepo: reviewRepo,
		index:      similarity.New(),
		sentiment:  sentiment,
		logger:     log,
		cfg:        cfg,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *RecommendService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// BuildIndex vectorizes the full catalog and swaps in a fresh similarity
// index. Called at startup and again whenever the ETL collaborator mutates
// the catalog; queries in flight keep reading the previous generation until
// the swap.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: non-nil if the corpus cannot be fetched.
func (s *RecommendService) BuildIndex(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	movies, err := s.movieRepo.ListCorpus(ctx)
	if err != nil {
		return fmt.Errorf("failed to load composite document corpus: %w", err)
	}

	corpus := make([]similarity.Document, len(movies))
	for i, m := range movies {
		corpus[i] = similarity.Document{ID: m.MovieID, Text: m.CompositeDoc}
	}
	s.index.Build(corpus)

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(corpus),
	}).Info(ctx, "Similarity index built: version=%d", s.index.Version())
	return nil
}

// EnsureIndex builds the index if it has never been built. Cheap after the
// first build.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - error: non-nil if a required build fails.
func (s *RecommendService) EnsureIndex(ctx context.Context) error {
	if s.index.Built() {
		return nil
	}
	return s.BuildIndex(ctx)
}

// FindSimilar returns the movies most similar to the named one, by cosine
// similarity of composite documents. The query movie itself is always
// excluded. An unknown title is a soft condition and yields an empty result.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - title: user-typed movie title.
//   - topN: maximum number of results; 0 uses the configured default.
// Returns:
//   - []domain.ScoredMovie: up to topN movies in descending similarity order.
//   - error: non-nil on storage failure or if the index cannot be built.
func (s *RecommendService) FindSimilar(ctx context.Context, title string, topN int) ([]domain.ScoredMovie, error) {
	topN = s.clampTopN(topN)

	cleaned := document.NormalizeTitle(title)
	if cleaned == "" {
		return []domain.ScoredMovie{}, nil
	}

	query, err := s.movieRepo.GetByTitle(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to look up title: %w", err)
	}
	if query == nil {
		s.log(ctx).Infof("No catalog match for title: query=%q", cleaned)
		return []domain.ScoredMovie{}, nil
	}

	if err := s.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	// Fetch one extra match so dropping the query movie still leaves topN.
	matches, err := s.index.Search(query.CompositeDoc, topN+1)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	ranked := make([]similarity.Match, 0, topN)
	for _, m := range matches {
		if m.ID == query.MovieID {
			continue
		}
		ranked = append(ranked, m)
		if len(ranked) == topN {
			break
		}
	}

	return s.resolveMatches(ctx, ranked)
}

// Rerank re-orders candidates for the target user using other users' rating
// similarity and sentiment-weighted reviews. It is a pure reordering: no
// candidate is added or dropped. Implemented in rerank.go.

// FinalRecommendations applies the re-ranking policy and truncates to topN.
// Re-ranking runs only when the user has enough own ratings AND the
// system-wide rating count clears the global threshold; otherwise the
// content-based order passes through unchanged.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - candidates: content-based candidates in descending similarity order.
//   - userID: target user; 0 means unauthenticated.
//   - topN: final page size; 0 uses the configured default.
// Returns:
//   - []domain.ScoredMovie: at most topN movies.
//   - error: non-nil on storage failure.
func (s *RecommendService) FinalRecommendations(ctx context.Context, candidates []domain.ScoredMovie, userID uint, topN int) ([]domain.ScoredMovie, error) {
	topN = s.clampTopN(topN)
	if len(candidates) == 0 {
		return []domain.ScoredMovie{}, nil
	}

	apply, err := s.shouldRerank(ctx, userID)
	if err != nil {
		return nil, err
	}
	if apply {
		candidates, err = s.Rerank(ctx, candidates, userID)
		if err != nil {
			return nil, err
		}
	}

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}

// Recommend runs the full pipeline for a title query: content-based
// candidate retrieval followed by the orchestrated collaborative stage.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - title: user-typed movie title.
//   - userID: target user; 0 means unauthenticated.
//   - topN: final page size; 0 uses the configured default.
// Returns:
//   - []domain.ScoredMovie: final recommendations.
//   - error: non-nil on storage failure or if the index cannot be built.
func (s *RecommendService) Recommend(ctx context.Context, title string, userID uint, topN int) ([]domain.ScoredMovie, error) {
	candidates, err := s.FindSimilar(ctx, title, topN)
	if err != nil {
		return nil, err
	}
	return s.FinalRecommendations(ctx, candidates, userID, topN)
}

// shouldRerank checks the two significance gates for collaborative
// re-ranking: per-user and system-wide minimum rating counts.
func (s *RecommendService) shouldRerank(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	own, err := s.ratingRepo.CountByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if own < s.cfg.MinUserRatings {
		logger.CtxDebug(ctx, "Skipping re-rank, user below rating threshold: user_id=%d, ratings=%d", userID, own)
		return false, nil
	}

	global, err := s.ratingRepo.CountAll(ctx)
	if err != nil {
		return false, err
	}
	if global < s.cfg.MinGlobalRatings {
		logger.CtxDebug(ctx, "Skipping re-rank, global rating count below threshold: total=%d", global)
		return false, nil
	}
	return true, nil
}

// resolveMatches loads the movie records for ranked matches, preserving
// match order and attaching similarity scores.
func (s *RecommendService) resolveMatches(ctx context.Context, matches []similarity.Match) ([]domain.ScoredMovie, error) {
	ids := make([]uint, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}

	movies, err := s.movieRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*domain.Movie, len(movies))
	for i := range movies {
		byID[movies[i].MovieID] = &movies[i]
	}

	results := make([]domain.ScoredMovie, 0, len(matches))
	for _, m := range matches {
		movie, ok := byID[m.ID]
		if !ok {
			// Index and catalog disagree; the index is stale.
			logger.CtxWarn(ctx, "Indexed movie missing from catalog: movie_id=%d", m.ID)
			continue
		}
		results = append(results, domain.ScoredMovie{Movie: *movie, Score: m.Score})
	}
	return results, nil
}

// IndexStatus reports the similarity index lifecycle state.
type IndexStatus struct {
	Built   bool   `json:"built"`
	Version uint64 `json:"version"`
	Corpus  int    `json:"corpus_size"`
}

// IndexStatusNow returns the current index lifecycle state.
// Parameters: none.
// Returns:
//   - IndexStatus: built flag, generation counter, and corpus size.
func (s *RecommendService) IndexStatusNow() IndexStatus {
	return IndexStatus{
		Built:   s.index.Built(),
		Version: s.index.Version(),
		Corpus:  s.index.Size(),
	}
}

// Stats returns catalog and index statistics.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[string]interface{}: aggregated counts and index state.
//   - error: non-nil if statistics cannot be computed.
func (s *RecommendService) Stats(ctx context.Context) (map[string]interface{}, error) {
	movieCount, err := s.movieRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	ratingCount, err := s.ratingRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	reviewCount, err := s.reviewRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total_movies":  movieCount,
		"total_ratings": ratingCount,
		"total_reviews": reviewCount,
		"index":         s.IndexStatusNow(),
	}, nil
}

// GetMovieByID retrieves a movie by its catalog identifier.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: movie identifier.
// Returns:
//   - *domain.Movie: movie record if found.
//   - error: non-nil if lookup fails.
func (s *RecommendService) GetMovieByID(ctx context.Context, id uint) (*domain.Movie, error) {
	return s.movieRepo.GetByID(ctx, id)
}

// ListMovies retrieves movies with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Movie: matching movie records.
//   - error: non-nil if retrieval fails.
func (s *RecommendService) ListMovies(ctx context.Context, limit, offset int) ([]domain.Movie, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.movieRepo.List(ctx, limit, offset)
}

// clampTopN applies the configured default and ceiling to a requested page
// size.
func (s *RecommendService) clampTopN(topN int) int {
	if topN <= 0 {
		return s.cfg.DefaultTopN
	}
	if topN > s.cfg.MaxTopN {
		return s.cfg.MaxTopN
	}
	return topN
}
