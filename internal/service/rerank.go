package service

import (
	"context"
	"math"
	"sort"

	"github.com/rosie/reelworthy/internal/domain"
	"github.com/rosie/reelworthy/internal/logger"
)

// reviewKey identifies one (user, movie) review slot.
type reviewKey struct {
	userID  uint
	movieID uint
}

// Rerank re-scores candidates for the target user using other users' rating
// similarity and sentiment-weighted reviews, then re-sorts by descending
// predicted score. It is a pure reordering: membership never changes, and
// ties keep the incoming (content-based) order.
//
// Degenerate inputs short-circuit to identity: an unauthenticated user
// (userID 0), an authenticated user with no ratings, or a candidate set
// nobody else has rated.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - candidates: content-based candidates in descending similarity order.
//   - userID: target user; 0 means unauthenticated.
// Returns:
//   - []domain.ScoredMovie: same movies, collaborative order.
//   - error: non-nil on storage failure.
func (s *RecommendService) Rerank(ctx context.Context, candidates []domain.ScoredMovie, userID uint) ([]domain.ScoredMovie, error) {
	if userID == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	ownRatings, err := s.ratingRepo.MapByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ownRatings) == 0 {
		// No rating vector to align against; re-ranking is undefined.
		return candidates, nil
	}

	candidateIDs := make([]uint, len(candidates))
	for i, c := range candidates {
		candidateIDs[i] = c.MovieID
	}

	contributions, err := s.ratingRepo.ListByMoviesExcludingUser(ctx, candidateIDs, userID)
	if err != nil {
		return nil, err
	}
	if len(contributions) == 0 {
		return candidates, nil
	}

	// Full rating history of every contributing user, for vector alignment.
	contributorIDs := make([]uint, 0, len(contributions))
	seen := make(map[uint]bool, len(contributions))
	for _, r := range contributions {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			contributorIDs = append(contributorIDs, r.UserID)
		}
	}
	histories, err := s.ratingRepo.ListByUsers(ctx, contributorIDs)
	if err != nil {
		return nil, err
	}
	historyByUser := make(map[uint]map[uint]int, len(contributorIDs))
	for _, r := range histories {
		m, ok := historyByUser[r.UserID]
		if !ok {
			m = make(map[uint]int)
			historyByUser[r.UserID] = m
		}
		m[r.MovieID] = r.Score
	}

	similarities := make(map[uint]float64, len(contributorIDs))
	for _, id := range contributorIDs {
		similarities[id] = ratingCosine(ownRatings, historyByUser[id])
	}

	// Most recent review per (contributor, candidate); repository returns
	// newest first, so the first occurrence wins.
	reviews, err := s.reviewRepo.ListForMoviesByUsers(ctx, candidateIDs, contributorIDs)
	if err != nil {
		return nil, err
	}
	reviewBodies := make(map[reviewKey]string, len(reviews))
	for _, rv := range reviews {
		key := reviewKey{userID: rv.UserID, movieID: rv.MovieID}
		if _, ok := reviewBodies[key]; !ok {
			reviewBodies[key] = rv.Body
		}
	}

	contribByMovie := make(map[uint][]domain.Rating, len(candidateIDs))
	for _, r := range contributions {
		contribByMovie[r.MovieID] = append(contribByMovie[r.MovieID], r)
	}

	reranked := make([]domain.ScoredMovie, len(candidates))
	copy(reranked, candidates)
	for i := range reranked {
		reranked[i].Score = s.predictScore(reranked[i].MovieID, contribByMovie, similarities, reviewBodies)
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	logger.CtxDebug(ctx, "Re-ranked candidates: user_id=%d, candidates=%d, contributors=%d",
		userID, len(candidates), len(contributorIDs))
	return reranked, nil
}

// predictScore computes the similarity-weighted average rating for one
// candidate. A contributor's rating is scaled by the sentiment multiplier of
// their review when one exists. Zero similarity mass yields 0.
func (s *RecommendService) predictScore(
	movieID uint,
	contribByMovie map[uint][]domain.Rating,
	similarities map[uint]float64,
	reviewBodies map[reviewKey]string,
) float64 {
	var weightedSum, similaritySum float64
	for _, r := range contribByMovie[movieID] {
		sim := similarities[r.UserID]
		if sim <= 0 {
			continue
		}

		multiplier := 1.0
		if body, ok := reviewBodies[reviewKey{userID: r.UserID, movieID: movieID}]; ok {
			multiplier = sentimentMultiplier(s.sentiment.Polarity(body), s.cfg.SentimentFloor)
		}

		weightedSum += sim * float64(r.Score) * multiplier
		similaritySum += sim
	}

	if similaritySum == 0 {
		return 0
	}
	return weightedSum / similaritySum
}

// ratingCosine computes cosine similarity between two users' rating vectors
// over the intersection of movies both have rated, aligned by movie
// identifier. No overlap means similarity 0.
func ratingCosine(a, b map[uint]int) float64 {
	var dot, normA, normB float64
	for movieID, scoreA := range a {
		scoreB, ok := b[movieID]
		if !ok {
			continue
		}
		fa, fb := float64(scoreA), float64(scoreB)
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
