package repository

import (
	"context"

	"github.com/rosie/reelworthy/internal/domain"
	"gorm.io/gorm"
)

// ReviewRepository handles review data operations. The recommendation core
// reads review bodies as opaque sentiment input; review ownership stays with
// the user-facing application.
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ReviewRepository: repository instance bound to db.
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - review: review record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ListForMoviesByUsers retrieves all reviews of the given movies written by
// the given users, newest first. The collaborative stage picks the most
// recent review per (user, movie) pair from this batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - movieIDs: candidate movie identifiers.
//   - userIDs: contributing user identifiers.
// Returns:
//   - []domain.Review: matching reviews ordered by created_at descending.
//   - error: non-nil if the query fails.
func (r *ReviewRepository) ListForMoviesByUsers(ctx context.Context, movieIDs, userIDs []uint) ([]domain.Review, error) {
	if len(movieIDs) == 0 || len(userIDs) == 0 {
		return []domain.Review{}, nil
	}
	var reviews []domain.Review
	if err := r.db.WithContext(ctx).
		Where("movie_id IN ? AND user_id IN ?", movieIDs, userIDs).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// CountAll counts reviews system-wide, exposed through the stats endpoint.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: total number of reviews.
//   - error: non-nil if the query fails.
func (r *ReviewRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Review{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
