package repository

import (
	"context"

	"github.com/rosie/reelworthy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository handles rating data operations.
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new RatingRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RatingRepository: repository instance bound to db.
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert creates or updates a rating keyed by (user_id, movie_id).
// Last write wins: an existing score is overwritten.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rating: rating record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
}

// MapByUser retrieves a user's ratings as a movie -> score map.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: target user identifier.
// Returns:
//   - map[uint]int: the user's rating vector keyed by movie identifier.
//   - error: non-nil if the query fails.
func (r *RatingRepository) MapByUser(ctx context.Context, userID uint) (map[uint]int, error) {
	var ratings []domain.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	m := make(map[uint]int, len(ratings))
	for _, rt := range ratings {
		m[rt.MovieID] = rt.Score
	}
	return m, nil
}

// ListByMoviesExcludingUser retrieves every rating of the given movies left
// by users other than the target user. These are the contributing ratings of
// the collaborative stage.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - movieIDs: candidate movie identifiers.
//   - excludeUserID: target user to exclude.
// Returns:
//   - []domain.Rating: matching ratings.
//   - error: non-nil if the query fails.
func (r *RatingRepository) ListByMoviesExcludingUser(ctx context.Context, movieIDs []uint, excludeUserID uint) ([]domain.Rating, error) {
	if len(movieIDs) == 0 {
		return []domain.Rating{}, nil
	}
	var ratings []domain.Rating
	if err := r.db.WithContext(ctx).
		Where("movie_id IN ? AND user_id <> ?", movieIDs, excludeUserID).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListByUsers retrieves the full rating history of the given users, used to
// align their rating vectors against the target user's.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userIDs: contributing user identifiers.
// Returns:
//   - []domain.Rating: matching ratings.
//   - error: non-nil if the query fails.
func (r *RatingRepository) ListByUsers(ctx context.Context, userIDs []uint) ([]domain.Rating, error) {
	if len(userIDs) == 0 {
		return []domain.Rating{}, nil
	}
	var ratings []domain.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// CountByUser counts the target user's own ratings.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: target user identifier.
// Returns:
//   - int64: number of ratings by the user.
//   - error: non-nil if the query fails.
func (r *RatingRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAll counts ratings system-wide, the global significance gate of the
// orchestrator.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: total number of ratings.
//   - error: non-nil if the query fails.
func (r *RatingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Rating{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
