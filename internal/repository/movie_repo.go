package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rosie/reelworthy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovieRepository handles catalog data operations.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new MovieRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MovieRepository: repository instance bound to db.
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Upsert creates or updates a movie keyed by its stable catalog identifier.
// The ETL collaborator calls this on catalog refresh.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - movie: movie record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *MovieRepository) Upsert(ctx context.Context, movie *domain.Movie) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}},
		UpdateAll: true,
	}).Create(movie).Error
}

// GetByID retrieves a movie by its catalog identifier.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: movie identifier.
// Returns:
//   - *domain.Movie: movie record if found.
//   - error: non-nil if lookup fails.
func (r *MovieRepository) GetByID(ctx context.Context, id uint) (*domain.Movie, error) {
	var movie domain.Movie
	if err := r.db.WithContext(ctx).First(&movie, "movie_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetByIDs retrieves movies by a list of identifiers. Result order is
// unspecified; callers that care about order re-sort by the input list.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: list of movie identifiers.
// Returns:
//   - []domain.Movie: matching movie records.
//   - error: non-nil if the query fails.
func (r *MovieRepository) GetByIDs(ctx context.Context, ids []uint) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return []domain.Movie{}, nil
	}
	var movies []domain.Movie
	if err := r.db.WithContext(ctx).Where("movie_id IN ?", ids).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to get movies by IDs: %w", err)
	}
	return movies, nil
}

// GetByTitle retrieves a movie whose title matches case-insensitively.
// A missing title is a soft condition, not an error: user-typed titles often
// have no catalog match.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - title: title to match, already normalized by the caller.
// Returns:
//   - *domain.Movie: movie record, or nil when no title matches.
//   - error: non-nil if the query fails.
func (r *MovieRepository) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	var movie domain.Movie
	err := r.db.WithContext(ctx).
		Where("LOWER(title) = ?", strings.ToLower(title)).
		Order("movie_id").
		First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// ListCorpus retrieves every movie's identifier and composite document in
// stable catalog order. This is the corpus the similarity index is built
// from; the ordering defines the index's tie-break.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Movie: movie_id and composite_doc for the full catalog.
//   - error: non-nil if the query fails.
func (r *MovieRepository) ListCorpus(ctx context.Context) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := r.db.WithContext(ctx).
		Select("movie_id", "composite_doc").
		Order("movie_id").
		Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to list corpus: %w", err)
	}
	return movies, nil
}

// List retrieves movies with pagination in stable catalog order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Movie: matching movie records.
//   - error: non-nil if the query fails.
func (r *MovieRepository) List(ctx context.Context, limit, offset int) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := r.db.WithContext(ctx).
		Order("movie_id").
		Limit(limit).
		Offset(offset).
		Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// Count returns the catalog size.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of movies.
//   - error: non-nil if the query fails.
func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Movie{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
