package domain

import "time"

// Review is a free-text review of a movie by a user. Multiple reviews per
// (user, movie) may exist; the most recent one governs sentiment weighting.
// The core treats the body as opaque input to the sentiment scorer.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_reviews_user_movie" json:"user_id"`
	MovieID   uint      `gorm:"not null;index:idx_reviews_user_movie;index:idx_reviews_movie" json:"movie_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Review.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Review) TableName() string {
	return "reviews"
}
