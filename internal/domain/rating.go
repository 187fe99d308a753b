package domain

import "time"

// Rating score bounds. Scores outside this range are rejected upstream.
const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is a single user's integer score for a movie, unique per
// (user_id, movie_id) with last-write-wins semantics on update. The
// recommendation core only reads ratings; ownership stays with the user-facing
// application.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_ratings_user_movie,unique;index:idx_ratings_user" json:"user_id"`
	MovieID   uint      `gorm:"not null;index:idx_ratings_user_movie,unique;index:idx_ratings_movie" json:"movie_id"`
	Score     int       `gorm:"not null" json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Rating.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Rating) TableName() string {
	return "ratings"
}
