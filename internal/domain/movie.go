package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Movie represents a catalog entry. The stable MovieID comes from the upstream
// catalog dataset and never changes. CompositeDoc is derived from title, cast,
// characters, and crew; the ETL collaborator regenerates it whenever any of
// those source fields change, and the recommendation core treats it as
// read-only input.
type Movie struct {
	MovieID      uint        `gorm:"primaryKey" json:"movie_id"`
	Title        string      `gorm:"type:text;not null;index:idx_movies_title" json:"title"`
	CompositeDoc string      `gorm:"column:composite_doc;type:text;not null" json:"-"`
	Genres       StringArray `gorm:"type:text" json:"genres"`
	ReleaseDate  *time.Time  `json:"release_date,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Movie.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Movie) TableName() string {
	return "movies"
}

// ScoredMovie is a movie paired with a relevance score. Content search fills
// Score with raw cosine similarity; re-ranking fills it with the predicted
// collaborative score.
type ScoredMovie struct {
	Movie
	Score float64 `json:"score"`
}
