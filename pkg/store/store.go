// Package store keeps a history of comparisons.
//
// Every comparison the CLI or server runs with recording enabled becomes a
// [Record]. The history answers "when did this fixture start drifting" and
// backs the review UI.
//
// Backends: [SQLiteStore] for a local file, [MongoStore] for a shared
// database and [NullStore] when history is disabled.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one stored comparison.
type Record struct {
	ID           string    `json:"id" bson:"_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	ExpectedPath string    `json:"expected_path" bson:"expected_path"`
	ActualPath   string    `json:"actual_path,omitempty" bson:"actual_path,omitempty"`
	Outcome      string    `json:"outcome" bson:"outcome"`
	Distance     float64   `json:"distance" bson:"distance"`
	MaxDistance  float64   `json:"max_distance" bson:"max_distance"`
	SampleSize   int       `json:"sample_size" bson:"sample_size"`
	GridSize     int       `json:"grid_size" bson:"grid_size"`
}

// ListOptions filters [Store.List].
type ListOptions struct {
	// ExpectedPath restricts results to one expected file when set.
	ExpectedPath string
	// Limit caps the number of records. Zero selects DefaultListLimit.
	Limit int
}

// DefaultListLimit is the page size used when ListOptions.Limit is zero.
const DefaultListLimit = 50

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}

// Store persists comparison records.
type Store interface {
	// Save assigns ID and CreatedAt when empty and stores rec.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with id, or an error with code NOT_FOUND.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records newest first.
	List(ctx context.Context, opts ListOptions) ([]Record, error)

	// Close releases backend resources.
	Close() error
}

// prepare fills generated fields before a record is written.
func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}
