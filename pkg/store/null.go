package store

import (
	"context"

	"github.com/matzehuels/simcheck/pkg/errors"
)

// NullStore discards records.
type NullStore struct{}

// NewNullStore returns a [NullStore].
func NewNullStore() Store { return NullStore{} }

// Save fills generated fields and discards the record.
func (NullStore) Save(ctx context.Context, rec *Record) error {
	prepare(rec)
	return nil
}

// Get always reports NOT_FOUND.
func (NullStore) Get(ctx context.Context, id string) (*Record, error) {
	return nil, errors.New(errors.ErrCodeNotFound, "record %s not found (history disabled)", id)
}

// List returns no records.
func (NullStore) List(ctx context.Context, opts ListOptions) ([]Record, error) { return nil, nil }

// Close does nothing.
func (NullStore) Close() error { return nil }
