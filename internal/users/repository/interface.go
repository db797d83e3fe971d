package repository

import "context"

// UserRepository defines the interface for user persistence operations.
// Services depend on this abstraction so tests can substitute fakes.
type UserRepository interface {
	// UpsertProfile atomically creates or refreshes the row for fid.
	UpsertProfile(ctx context.Context, fid int64, attrs ProfileAttrs) (User, error)
	// FetchOrCreateBare returns the row for fid with related collections,
	// creating a bare row when absent. Never overwrites existing attributes.
	FetchOrCreateBare(ctx context.Context, fid int64) (User, error)
}

// Ensure Repository implements UserRepository
var _ UserRepository = (*Repository)(nil)
