package profile

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is the distinguishable "no matching row" condition.
// Store implementations must return it for a missing profile and
// nothing else; the session manager's retry policy keys on it.
var ErrNotFound = errors.New("profile: not found")

// Store defines the data-access contract for profile rows.
type Store interface {
	// GetByID returns the single profile owned by userID, or
	// ErrNotFound.
	GetByID(ctx context.Context, userID string) (*Profile, error)

	// GetByUsername returns the single profile with the given unique
	// username, or ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*Profile, error)

	// Upsert inserts or partially updates the profile row for userID.
	// Nil patch fields never clobber existing columns.
	Upsert(ctx context.Context, userID string, p Patch, updatedAt time.Time) error
}
