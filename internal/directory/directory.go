// Package directory is the privileged account lookup: it maps internal
// user IDs to account emails. Only the resolver service is wired with
// it; client deployments never hold the credentials it needs.
package directory

import (
	"context"
	"errors"
)

var ErrNoAccount = errors.New("directory: no account")

type Directory interface {
	// EmailByID returns the account email for userID, or ErrNoAccount.
	EmailByID(ctx context.Context, userID string) (string, error)
}
