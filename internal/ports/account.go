package ports

import "context"

// AccountPort exposes the externally managed identity source.
type AccountPort interface {
	// DisplayName resolves the display name for a user id.
	DisplayName(ctx context.Context, userID string) (string, error)
}
