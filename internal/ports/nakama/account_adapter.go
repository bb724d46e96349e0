package nakama

import (
	"context"
	"fmt"

	"avalon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// DisplayName resolves the account's display name, falling back to the
// username when none is set.
func (a *NakamaAccountAdapter) DisplayName(ctx context.Context, userID string) (string, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetch account %s: %w", userID, err)
	}
	if name := account.User.GetDisplayName(); name != "" {
		return name, nil
	}
	return account.User.GetUsername(), nil
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
