package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and the rooms match handler for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcJoinLobby, RpcJoinLobbyFn); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameAvalon, NewMatch); err != nil {
		return err
	}

	logger.Info("Avalon Go module loaded.")
	return nil
}
