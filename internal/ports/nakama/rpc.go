package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcJoinLobbyFn returns the id of the authoritative rooms match, creating
// it when none is running. Clients join the returned match and then issue
// room-scoped events over its event bus.
func RpcJoinLobbyFn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	minSize := 0
	maxSize := 0
	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, "+label.game:avalon")
	if err != nil {
		logger.Error("RpcJoinLobby [User:%s]: failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		matchID := matches[0].MatchId
		logger.Info("RpcJoinLobby [User:%s]: found rooms match %s", userID, matchID)
		return matchID, nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameAvalon, nil)
	if err != nil {
		logger.Error("RpcJoinLobby [User:%s]: failed to create rooms match: %v", userID, err)
		return "", err
	}

	logger.Info("RpcJoinLobby [User:%s]: created rooms match %s", userID, matchID)
	return matchID, nil
}
