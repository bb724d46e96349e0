package nakama

const (
	// RpcJoinLobby is the Nakama RPC id clients call to find or create the
	// authoritative rooms match.
	RpcJoinLobby = "join_lobby"

	// MatchNameAvalon is the authoritative match handler name registered
	// with Nakama. One match hosts the whole room service.
	MatchNameAvalon = "avalon_rooms"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpCreateRoom int64 = 1
	OpJoinRoom   int64 = 2
	OpLeaveRoom  int64 = 3
	OpSitDown    int64 = 4
	OpStandUp    int64 = 5
	OpStartGame  int64 = 6
	OpRoomChat   int64 = 7

	// Server -> Client events
	OpRoomCreated  int64 = 101
	OpPlayerJoined int64 = 102
	OpPlayerLeft   int64 = 103
	OpPlayerSat    int64 = 104
	OpPlayerStood  int64 = 105
	OpGameStarted  int64 = 106
	OpRoleRevealed int64 = 107 // send privately
	OpRoomChatMsg  int64 = 108
	OpGameEnded    int64 = 109
	OpNotice       int64 = 110 // send privately
	OpEventResult  int64 = 111 // send privately
)
