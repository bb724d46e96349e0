package nakama

import "avalon/internal/app"

// eventOpCode maps an app event name onto the wire op code.
func eventOpCode(event string) int64 {
	switch app.EventKind(event) {
	case app.EventRoomCreated:
		return OpRoomCreated
	case app.EventPlayerJoined:
		return OpPlayerJoined
	case app.EventPlayerLeft:
		return OpPlayerLeft
	case app.EventPlayerSat:
		return OpPlayerSat
	case app.EventPlayerStood:
		return OpPlayerStood
	case app.EventGameStarted:
		return OpGameStarted
	case app.EventRoleRevealed:
		return OpRoleRevealed
	case app.EventRoomChat:
		return OpRoomChatMsg
	case app.EventGameEnded:
		return OpGameEnded
	case app.EventNotice:
		return OpNotice
	default:
		return OpEventResult
	}
}
