package app

import "avalon/internal/domain"

// EventKind identifies emitted room events for transport dispatch.
type EventKind string

const (
	EventRoomCreated  EventKind = "room_created"
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventPlayerSat    EventKind = "player_sat"
	EventPlayerStood  EventKind = "player_stood"
	EventGameStarted  EventKind = "game_started"
	EventRoleRevealed EventKind = "role_revealed" // sent privately
	EventRoomChat     EventKind = "room_chat"
	EventGameEnded    EventKind = "game_ended"
	EventNotice       EventKind = "notice" // sent privately
)

// Event is a room event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast to the room
}

type RoomCreatedPayload struct {
	GameID int `json:"game_id"`
}

type PlayerJoinedPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type SeatingPayload struct {
	UserID  string   `json:"user_id"`
	Seating []string `json:"seating"`
}

type GameStartedPayload struct {
	Phase       domain.Phase `json:"phase"`
	PlayerCount int          `json:"player_count"`
	SpyCount    int          `json:"spy_count"`
}

// RoleRevealedPayload carries a player's secret assignment and cached
// partial view. It must only ever be sent to that player.
type RoleRevealedPayload struct {
	UserID      string          `json:"user_id"`
	Role        domain.RoleTag  `json:"role"`
	Alliance    domain.Alliance `json:"alliance"`
	Description string          `json:"description"`
	Sight       domain.Sight    `json:"sight"`
}

type NoticePayload struct {
	Text string `json:"text"`
}

type GameEndedPayload struct {
	GameID int `json:"game_id"`
}
