package app

import (
	"strconv"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	// SentinelGameID marks the absence of a resolvable room.
	SentinelGameID = -1
	// SentinelRoomKey is the room key paired with SentinelGameID.
	SentinelRoomKey = "-1"

	gameRoomPrefix = "game:"
)

// RoomRef points at a resolved room.
type RoomRef struct {
	RoomKey string
	GameID  int
}

func sentinelRef() RoomRef {
	return RoomRef{RoomKey: SentinelRoomKey, GameID: SentinelGameID}
}

// GameRoomKey formats the membership key for a game id.
func GameRoomKey(gameID int) string {
	return gameRoomPrefix + strconv.Itoa(gameID)
}

// ParseGameRoomKey extracts the numeric game id from a membership key.
func ParseGameRoomKey(key string) (int, bool) {
	if !strings.HasPrefix(key, gameRoomPrefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(key, gameRoomPrefix))
	if err != nil {
		return 0, false
	}
	return id, true
}

// session is one connection's bookkeeping: its game-room memberships and
// the last room it visited. Each session is its own unit of mutual
// exclusion; no cross-session locking is needed.
type session struct {
	mu       sync.Mutex
	groups   map[string]struct{}
	lastGame int
}

// Registry maps each live connection to at most one active game room and
// remembers the last room visited for reconnection. Membership is tracked
// with the registry's own counts rather than by scanning transport state.
type Registry struct {
	logger runtime.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger runtime.Logger) *Registry {
	return &Registry{
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

func (r *Registry) get(userID string) *session {
	r.mu.RLock()
	s := r.sessions[userID]
	r.mu.RUnlock()
	return s
}

func (r *Registry) ensure(userID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = &session{groups: make(map[string]struct{}), lastGame: SentinelGameID}
		r.sessions[userID] = s
	}
	return s
}

// ResolveActiveRoom determines which game room a connection's events
// target. Zero memberships fall back to the remembered last room; more
// than one is an inconsistent state that fails safe to the sentinel
// rather than guessing.
func (r *Registry) ResolveActiveRoom(userID string) RoomRef {
	s := r.get(userID)
	if s == nil {
		r.logger.Warn("session %s has no registry entry", userID)
		return sentinelRef()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch len(s.groups) {
	case 0:
		if s.lastGame != SentinelGameID {
			return RoomRef{RoomKey: GameRoomKey(s.lastGame), GameID: s.lastGame}
		}
		r.logger.Warn("session %s is not in a single joined game", userID)
		return sentinelRef()
	case 1:
		for key := range s.groups {
			gameID, ok := ParseGameRoomKey(key)
			if !ok {
				r.logger.Warn("session %s holds malformed room key %q", userID, key)
				return sentinelRef()
			}
			return RoomRef{RoomKey: key, GameID: gameID}
		}
		return sentinelRef()
	default:
		r.logger.Warn("session %s holds %d game-room memberships", userID, len(s.groups))
		return sentinelRef()
	}
}

// Join records a game-room membership and overwrites the remembered last
// room. Joining a room already joined is a no-op.
func (r *Registry) Join(userID string, gameID int) {
	s := r.ensure(userID)
	s.mu.Lock()
	s.groups[GameRoomKey(gameID)] = struct{}{}
	s.lastGame = gameID
	s.mu.Unlock()
}

// Leave removes a game-room membership. Leaving a room not joined is a
// no-op.
func (r *Registry) Leave(userID string, gameID int) {
	s := r.get(userID)
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.groups, GameRoomKey(gameID))
	s.mu.Unlock()
}

// Drop destroys a connection's bookkeeping on disconnect.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
}

// Memberships returns the connection's current game-room keys.
func (r *Registry) Memberships(userID string) []string {
	s := r.get(userID)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.groups))
	for key := range s.groups {
		keys = append(keys, key)
	}
	return keys
}
