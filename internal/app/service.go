package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"avalon/internal/config"
	"avalon/internal/domain"
)

// ErrValidation marks an outgoing chat/event payload that failed schema
// validation; the broadcast is suppressed but the sender is not penalized.
var ErrValidation = errors.New("outgoing entry failed validation")

// Service contains the room use-cases. It mutates a resolved room and
// returns the events to relay; callers hold the room's lock. The shared
// seed source is guarded separately so games in different rooms may start
// concurrently.
type Service struct {
	mu  sync.Mutex
	rng *rand.Rand
	cfg *config.GameConfig
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. The rng seeds each game's own random source, so a seeded
// Service plays deterministic games.
func NewService(rng *rand.Rand, cfg *config.GameConfig) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg == nil {
		cfg = config.GetGameConfig()
	}
	return &Service{rng: rng, cfg: cfg}
}

// Join binds a connection to the room as participant or spectator.
func (s *Service) Join(room *domain.Room, userID, displayName string) ([]Event, error) {
	_, rejoining := room.Members[userID]
	if err := room.Join(userID, displayName); err != nil {
		return nil, err
	}
	if !rejoining {
		room.AppendLog(domain.SystemEntry(displayName + " joined the room."))
	}
	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{UserID: userID, DisplayName: displayName},
	}}, nil
}

// Leave drops the connection binding; an in-progress seat persists.
// Leaving a room with no binding left to drop is a no-op with no events.
func (s *Service) Leave(room *domain.Room, userID string) ([]Event, error) {
	if room.Phase == domain.PhaseEnded {
		return nil, domain.ErrRoomEnded
	}
	m, ok := room.Members[userID]
	if !ok {
		return nil, nil
	}
	room.Leave(userID)
	room.AppendLog(domain.SystemEntry(m.DisplayName + " left the room."))
	return []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{UserID: userID},
	}}, nil
}

// SitDown toggles the player into the seating order.
func (s *Service) SitDown(room *domain.Room, userID string) ([]Event, error) {
	changed, err := room.SitDown(userID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	room.AppendLog(domain.SystemEntry(displayName(room, userID) + " sat down."))
	return []Event{{
		Kind:    EventPlayerSat,
		Payload: SeatingPayload{UserID: userID, Seating: append([]string(nil), room.Seating...)},
	}}, nil
}

// StandUp toggles the player out of the seating order.
func (s *Service) StandUp(room *domain.Room, userID string) ([]Event, error) {
	changed, err := room.StandUp(userID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	room.AppendLog(domain.SystemEntry(displayName(room, userID) + " stood up."))
	return []Event{{
		Kind:    EventPlayerStood,
		Payload: SeatingPayload{UserID: userID, Seating: append([]string(nil), room.Seating...)},
	}}, nil
}

// StartGame assigns roles and reveals each seated player's partial view.
// The broadcast event is public; every role reveal targets one recipient.
func (s *Service) StartGame(room *domain.Room) ([]Event, error) {
	s.mu.Lock()
	gameRng := rand.New(rand.NewSource(s.rng.Int63()))
	s.mu.Unlock()

	players := len(room.Seating)
	err := room.StartGame(
		gameRng,
		s.cfg.MinPlayers,
		s.cfg.MaxPlayers,
		s.cfg.SpyCountFor(players),
		roleTags(s.cfg.ResistanceRoles),
		roleTags(s.cfg.SpyRoles),
	)
	if err != nil {
		return nil, err
	}

	room.AppendLog(domain.SystemEntry(fmt.Sprintf("The game has started with %d players.", players)))

	events := make([]Event, 0, players+1)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:       room.Phase,
			PlayerCount: players,
			SpyCount:    room.SpyCount(),
		},
	})
	for _, inst := range room.Roster {
		events = append(events, Event{
			Kind: EventRoleRevealed,
			Payload: RoleRevealedPayload{
				UserID:      inst.UserID,
				Role:        inst.Tag,
				Alliance:    inst.Alliance,
				Description: inst.Description,
				Sight:       *inst.Sight,
			},
			Recipients: []string{inst.UserID},
		})
	}
	return events, nil
}

// Chat validates and appends a player chat entry.
func (s *Service) Chat(room *domain.Room, userID, text string) ([]Event, error) {
	if room.Phase == domain.PhaseEnded {
		return nil, domain.ErrRoomEnded
	}
	if _, ok := room.Members[userID]; !ok {
		return nil, domain.ErrNotMember
	}
	entry := domain.ChatEntry{
		Text:      text,
		Username:  displayName(room, userID),
		Timestamp: time.Now(),
		Type:      domain.EntryChat,
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	room.AppendLog(entry)
	return []Event{{Kind: EventRoomChat, Payload: entry}}, nil
}

// EndGame moves the room to its terminal, read-only state. The trigger is
// external; downstream gameplay rules decide when a match is over.
func (s *Service) EndGame(room *domain.Room) ([]Event, error) {
	if room.Phase == domain.PhaseEnded {
		return nil, domain.ErrRoomEnded
	}
	room.AppendLog(domain.SystemEntry("The game has ended."))
	room.End()
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{GameID: room.ID},
	}}, nil
}

func displayName(room *domain.Room, userID string) string {
	if m, ok := room.Members[userID]; ok {
		return m.DisplayName
	}
	if inst := room.RosterFor(userID); inst != nil {
		return inst.DisplayName
	}
	return userID
}

func roleTags(names []string) []domain.RoleTag {
	tags := make([]domain.RoleTag, 0, len(names))
	for _, name := range names {
		tags = append(tags, domain.RoleTag(name))
	}
	return tags
}
