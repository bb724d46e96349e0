package domain

import (
	"errors"
	"math/rand"
	"time"
)

// Phase represents the lifecycle stage of a room.
type Phase string

const (
	// PhaseLobby is the created state, accepting seating.
	PhaseLobby Phase = "lobby"
	// PhaseSeated means at least one player has sat down; the game has not started.
	PhaseSeated Phase = "seated"
	// PhaseInProgress means roles are assigned and turns proceed.
	PhaseInProgress Phase = "in_progress"
	// PhaseEnded is terminal; the room is read-only.
	PhaseEnded Phase = "ended"
)

var (
	// ErrRoomEnded rejects mutating events on a terminal room.
	ErrRoomEnded = errors.New("room has ended")
	// ErrNotSeatable rejects seating changes outside the lobby/seated phases.
	ErrNotSeatable = errors.New("seating can only change before the game starts")
	// ErrNotSeated rejects start_game outside the seated phase.
	ErrNotSeated = errors.New("game can only start once players are seated")
	// ErrSeatCount rejects start_game with a seat count outside the configured bounds.
	ErrSeatCount = errors.New("seated player count outside configured bounds")
	// ErrNotMember rejects room-scoped actions from users who never joined.
	ErrNotMember = errors.New("user has not joined this room")
)

// Member is a live connection binding to the room, participant or spectator.
type Member struct {
	UserID      string
	DisplayName string
	JoinedAt    time.Time
}

// Room is a single match instance: phase, seating, secret roster, and an
// append-only chat/event log. Rooms are not safe for concurrent use; the
// owning layer serializes access per room.
type Room struct {
	ID      int
	Phase   Phase
	Seating []string // user ids in sit-down order
	Members map[string]*Member
	Roster  []*RoleInstance // seat order; populated at game start
	Log     []ChatEntry
	Anon    *Anonymizer // lazily initialized at the first visibility pass
	Ledger  *Ledger
}

// NewRoom creates a room in the lobby phase.
func NewRoom(id int) *Room {
	return &Room{
		ID:      id,
		Phase:   PhaseLobby,
		Members: make(map[string]*Member),
		Ledger:  NewLedger(),
	}
}

// Join binds a connection to the room. Permitted in any non-ended phase;
// rejoining is a no-op that refreshes the binding.
func (r *Room) Join(userID, displayName string) error {
	if r.Phase == PhaseEnded {
		return ErrRoomEnded
	}
	if m, ok := r.Members[userID]; ok {
		m.DisplayName = displayName
		return nil
	}
	r.Members[userID] = &Member{
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    time.Now(),
	}
	return nil
}

// Leave drops the connection binding. Before the game starts the seat is
// freed as well; while in progress the seat and role assignment persist
// for game-logic purposes.
func (r *Room) Leave(userID string) {
	delete(r.Members, userID)
	if r.Phase == PhaseLobby || r.Phase == PhaseSeated {
		r.removeSeat(userID)
	}
}

// SitDown adds the player to the seating order. Valid only before the game
// starts; elsewhere it reports ErrNotSeatable without mutating state.
// Sitting twice is a no-op. Returns whether seating changed.
func (r *Room) SitDown(userID string) (bool, error) {
	if r.Phase != PhaseLobby && r.Phase != PhaseSeated {
		return false, ErrNotSeatable
	}
	if _, ok := r.Members[userID]; !ok {
		return false, ErrNotMember
	}
	for _, seated := range r.Seating {
		if seated == userID {
			return false, nil
		}
	}
	r.Seating = append(r.Seating, userID)
	r.Phase = PhaseSeated
	return true, nil
}

// StandUp removes the player from the seating order. Standing while not
// seated is a no-op. Returns whether seating changed.
func (r *Room) StandUp(userID string) (bool, error) {
	if r.Phase != PhaseLobby && r.Phase != PhaseSeated {
		return false, ErrNotSeatable
	}
	return r.removeSeat(userID), nil
}

func (r *Room) removeSeat(userID string) bool {
	for i, seated := range r.Seating {
		if seated != userID {
			continue
		}
		r.Seating = append(r.Seating[:i], r.Seating[i+1:]...)
		if len(r.Seating) == 0 && r.Phase == PhaseSeated {
			r.Phase = PhaseLobby
		}
		return true
	}
	return false
}

// StartGame assigns roles to the seated players and runs the first
// visibility pass. Valid only from the seated phase with the seat count
// inside [minPlayers, maxPlayers]. The rng drives both role shuffling and
// handle assignment, so a fixed seed gives a deterministic game.
func (r *Room) StartGame(rng *rand.Rand, minPlayers, maxPlayers, spyCount int, resRoles, spyRoles []RoleTag) error {
	if r.Phase == PhaseEnded {
		return ErrRoomEnded
	}
	if r.Phase != PhaseSeated {
		return ErrNotSeated
	}
	players := len(r.Seating)
	if players < minPlayers || players > maxPlayers || spyCount <= 0 || spyCount >= players {
		return ErrSeatCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pool := buildRolePool(players, spyCount, resRoles, spyRoles)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	roster := make([]*RoleInstance, 0, players)
	for seat, userID := range r.Seating {
		displayName := userID
		if m, ok := r.Members[userID]; ok {
			displayName = m.DisplayName
		}
		inst, err := NewRoleInstance(pool[seat], userID, displayName, seat)
		if err != nil {
			return err
		}
		roster = append(roster, inst)
	}

	anon := NewAnonymizer(rng)
	for _, inst := range roster {
		sight, err := ComputeSight(roster, inst, anon)
		if err != nil {
			return err
		}
		inst.Sight = &sight
	}
	anon.Freeze()

	r.Roster = roster
	r.Anon = anon
	r.Ledger = NewLedger()
	r.Phase = PhaseInProgress
	return nil
}

// buildRolePool lays out the role tags for a table of the given size:
// spyCount tags drawn from spyRoles, the rest from resRoles, padded with
// the plain roles. A mutual-recognition pair left with only one member
// after the cut is replaced by a plain role.
func buildRolePool(players, spyCount int, resRoles, spyRoles []RoleTag) []RoleTag {
	resCount := players - spyCount

	res := append([]RoleTag(nil), resRoles...)
	if len(res) > resCount {
		res = res[:resCount]
	}
	res = completePairs(res)
	for len(res) < resCount {
		res = append(res, RoleResistance)
	}

	spies := append([]RoleTag(nil), spyRoles...)
	if len(spies) > spyCount {
		spies = spies[:spyCount]
	}
	for len(spies) < spyCount {
		spies = append(spies, RoleSpy)
	}

	return append(res, spies...)
}

func completePairs(tags []RoleTag) []RoleTag {
	count := map[RoleTag]int{}
	for _, tag := range tags {
		count[tag]++
	}
	if count[RoleTristan] != count[RoleIsolde] {
		for i, tag := range tags {
			if tag == RoleTristan || tag == RoleIsolde {
				tags[i] = RoleResistance
			}
		}
	}
	return tags
}

// End moves the room to its terminal phase. Further mutating events are
// rejected; the chat log remains queryable.
func (r *Room) End() {
	r.Phase = PhaseEnded
}

// AppendLog appends to the room's chat/event log. Ended rooms are
// read-only, so the append is dropped and reported.
func (r *Room) AppendLog(entry ChatEntry) bool {
	if r.Phase == PhaseEnded {
		return false
	}
	r.Log = append(r.Log, entry)
	return true
}

// ChatLog returns a copy of the ordered chat/event log.
func (r *Room) ChatLog() []ChatEntry {
	return append([]ChatEntry(nil), r.Log...)
}

// RosterFor returns the player's role instance, or nil before the game
// starts or for spectators.
func (r *Room) RosterFor(userID string) *RoleInstance {
	for _, inst := range r.Roster {
		if inst.UserID == userID {
			return inst
		}
	}
	return nil
}

// SpyCount reports how many roster entries are spy-aligned.
func (r *Room) SpyCount() int {
	count := 0
	for _, inst := range r.Roster {
		if inst.Alliance == AllianceSpy {
			count++
		}
	}
	return count
}
