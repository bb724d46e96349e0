package app

import (
	"errors"
	"strings"

	"avalon/internal/domain"
	"avalon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// User-facing results for room-scoped events.
const (
	ResultOK        = "OK"
	ResultNotFound  = "Game not found!"
	ResultNotInRoom = "You are not in a room!"
)

// commandMarker prefixes chat text that is routed to command handling
// instead of being broadcast.
const commandMarker = "/"

// Session identifies a live connection as supplied by the transport.
type Session struct {
	UserID      string
	DisplayName string
}

// Dispatcher is the single entry point translating inbound room-scoped
// events into state machine calls. It resolves the acting connection's
// room via the registry, forwards the event into the room under its lock,
// and relays the resulting events through the broadcast port.
type Dispatcher struct {
	logger   runtime.Logger
	registry *Registry
	rooms    *Rooms
	svc      *Service
	out      ports.Broadcaster
	commands ports.CommandRunner
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(logger runtime.Logger, registry *Registry, rooms *Rooms, svc *Service, out ports.Broadcaster, commands ports.CommandRunner) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		registry: registry,
		rooms:    rooms,
		svc:      svc,
		out:      out,
		commands: commands,
	}
}

// Registry exposes the session registry for transport bookkeeping.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// CreateRoom creates a new room and joins the creator to it.
func (d *Dispatcher) CreateRoom(sess Session) (int, error) {
	room := d.rooms.Create()
	gameID := room.ID
	d.logger.Info("user %s created room %d", sess.UserID, gameID)

	result := d.JoinRoom(sess, gameID)
	if result != ResultOK {
		return SentinelGameID, errors.New(result)
	}
	d.out.EmitToOne(sess.UserID, string(EventRoomCreated), RoomCreatedPayload{GameID: gameID})
	return gameID, nil
}

// JoinRoom binds the connection to an existing room.
func (d *Dispatcher) JoinRoom(sess Session, gameID int) string {
	var events []Event
	err := d.rooms.With(gameID, func(room *domain.Room) error {
		var err error
		events, err = d.svc.Join(room, sess.UserID, sess.DisplayName)
		return err
	})
	switch {
	case errors.Is(err, ErrGameNotFound), errors.Is(err, domain.ErrRoomEnded):
		d.notice(sess.UserID, ResultNotFound)
		return ResultNotFound
	case err != nil:
		d.logger.Error("join room %d failed for %s: %v", gameID, sess.UserID, err)
		return err.Error()
	}

	key := GameRoomKey(gameID)
	d.registry.Join(sess.UserID, gameID)
	d.out.JoinGroup(sess.UserID, key)
	d.relay(key, events)
	return ResultOK
}

// LeaveRoom unbinds the connection from its resolved room.
func (d *Dispatcher) LeaveRoom(sess Session) string {
	return d.roomEvent(sess, func(ref RoomRef, room *domain.Room) ([]Event, error) {
		events, err := d.svc.Leave(room, sess.UserID)
		if err != nil {
			return nil, err
		}
		d.registry.Leave(sess.UserID, ref.GameID)
		d.out.LeaveGroup(sess.UserID, ref.RoomKey)
		return events, nil
	})
}

// SitDown seats the acting connection in its resolved room.
func (d *Dispatcher) SitDown(sess Session) string {
	return d.roomEvent(sess, func(ref RoomRef, room *domain.Room) ([]Event, error) {
		return d.svc.SitDown(room, sess.UserID)
	})
}

// StandUp unseats the acting connection in its resolved room.
func (d *Dispatcher) StandUp(sess Session) string {
	return d.roomEvent(sess, func(ref RoomRef, room *domain.Room) ([]Event, error) {
		return d.svc.StandUp(room, sess.UserID)
	})
}

// StartGame starts the match in the acting connection's resolved room.
func (d *Dispatcher) StartGame(sess Session) string {
	return d.roomEvent(sess, func(ref RoomRef, room *domain.Room) ([]Event, error) {
		return d.svc.StartGame(room)
	})
}

// Chat handles room chat. Text beginning with the command marker is routed
// to command handling exactly once and never broadcast.
func (d *Dispatcher) Chat(sess Session, text string) string {
	if strings.HasPrefix(text, commandMarker) {
		d.commands.RunCommand(text, sess.UserID)
		return ResultOK
	}
	return d.roomEvent(sess, func(ref RoomRef, room *domain.Room) ([]Event, error) {
		d.logger.Info("game %d chat message: %s: %s", ref.GameID, sess.UserID, text)
		return d.svc.Chat(room, sess.UserID, text)
	})
}

// EndGame is the externally triggered end condition from downstream
// gameplay rules. The room becomes read-only.
func (d *Dispatcher) EndGame(gameID int) error {
	var events []Event
	err := d.rooms.With(gameID, func(room *domain.Room) error {
		var err error
		events, err = d.svc.EndGame(room)
		return err
	})
	if err != nil {
		return err
	}
	d.relay(GameRoomKey(gameID), events)
	return nil
}

// ChatLog returns the ordered chat/event log for a room.
func (d *Dispatcher) ChatLog(gameID int) ([]domain.ChatEntry, error) {
	var log []domain.ChatEntry
	err := d.rooms.With(gameID, func(room *domain.Room) error {
		log = room.ChatLog()
		return nil
	})
	return log, err
}

// Visibility returns the acting connection's own cached partial view.
// It is never queryable for another player.
func (d *Dispatcher) Visibility(sess Session) (*domain.Sight, string) {
	ref := d.registry.ResolveActiveRoom(sess.UserID)
	if ref.GameID == SentinelGameID {
		d.notice(sess.UserID, ResultNotInRoom)
		return nil, ResultNotInRoom
	}
	var sight *domain.Sight
	err := d.rooms.With(ref.GameID, func(room *domain.Room) error {
		if inst := room.RosterFor(sess.UserID); inst != nil && inst.Sight != nil {
			copied := *inst.Sight
			sight = &copied
		}
		return nil
	})
	if err != nil {
		d.notice(sess.UserID, ResultNotFound)
		return nil, ResultNotFound
	}
	return sight, ResultOK
}

// Disconnect destroys a connection's bindings when the transport drops it.
func (d *Dispatcher) Disconnect(userID string) {
	for _, key := range d.registry.Memberships(userID) {
		gameID, ok := ParseGameRoomKey(key)
		if !ok {
			continue
		}
		var events []Event
		err := d.rooms.With(gameID, func(room *domain.Room) error {
			var err error
			events, err = d.svc.Leave(room, userID)
			return err
		})
		if err == nil {
			d.relay(key, events)
		}
		d.out.LeaveGroup(userID, key)
	}
	d.registry.Drop(userID)
}

// roomEvent resolves the acting connection's room and applies fn under the
// room's lock. Unresolvable rooms short-circuit with a private notice and
// no state mutation.
func (d *Dispatcher) roomEvent(sess Session, fn func(RoomRef, *domain.Room) ([]Event, error)) string {
	ref := d.registry.ResolveActiveRoom(sess.UserID)
	if ref.GameID == SentinelGameID {
		d.notice(sess.UserID, ResultNotInRoom)
		return ResultNotInRoom
	}

	var events []Event
	err := d.rooms.With(ref.GameID, func(room *domain.Room) error {
		var err error
		events, err = fn(ref, room)
		return err
	})
	switch {
	case err == nil:
		d.relay(ref.RoomKey, events)
		return ResultOK
	case errors.Is(err, ErrGameNotFound):
		d.notice(sess.UserID, ResultNotFound)
		return ResultNotFound
	case errors.Is(err, ErrValidation):
		d.logger.Error("validation failed for %s in game %d: %v", sess.UserID, ref.GameID, err)
		return ResultOK
	default:
		// Rejected transition; room state unchanged.
		d.logger.Warn("event from %s rejected in game %d: %v", sess.UserID, ref.GameID, err)
		d.notice(sess.UserID, err.Error())
		return err.Error()
	}
}

// relay sends events out: room-wide unless the event names recipients.
func (d *Dispatcher) relay(roomKey string, events []Event) {
	for _, ev := range events {
		if len(ev.Recipients) == 0 {
			d.out.EmitToGroup(roomKey, string(ev.Kind), ev.Payload)
			continue
		}
		for _, userID := range ev.Recipients {
			d.out.EmitToOne(userID, string(ev.Kind), ev.Payload)
		}
	}
}

func (d *Dispatcher) notice(userID, text string) {
	d.out.EmitToOne(userID, string(EventNotice), NoticePayload{Text: text})
}
