package app

import (
	"errors"
	"sync"

	"avalon/internal/domain"
)

// ErrGameNotFound is returned when an event targets a game id that does
// not exist.
var ErrGameNotFound = errors.New("game not found")

// roomSlot pairs a room with its lock. Operations within one room are
// serialized; operations on different rooms proceed independently.
type roomSlot struct {
	mu   sync.Mutex
	room *domain.Room
}

// Rooms owns every live room and allocates game ids.
type Rooms struct {
	mu     sync.RWMutex
	nextID int
	rooms  map[int]*roomSlot
}

// NewRooms constructs an empty room table.
func NewRooms() *Rooms {
	return &Rooms{nextID: 1, rooms: make(map[int]*roomSlot)}
}

// Create allocates the next game id and registers a new lobby room.
func (rs *Rooms) Create() *domain.Room {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	id := rs.nextID
	rs.nextID++
	room := domain.NewRoom(id)
	rs.rooms[id] = &roomSlot{room: room}
	return room
}

// With runs fn while holding the room's lock, serializing all mutations
// of that room in arrival order.
func (rs *Rooms) With(gameID int, fn func(*domain.Room) error) error {
	rs.mu.RLock()
	slot, ok := rs.rooms[gameID]
	rs.mu.RUnlock()
	if !ok {
		return ErrGameNotFound
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return fn(slot.room)
}

// Remove reaps a room. Retention policy is an external concern; this is
// the hook it calls.
func (rs *Rooms) Remove(gameID int) {
	rs.mu.Lock()
	delete(rs.rooms, gameID)
	rs.mu.Unlock()
}

// Len reports how many rooms are live.
func (rs *Rooms) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rooms)
}
