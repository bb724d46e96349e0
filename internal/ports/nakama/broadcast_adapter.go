package nakama

import (
	"encoding/json"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Broadcaster implements ports.Broadcaster over a Nakama match dispatcher,
// grouping tracked presences under named keys. The match dispatcher is
// only valid inside match callbacks, so each callback rebinds it first.
type Broadcaster struct {
	logger runtime.Logger

	mu         sync.Mutex
	dispatcher runtime.MatchDispatcher
	presences  map[string]runtime.Presence
	groups     map[string]map[string]struct{}
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster(logger runtime.Logger) *Broadcaster {
	return &Broadcaster{
		logger:    logger,
		presences: make(map[string]runtime.Presence),
		groups:    make(map[string]map[string]struct{}),
	}
}

// Bind attaches the current callback's match dispatcher.
func (b *Broadcaster) Bind(dispatcher runtime.MatchDispatcher) {
	b.mu.Lock()
	b.dispatcher = dispatcher
	b.mu.Unlock()
}

// Track registers a live presence for targeted delivery.
func (b *Broadcaster) Track(p runtime.Presence) {
	b.mu.Lock()
	b.presences[p.GetUserId()] = p
	b.mu.Unlock()
}

// Untrack forgets a presence and removes it from every group.
func (b *Broadcaster) Untrack(userID string) {
	b.mu.Lock()
	delete(b.presences, userID)
	for _, members := range b.groups {
		delete(members, userID)
	}
	b.mu.Unlock()
}

// JoinGroup adds the connection to a named group. Idempotent.
func (b *Broadcaster) JoinGroup(userID, key string) {
	b.mu.Lock()
	members, ok := b.groups[key]
	if !ok {
		members = make(map[string]struct{})
		b.groups[key] = members
	}
	members[userID] = struct{}{}
	b.mu.Unlock()
}

// LeaveGroup removes the connection from a named group. Idempotent.
func (b *Broadcaster) LeaveGroup(userID, key string) {
	b.mu.Lock()
	if members, ok := b.groups[key]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(b.groups, key)
		}
	}
	b.mu.Unlock()
}

// EmitToGroup delivers an event to every tracked presence in the group.
func (b *Broadcaster) EmitToGroup(key, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("EmitToGroup: failed to marshal %s payload: %v", event, err)
		return
	}

	b.mu.Lock()
	dispatcher := b.dispatcher
	var targets []runtime.Presence
	for userID := range b.groups[key] {
		if p, ok := b.presences[userID]; ok {
			targets = append(targets, p)
		}
	}
	b.mu.Unlock()

	if dispatcher == nil || len(targets) == 0 {
		return
	}
	if err := dispatcher.BroadcastMessage(eventOpCode(event), data, targets, nil, true); err != nil {
		b.logger.Error("EmitToGroup: broadcast %s to %s failed: %v", event, key, err)
	}
}

// EmitToOne delivers an event to a single tracked presence.
func (b *Broadcaster) EmitToOne(userID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("EmitToOne: failed to marshal %s payload: %v", event, err)
		return
	}

	b.mu.Lock()
	dispatcher := b.dispatcher
	p, ok := b.presences[userID]
	b.mu.Unlock()

	if dispatcher == nil || !ok {
		return
	}
	if err := dispatcher.BroadcastMessage(eventOpCode(event), data, []runtime.Presence{p}, nil, true); err != nil {
		b.logger.Error("EmitToOne: send %s to %s failed: %v", event, userID, err)
	}
}
