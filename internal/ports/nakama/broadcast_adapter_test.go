package nakama

import (
	"encoding/json"
	"testing"

	"avalon/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// sent is one message captured by the mock dispatcher.
type sent struct {
	opCode  int64
	data    []byte
	targets []runtime.Presence
}

// mockDispatcher records broadcast calls.
type mockDispatcher struct {
	messages []sent
}

func (m *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	m.messages = append(m.messages, sent{opCode: opCode, data: data, targets: presences})
	return nil
}

func (m *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return m.BroadcastMessage(opCode, data, presences, sender, reliable)
}

func (m *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (m *mockDispatcher) MatchLabelUpdate(label string) error {
	return nil
}

func (m *mockDispatcher) byOpCode(op int64) []sent {
	var out []sent
	for _, msg := range m.messages {
		if msg.opCode == op {
			out = append(out, msg)
		}
	}
	return out
}

// fakePresence implements runtime.Presence for a test connection.
type fakePresence struct {
	userID   string
	username string
}

func (p *fakePresence) GetUserId() string    { return p.userID }
func (p *fakePresence) GetSessionId() string { return "session-" + p.userID }
func (p *fakePresence) GetNodeId() string    { return "node-1" }
func (p *fakePresence) GetHidden() bool      { return false }
func (p *fakePresence) GetPersistence() bool { return false }
func (p *fakePresence) GetUsername() string  { return p.username }
func (p *fakePresence) GetStatus() string    { return "" }
func (p *fakePresence) GetReason() runtime.PresenceReason {
	return runtime.PresenceReasonUnknown
}

func TestEmitToGroupTargetsTrackedMembers(t *testing.T) {
	b := NewBroadcaster(noopLogger{})
	dispatcher := &mockDispatcher{}
	b.Bind(dispatcher)

	b.Track(&fakePresence{userID: "u1", username: "Alice"})
	b.Track(&fakePresence{userID: "u2", username: "Bob"})
	b.Track(&fakePresence{userID: "u3", username: "Carol"})
	b.JoinGroup("u1", "game:1")
	b.JoinGroup("u2", "game:1")
	b.JoinGroup("u3", "game:2")

	b.EmitToGroup("game:1", string(app.EventRoomChat), map[string]string{"text": "hi"})

	got := dispatcher.byOpCode(OpRoomChatMsg)
	if len(got) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(got))
	}
	if len(got[0].targets) != 2 {
		t.Fatalf("targets = %d, want the two group members", len(got[0].targets))
	}
	for _, p := range got[0].targets {
		if p.GetUserId() == "u3" {
			t.Fatal("member of another group was targeted")
		}
	}
}

func TestEmitToOneTargetsSinglePresence(t *testing.T) {
	b := NewBroadcaster(noopLogger{})
	dispatcher := &mockDispatcher{}
	b.Bind(dispatcher)
	b.Track(&fakePresence{userID: "u1", username: "Alice"})

	b.EmitToOne("u1", string(app.EventNotice), app.NoticePayload{Text: "hello"})

	got := dispatcher.byOpCode(OpNotice)
	if len(got) != 1 || len(got[0].targets) != 1 || got[0].targets[0].GetUserId() != "u1" {
		t.Fatalf("messages = %+v, want one targeted send", got)
	}

	var payload app.NoticePayload
	if err := json.Unmarshal(got[0].data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Text != "hello" {
		t.Fatalf("payload text = %q", payload.Text)
	}
}

func TestEmitWithoutDispatcherIsDropped(t *testing.T) {
	b := NewBroadcaster(noopLogger{})
	b.Track(&fakePresence{userID: "u1"})
	b.JoinGroup("u1", "game:1")

	// No Bind yet; sends must not panic.
	b.EmitToGroup("game:1", string(app.EventRoomChat), "x")
	b.EmitToOne("u1", string(app.EventNotice), "x")
}

func TestEmitToUntrackedIsDropped(t *testing.T) {
	b := NewBroadcaster(noopLogger{})
	dispatcher := &mockDispatcher{}
	b.Bind(dispatcher)

	b.EmitToOne("ghost", string(app.EventNotice), "x")
	if len(dispatcher.messages) != 0 {
		t.Fatalf("messages = %d, want none for untracked user", len(dispatcher.messages))
	}
}

func TestUntrackRemovesFromEveryGroup(t *testing.T) {
	b := NewBroadcaster(noopLogger{})
	dispatcher := &mockDispatcher{}
	b.Bind(dispatcher)
	b.Track(&fakePresence{userID: "u1"})
	b.JoinGroup("u1", "game:1")
	b.JoinGroup("u1", "game:2")

	b.Untrack("u1")
	b.EmitToGroup("game:1", string(app.EventRoomChat), "x")
	b.EmitToGroup("game:2", string(app.EventRoomChat), "x")
	if len(dispatcher.messages) != 0 {
		t.Fatalf("messages = %d, want none after untrack", len(dispatcher.messages))
	}
}

func TestLeaveGroupIsIdempotent(t *testing.T) {
	b := NewBroadcaster(noopLogger{})
	b.Track(&fakePresence{userID: "u1"})
	b.JoinGroup("u1", "game:1")

	b.LeaveGroup("u1", "game:1")
	b.LeaveGroup("u1", "game:1")
	b.LeaveGroup("u2", "game:9")
}

func TestEventOpCodes(t *testing.T) {
	tests := []struct {
		event string
		want  int64
	}{
		{string(app.EventRoomCreated), OpRoomCreated},
		{string(app.EventPlayerJoined), OpPlayerJoined},
		{string(app.EventPlayerLeft), OpPlayerLeft},
		{string(app.EventPlayerSat), OpPlayerSat},
		{string(app.EventPlayerStood), OpPlayerStood},
		{string(app.EventGameStarted), OpGameStarted},
		{string(app.EventRoleRevealed), OpRoleRevealed},
		{string(app.EventRoomChat), OpRoomChatMsg},
		{string(app.EventGameEnded), OpGameEnded},
		{string(app.EventNotice), OpNotice},
		{"event_result", OpEventResult},
		{"unknown", OpEventResult},
	}
	for _, tt := range tests {
		if got := eventOpCode(tt.event); got != tt.want {
			t.Errorf("eventOpCode(%q) = %d, want %d", tt.event, got, tt.want)
		}
	}
}
