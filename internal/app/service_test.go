package app

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"avalon/internal/config"
	"avalon/internal/domain"
)

func testService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), config.DefaultGameConfig())
}

func joinAndSit(t *testing.T, svc *Service, room *domain.Room, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := svc.Join(room, name, name); err != nil {
			t.Fatalf("join %s error: %v", name, err)
		}
		if _, err := svc.SitDown(room, name); err != nil {
			t.Fatalf("sit %s error: %v", name, err)
		}
	}
}

func TestStartGameScenario(t *testing.T) {
	svc := testService(42)
	room := domain.NewRoom(1)
	joinAndSit(t, svc, room, "Alice", "Bob", "Carol", "Dave", "Eve")

	events, err := svc.StartGame(room)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if room.Phase != domain.PhaseInProgress {
		t.Fatalf("phase = %s, want in_progress", room.Phase)
	}
	if room.SpyCount() != 2 {
		t.Fatalf("spy count = %d, want 2 for a 5-player match", room.SpyCount())
	}

	var started int
	reveals := map[string]bool{}
	for _, ev := range events {
		switch ev.Kind {
		case EventGameStarted:
			started++
			if len(ev.Recipients) != 0 {
				t.Error("game_started should broadcast to the room")
			}
			payload := ev.Payload.(GameStartedPayload)
			if payload.PlayerCount != 5 || payload.SpyCount != 2 {
				t.Errorf("game_started payload = %+v", payload)
			}
		case EventRoleRevealed:
			payload := ev.Payload.(RoleRevealedPayload)
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
				t.Errorf("role reveal for %s targets %v", payload.UserID, ev.Recipients)
			}
			reveals[payload.UserID] = true
		}
	}
	if started != 1 {
		t.Fatalf("game_started events = %d, want 1", started)
	}
	if len(reveals) != 5 {
		t.Fatalf("role reveals = %d, want one per seated player", len(reveals))
	}
	for _, inst := range room.Roster {
		if inst.Sight == nil {
			t.Errorf("seat %d has no cached visibility result", inst.Seat)
		}
	}
}

func TestStartGameConcurrentRooms(t *testing.T) {
	svc := testService(3)
	rooms := NewRooms()
	ids := []int{rooms.Create().ID, rooms.Create().ID}
	for _, id := range ids {
		if err := rooms.With(id, func(room *domain.Room) error {
			joinAndSit(t, svc, room, "Alice", "Bob", "Carol", "Dave", "Eve")
			return nil
		}); err != nil {
			t.Fatalf("seed room %d error: %v", id, err)
		}
	}

	// Starts in different rooms hold only their own room's lock.
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			errs[i] = rooms.With(id, func(room *domain.Room) error {
				_, err := svc.StartGame(room)
				return err
			})
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("start in room %d error: %v", ids[i], err)
		}
	}
	for _, id := range ids {
		if err := rooms.With(id, func(room *domain.Room) error {
			if room.Phase != domain.PhaseInProgress {
				t.Errorf("room %d phase = %s, want in_progress", id, room.Phase)
			}
			for _, inst := range room.Roster {
				if inst.Sight == nil {
					t.Errorf("room %d seat %d has no cached visibility result", id, inst.Seat)
				}
			}
			return nil
		}); err != nil {
			t.Fatalf("inspect room %d error: %v", id, err)
		}
	}
}

func TestLeaveTwiceEmitsOnce(t *testing.T) {
	svc := testService(1)
	room := domain.NewRoom(1)
	if _, err := svc.Join(room, "Alice", "Alice"); err != nil {
		t.Fatalf("join error: %v", err)
	}

	events, err := svc.Leave(room, "Alice")
	if err != nil || len(events) != 1 {
		t.Fatalf("first leave = (%d events, %v)", len(events), err)
	}
	before := len(room.ChatLog())

	events, err = svc.Leave(room, "Alice")
	if err != nil || len(events) != 0 {
		t.Fatalf("second leave = (%d events, %v), want no-op", len(events), err)
	}
	if len(room.ChatLog()) != before {
		t.Fatal("repeated leave must not extend the narrative")
	}
}

func TestStartGameNobodySeatedRejected(t *testing.T) {
	svc := testService(1)
	room := domain.NewRoom(1)
	if _, err := svc.Join(room, "Alice", "Alice"); err != nil {
		t.Fatalf("join error: %v", err)
	}

	_, err := svc.StartGame(room)
	if !errors.Is(err, domain.ErrNotSeated) {
		t.Fatalf("err = %v, want ErrNotSeated", err)
	}
	if room.Phase != domain.PhaseLobby {
		t.Fatalf("phase = %s, want lobby unchanged", room.Phase)
	}
}

func TestChatAppendsAndBroadcasts(t *testing.T) {
	svc := testService(1)
	room := domain.NewRoom(1)
	if _, err := svc.Join(room, "Alice", "Alice"); err != nil {
		t.Fatalf("join error: %v", err)
	}

	events, err := svc.Chat(room, "Alice", "hello table")
	if err != nil {
		t.Fatalf("chat error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventRoomChat {
		t.Fatalf("events = %+v, want one room_chat", events)
	}

	log := room.ChatLog()
	last := log[len(log)-1]
	if last.Text != "hello table" || last.Type != domain.EntryChat || last.Username != "Alice" {
		t.Fatalf("log entry = %+v", last)
	}
}

func TestChatValidationFailureSuppressed(t *testing.T) {
	svc := testService(1)
	room := domain.NewRoom(1)
	if _, err := svc.Join(room, "Alice", "Alice"); err != nil {
		t.Fatalf("join error: %v", err)
	}
	before := len(room.ChatLog())

	_, err := svc.Chat(room, "Alice", "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(room.ChatLog()) != before {
		t.Fatal("invalid entry must not reach the log")
	}
}

func TestSitDownTwiceEmitsOnce(t *testing.T) {
	svc := testService(1)
	room := domain.NewRoom(1)
	if _, err := svc.Join(room, "Alice", "Alice"); err != nil {
		t.Fatalf("join error: %v", err)
	}

	events, err := svc.SitDown(room, "Alice")
	if err != nil || len(events) != 1 {
		t.Fatalf("first sit = (%d events, %v)", len(events), err)
	}
	events, err = svc.SitDown(room, "Alice")
	if err != nil || len(events) != 0 {
		t.Fatalf("second sit = (%d events, %v), want no-op", len(events), err)
	}
}

func TestEndGameMakesRoomReadOnly(t *testing.T) {
	svc := testService(7)
	room := domain.NewRoom(1)
	joinAndSit(t, svc, room, "Alice", "Bob", "Carol", "Dave", "Eve")
	if _, err := svc.StartGame(room); err != nil {
		t.Fatalf("start error: %v", err)
	}

	events, err := svc.EndGame(room)
	if err != nil {
		t.Fatalf("end error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventGameEnded {
		t.Fatalf("events = %+v, want one game_ended", events)
	}
	if room.Phase != domain.PhaseEnded {
		t.Fatalf("phase = %s, want ended", room.Phase)
	}

	if _, err := svc.Chat(room, "Alice", "gg"); !errors.Is(err, domain.ErrRoomEnded) {
		t.Fatalf("chat err = %v, want ErrRoomEnded", err)
	}
	if _, err := svc.EndGame(room); !errors.Is(err, domain.ErrRoomEnded) {
		t.Fatalf("double end err = %v, want ErrRoomEnded", err)
	}
}

func TestLeaveInProgressKeepsSeat(t *testing.T) {
	svc := testService(7)
	room := domain.NewRoom(1)
	joinAndSit(t, svc, room, "Alice", "Bob", "Carol", "Dave", "Eve")
	if _, err := svc.StartGame(room); err != nil {
		t.Fatalf("start error: %v", err)
	}

	if _, err := svc.Leave(room, "Alice"); err != nil {
		t.Fatalf("leave error: %v", err)
	}
	if room.RosterFor("Alice") == nil {
		t.Fatal("role assignment should survive leaving in progress")
	}
}
