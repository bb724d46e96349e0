package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"avalon/internal/app"
	"avalon/internal/config"
	"avalon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the runtime state for the rooms match handler. A single
// authoritative match hosts the whole room service; presences are the live
// connections and the app layer owns room membership.
type MatchState struct {
	Tick      int64
	Router    *app.Dispatcher
	Broadcast *Broadcaster
	Accounts  ports.AccountPort
	Sessions  map[string]app.Session
}

// Label is the match label advertised for lobby queries.
type Label struct {
	Game string `json:"game"`
	Open int    `json:"open"`
}

type joinRoomRequest struct {
	GameID int `json:"game_id"`
}

type chatRequest struct {
	Text string `json:"text"`
}

// eventResult reports a room-scoped event's outcome to the sender only.
type eventResult struct {
	Op     int64  `json:"op"`
	Result string `json:"result"`
	GameID int    `json:"game_id,omitempty"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit wires the room service and its adapters.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	configPath := "data/game_config.json"
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if path, ok := env["avalon_config_path"]; ok && path != "" {
			configPath = path
		}
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("MatchInit: could not load game config, using defaults: %v", err)
	}

	broadcast := NewBroadcaster(logger)
	registry := app.NewRegistry(logger)
	rooms := app.NewRooms()
	svc := app.NewService(nil, config.GetGameConfig())
	commands := NewCommandRelay(logger, broadcast)

	state := &MatchState{
		Tick:      time.Now().Unix(),
		Router:    app.NewDispatcher(logger, registry, rooms, svc, broadcast, commands),
		Broadcast: broadcast,
		Accounts:  NewNakamaAccountAdapter(nk),
		Sessions:  make(map[string]app.Session),
	}

	labelBytes, err := json.Marshal(Label{Game: "avalon", Open: 1})
	if err != nil {
		logger.Error("MatchInit: failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

// MatchJoinAttempt admits every authenticated presence; capacity is a
// per-room concern enforced by the app layer.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	if _, ok := state.(*MatchState); !ok {
		return state, false, "state not found"
	}
	return state, true, ""
}

// MatchJoin tracks new presences and resolves their display names.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	matchState.Broadcast.Bind(dispatcher)

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Broadcast.Track(p)

		displayName, err := matchState.Accounts.DisplayName(ctx, userID)
		if err != nil || displayName == "" {
			displayName = p.GetUsername()
		}
		matchState.Sessions[userID] = app.Session{UserID: userID, DisplayName: displayName}
		logger.Debug("MatchJoin: connection %s (%s) attached", userID, displayName)
	}
	return matchState
}

// MatchLeave destroys the leaving connections' room bindings.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	matchState.Broadcast.Bind(dispatcher)

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Router.Disconnect(userID)
		matchState.Broadcast.Untrack(userID)
		delete(matchState.Sessions, userID)
		logger.Debug("MatchLeave: connection %s detached", userID)
	}
	return matchState
}

// MatchLoop routes inbound messages to the event dispatcher.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick
	matchState.Broadcast.Bind(dispatcher)

	for _, msg := range messages {
		sess, ok := matchState.Sessions[msg.GetUserId()]
		if !ok {
			sess = app.Session{UserID: msg.GetUserId(), DisplayName: msg.GetUsername()}
		}

		switch msg.GetOpCode() {
		case OpCreateRoom:
			mh.handleCreateRoom(matchState, logger, sess)
		case OpJoinRoom:
			mh.handleJoinRoom(matchState, logger, sess, msg)
		case OpLeaveRoom:
			mh.reply(matchState, sess, OpLeaveRoom, matchState.Router.LeaveRoom(sess), 0)
		case OpSitDown:
			mh.reply(matchState, sess, OpSitDown, matchState.Router.SitDown(sess), 0)
		case OpStandUp:
			mh.reply(matchState, sess, OpStandUp, matchState.Router.StandUp(sess), 0)
		case OpStartGame:
			mh.reply(matchState, sess, OpStartGame, matchState.Router.StartGame(sess), 0)
		case OpRoomChat:
			mh.handleRoomChat(matchState, logger, sess, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode received: %d", msg.GetOpCode())
		}
	}
	return matchState
}

func (mh *matchHandler) handleCreateRoom(state *MatchState, logger runtime.Logger, sess app.Session) {
	gameID, err := state.Router.CreateRoom(sess)
	if err != nil {
		logger.Error("CreateRoom: failed for %s: %v", sess.UserID, err)
		mh.reply(state, sess, OpCreateRoom, err.Error(), 0)
		return
	}
	mh.reply(state, sess, OpCreateRoom, app.ResultOK, gameID)
}

func (mh *matchHandler) handleJoinRoom(state *MatchState, logger runtime.Logger, sess app.Session, msg runtime.MatchData) {
	var req joinRoomRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("JoinRoom: invalid request from %s: %v", sess.UserID, err)
		return
	}
	result := state.Router.JoinRoom(sess, req.GameID)
	mh.reply(state, sess, OpJoinRoom, result, req.GameID)
}

func (mh *matchHandler) handleRoomChat(state *MatchState, logger runtime.Logger, sess app.Session, msg runtime.MatchData) {
	var req chatRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("RoomChat: invalid request from %s: %v", sess.UserID, err)
		return
	}
	state.Router.Chat(sess, req.Text)
}

// reply delivers an event result to the sender only.
func (mh *matchHandler) reply(state *MatchState, sess app.Session, op int64, result string, gameID int) {
	state.Broadcast.EmitToOne(sess.UserID, "event_result", eventResult{Op: op, Result: result, GameID: gameID})
}

// MatchTerminate shuts the match down; room state is not persisted.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Info("MatchTerminate: rooms match shutting down")
	return state
}

// MatchSignal is unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
