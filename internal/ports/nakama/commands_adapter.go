package nakama

import (
	"avalon/internal/app"
	"avalon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CommandRelay is a minimal ports.CommandRunner: it acknowledges the
// command privately and records it. Parsing and execution belong to the
// external command layer.
type CommandRelay struct {
	logger runtime.Logger
	out    ports.Broadcaster
}

// NewCommandRelay constructs a relay emitting through the broadcaster.
func NewCommandRelay(logger runtime.Logger, out ports.Broadcaster) *CommandRelay {
	return &CommandRelay{logger: logger, out: out}
}

// RunCommand handles one slash-command from room chat.
func (c *CommandRelay) RunCommand(text, userID string) {
	c.logger.Info("command from %s: %s", userID, text)
	c.out.EmitToOne(userID, string(app.EventNotice), app.NoticePayload{Text: "Command received: " + text})
}

var _ ports.CommandRunner = (*CommandRelay)(nil)
