package ports

// CommandRunner handles slash-commands extracted from room chat.
// Parsing and execution belong to the command layer, not the room layer.
type CommandRunner interface {
	RunCommand(text, userID string)
}
