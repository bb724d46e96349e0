package domain

import (
	"errors"
	"time"
)

// ChatEntryType classifies entries in a room's chat/event log.
type ChatEntryType string

const (
	// EntryChat is a player-authored message.
	EntryChat ChatEntryType = "chat"
	// EntrySystem narrates a state transition for spectators and replays.
	EntrySystem ChatEntryType = "system"
	// EntryError is a private notice delivered to a single connection.
	EntryError ChatEntryType = "error"
)

// MaxChatLength caps outgoing chat text.
const MaxChatLength = 500

var (
	ErrEmptyChat   = errors.New("chat entry has no text")
	ErrChatTooLong = errors.New("chat entry exceeds maximum length")
)

// ChatEntry is one record in a room's append-only log.
type ChatEntry struct {
	Text      string        `json:"text"`
	Username  string        `json:"username"`
	Timestamp time.Time     `json:"timestamp"`
	Type      ChatEntryType `json:"type"`
}

// Validate checks an outgoing entry before it may be broadcast.
func (e ChatEntry) Validate() error {
	if e.Text == "" {
		return ErrEmptyChat
	}
	if len(e.Text) > MaxChatLength {
		return ErrChatTooLong
	}
	return nil
}

// SystemEntry builds a system-typed log entry stamped now.
func SystemEntry(text string) ChatEntry {
	return ChatEntry{Text: text, Timestamp: time.Now(), Type: EntrySystem}
}
