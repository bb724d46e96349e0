package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// GameConfig holds the table rules for a social-deduction match.
type GameConfig struct {
	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`
	// SpyCounts maps a table size (as a JSON object key) to how many
	// players are dealt a spy-aligned role.
	SpyCounts map[string]int `json:"spy_counts"`
	// ResistanceRoles and SpyRoles list the special roles dealt before
	// padding with the plain ones, in priority order.
	ResistanceRoles []string `json:"resistance_roles"`
	SpyRoles        []string `json:"spy_roles"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// DefaultGameConfig returns the standard table rules.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		MinPlayers: 5,
		MaxPlayers: 10,
		SpyCounts: map[string]int{
			"5": 2, "6": 2, "7": 3, "8": 3, "9": 3, "10": 4,
		},
		ResistanceRoles: []string{"Merlin", "Percival"},
		SpyRoles:        []string{"Assassin", "Morgana"},
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or the defaults when no
// file has been loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return DefaultGameConfig()
	}
	return cfg
}

// SpyCountFor returns the spy count for a table size, falling back to
// roughly a third of the table when unconfigured.
func (c *GameConfig) SpyCountFor(players int) int {
	if count, ok := c.SpyCounts[strconv.Itoa(players)]; ok {
		return count
	}
	return (players + 2) / 3
}
