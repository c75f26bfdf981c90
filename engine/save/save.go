// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/eldoria/engine/clock"
	"github.com/nathoo/eldoria/engine/player"
	"github.com/nathoo/eldoria/engine/quest"
	"github.com/nathoo/eldoria/engine/state"
)

// FormatVersion is bumped whenever SaveData changes incompatibly.
const FormatVersion = 1

// ErrIncompatible reports a save written by a newer format.
var ErrIncompatible = errors.New("incompatible save format")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format      int            `json:"format"`
	Game        string         `json:"game"`
	Version     string         `json:"version"`
	Turn        int            `json:"turn"`
	Player      player.State   `json:"player"`
	Clock       clock.State    `json:"clock"`
	Quests      quest.Snapshot `json:"quests"`
	RNGSeed     int64          `json:"rng_seed"`
	RNGPosition int64          `json:"rng_position"`
	CommandLog  []string       `json:"command_log"`
}

// Save serializes game state to JSON bytes. Format and content metadata are
// filled in from defs.
func Save(sd SaveData, defs *state.Defs) ([]byte, error) {
	sd.Format = FormatVersion
	sd.Game = defs.Game.Title
	sd.Version = defs.Game.Version
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return json.MarshalIndent(sd, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	if sd.Format > FormatVersion {
		return nil, fmt.Errorf("%w: format %d, want <= %d", ErrIncompatible, sd.Format, FormatVersion)
	}
	// Ensure maps are never nil after load.
	if sd.Player.Stats == nil {
		sd.Player.Stats = map[string]int{}
	}
	if sd.Player.Equipment == nil {
		sd.Player.Equipment = map[string]string{}
	}
	if sd.Player.Reputation == nil {
		sd.Player.Reputation = map[string]int{}
	}
	if sd.Quests.Progress == nil {
		sd.Quests.Progress = map[string][]quest.ObjectiveSnapshot{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}
