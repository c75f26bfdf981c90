package engine

import (
	"errors"

	"github.com/nathoo/eldoria/engine/save"
)

var (
	// ErrSaveInCombat is returned by Save while a battle is running. Combat
	// sessions are not persisted.
	ErrSaveInCombat = errors.New("cannot save during combat")
	// ErrGameOver is returned by Save after the player has fallen.
	ErrGameOver = errors.New("the game is over")
)

// Save serializes the game.
func (g *Game) Save() ([]byte, error) {
	switch {
	case g.gameOver:
		return nil, ErrGameOver
	case g.Combat.Active():
		return nil, ErrSaveInCombat
	}
	return save.Save(save.SaveData{
		Turn:        g.turn,
		Player:      g.Player.Snapshot(),
		Clock:       g.Clock.Snapshot(),
		Quests:      g.Quests.Serialize(),
		RNGSeed:     g.RNG.Seed(),
		RNGPosition: g.RNG.Position(),
		CommandLog:  g.commandLog,
	}, g.Defs)
}

// Load replaces the game state with a save. A running battle is dropped.
// Nothing is narrated and no rewards are paid.
func (g *Game) Load(data []byte) error {
	sd, err := save.Load(data)
	if err != nil {
		return err
	}
	g.Combat.End()
	g.Player.Load(g.Defs, sd.Player)
	g.Clock.Restore(sd.Clock)
	g.Quests.Deserialize(sd.Quests)
	g.RNG = RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	g.Combat = g.newCombat()
	g.turn = sd.Turn
	g.gameOver = false
	g.commandLog = sd.CommandLog
	g.log.WithField("turn", sd.Turn).Info("game loaded")
	return nil
}
