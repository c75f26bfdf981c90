// Package effects implements centralized player mutation via the Apply function.
// Every reward kind is one atomic operation. Combat payouts, loot and quest
// rewards all land here.
package effects

import (
	"fmt"

	"github.com/nathoo/eldoria/engine/player"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/types"
)

// Apply pays a list of rewards to the player, mutating it.
// Returns the events emitted, one per visible change. Narrate turns them
// into text.
func Apply(p *player.Player, defs *state.Defs, rewards []types.Reward) []types.Event {
	var events []types.Event

	for _, r := range rewards {
		switch r.Kind {
		case types.RewardGold:
			if r.Amount == 0 {
				continue
			}
			p.AddGold(r.Amount)
			events = append(events, types.Event{
				Type:   types.EventGoldGained,
				Actor:  p.ID,
				Amount: r.Amount,
				Data:   map[string]any{"total": p.Gold},
			})

		case types.RewardExp:
			if r.Amount <= 0 {
				continue
			}
			levels := p.GainExp(r.Amount)
			events = append(events, types.Event{
				Type:   types.EventExpGained,
				Actor:  p.ID,
				Amount: r.Amount,
			})
			for i := levels - 1; i >= 0; i-- {
				level := p.Level() - i
				events = append(events, types.Event{
					Type:   types.EventLevelUp,
					Actor:  p.ID,
					Amount: level,
				})
			}

		case types.RewardItem:
			qty := r.Amount
			if qty <= 0 {
				qty = 1
			}
			p.Inventory().Add(r.ItemID, qty)
			events = append(events, types.Event{
				Type:   types.EventItemGained,
				Actor:  p.ID,
				Amount: qty,
				Name:   r.ItemID,
			})

		case types.RewardReputation:
			if r.Amount == 0 {
				continue
			}
			total := p.AddReputation(r.Faction, r.Amount)
			events = append(events, types.Event{
				Type:   types.EventReputation,
				Actor:  p.ID,
				Amount: r.Amount,
				Name:   r.Faction,
				Data:   map[string]any{"total": total},
			})
		}
	}

	return events
}

// Narrate returns the player-facing line for a reward event. ok is false
// for events this package does not emit.
func Narrate(defs *state.Defs, ev types.Event) (line string, ok bool) {
	switch ev.Type {
	case types.EventGoldGained:
		if ev.Amount < 0 {
			return fmt.Sprintf("You lose %d gold.", -ev.Amount), true
		}
		return fmt.Sprintf("You receive %d gold.", ev.Amount), true
	case types.EventExpGained:
		return fmt.Sprintf("You gain %d experience.", ev.Amount), true
	case types.EventLevelUp:
		return fmt.Sprintf("You reached level %d!", ev.Amount), true
	case types.EventItemGained:
		return fmt.Sprintf("You obtain %s.", formatQty(defs.ItemName(ev.Name), ev.Amount)), true
	case types.EventReputation:
		verb := "rises"
		if ev.Amount < 0 {
			verb = "falls"
		}
		return fmt.Sprintf("Your standing with %s %s.", ev.Name, verb), true
	}
	return "", false
}

func formatQty(name string, qty int) string {
	if qty == 1 {
		return name
	}
	return fmt.Sprintf("%s x%d", name, qty)
}
