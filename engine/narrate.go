package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/eldoria/engine/clock"
	"github.com/nathoo/eldoria/engine/combat"
	"github.com/nathoo/eldoria/engine/effects"
	"github.com/nathoo/eldoria/types"
)

// narrate returns the line shown for a delivered event, or "" for events
// that stay silent.
func (g *Game) narrate(ev types.Event) string {
	if line, ok := effects.Narrate(g.Defs, ev); ok {
		return line
	}

	switch ev.Type {
	case types.EventCombatStart:
		order, _ := ev.Data["order"].([]string)
		var foes []string
		for _, id := range order {
			if id != g.Player.ID {
				foes = append(foes, g.who(id))
			}
		}
		return "Battle! You face " + joinAnd(foes) + "."

	case types.EventDamage:
		return g.narrateDamage(ev)

	case types.EventHeal:
		return g.narrateRestore(ev, "HP")

	case types.EventManaRestored:
		return g.narrateRestore(ev, "MP")

	case types.EventStatusApplied:
		return fmt.Sprintf("%s %s now %s (%d turns).", g.who(ev.Target), g.verb(ev.Target, "are", "is"), strings.ToLower(ev.Name), ev.Amount)

	case types.EventStatusExpired:
		return fmt.Sprintf("%s %s no longer %s.", g.who(ev.Target), g.verb(ev.Target, "are", "is"), strings.ToLower(ev.Name))

	case types.EventFleeFailed:
		return fmt.Sprintf("%s %s to flee but %s!", g.who(ev.Actor), g.verb(ev.Actor, "try", "tries"), g.verb(ev.Actor, "fail", "fails"))

	case types.EventDefeated:
		return fmt.Sprintf("%s %s defeated!", g.who(ev.Target), g.verb(ev.Target, "are", "is"))

	case types.EventCombatEnd:
		switch combat.Result(ev.Name) {
		case combat.ResultVictory:
			return "Victory!"
		case combat.ResultDefeat:
			return "You have fallen. Game over. Use /load to restore a save or /quit to exit."
		case combat.ResultFled:
			return "You got away."
		default:
			return "The battle ends in a stalemate."
		}

	case types.EventQuestStarted:
		return "New quest: " + ev.Name
	case types.EventQuestProgress:
		return fmt.Sprintf("Quest progress: %s (%d/%v)", ev.Name, ev.Amount, ev.Data["required"])
	case types.EventQuestCompleted:
		return "Quest complete: " + ev.Name + "!"
	case types.EventQuestFailed:
		return "Quest failed: " + ev.Name + "."

	case types.EventDayChanged:
		return fmt.Sprintf("A new day begins (day %d).", ev.Amount)
	case types.EventPeriodChanged:
		return periodText(clock.Period(ev.Name))
	}

	// turn_start, turn_end, hour_changed, loot_dropped and action_failed
	// are either noise or already reported by the command.
	return ""
}

func (g *Game) narrateDamage(ev types.Event) string {
	var b strings.Builder
	switch {
	case ev.Actor == "":
		fmt.Fprintf(&b, "%s %s %d damage from %s.", g.who(ev.Target), g.verb(ev.Target, "take", "takes"), ev.Amount, strings.ToLower(ev.Name))
	case ev.Name == "attack":
		fmt.Fprintf(&b, "%s %s %s for %d damage.", g.who(ev.Actor), g.verb(ev.Actor, "hit", "hits"), g.whom(ev.Target), ev.Amount)
	default:
		fmt.Fprintf(&b, "%s %s %s on %s for %d damage.", g.who(ev.Actor), g.verb(ev.Actor, "use", "uses"), ev.Name, g.whom(ev.Target), ev.Amount)
	}
	if crit, _ := ev.Data["crit"].(bool); crit {
		b.WriteString(" Critical hit!")
	}
	if weak, _ := ev.Data["weak"].(bool); weak {
		b.WriteString(" It's super effective!")
	}
	return b.String()
}

func (g *Game) narrateRestore(ev types.Event, what string) string {
	switch ev.Actor {
	case "":
		return fmt.Sprintf("%s %s %d %s from %s.", g.who(ev.Target), g.verb(ev.Target, "recover", "recovers"), ev.Amount, what, strings.ToLower(ev.Name))
	case ev.Target:
		return fmt.Sprintf("%s %s %s and %s %d %s.", g.who(ev.Actor), g.verb(ev.Actor, "use", "uses"), ev.Name, g.verb(ev.Actor, "recover", "recovers"), ev.Amount, what)
	default:
		return fmt.Sprintf("%s %s %s on %s, restoring %d %s.", g.who(ev.Actor), g.verb(ev.Actor, "use", "uses"), ev.Name, g.whom(ev.Target), ev.Amount, what)
	}
}

// who is the sentence subject for an actor id.
func (g *Game) who(id string) string {
	if id == g.Player.ID {
		return "You"
	}
	if n, ok := g.names[id]; ok {
		return n
	}
	return id
}

// whom is the sentence object for an actor id.
func (g *Game) whom(id string) string {
	if id == g.Player.ID {
		return "you"
	}
	return g.who(id)
}

func (g *Game) verb(id, second, third string) string {
	if id == g.Player.ID {
		return second
	}
	return third
}

func joinAnd(names []string) string {
	switch len(names) {
	case 0:
		return "no one"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
