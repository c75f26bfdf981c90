package combat

import (
	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/types"
)

// decide picks an action for an AI actor. The target is the living opponent
// with the least hp, first in participant order on ties. Every affordable
// action is scored once and the highest score wins; the plain attack is
// scored first so it wins ties.
func (e *Engine) decide(user *actor.Actor) (Action, string) {
	target := e.weakestOpponent(user)
	if target == nil {
		return Attack{}, ""
	}

	var (
		best    Action = Attack{}
		bestID         = target.ID
		bestVal        = e.attackValue(user, target)
	)
	for _, id := range user.Abilities {
		def, ok := e.defs.Ability(id)
		if !ok || !e.affordable(user, def) {
			continue
		}
		v := e.abilityValue(user, target, def)
		if v <= bestVal {
			continue
		}
		best, bestVal = UseAbility{ID: id}, v
		switch {
		case def.Healing || def.Target == types.TargetAlly:
			bestID = user.ID
		case def.Area:
			bestID = ""
		default:
			bestID = target.ID
		}
	}
	return best, bestID
}

func (e *Engine) weakestOpponent(user *actor.Actor) *actor.Actor {
	var best *actor.Actor
	for _, a := range e.livingOpponents(user) {
		if best == nil || a.HP() < best.HP() {
			best = a
		}
	}
	return best
}

func (e *Engine) attackValue(user, target *actor.Actor) float64 {
	v := float64(user.Stat(actor.Attack))
	if e.weak(target, user.Element) {
		v *= 1.5
	}
	return v
}

// abilityValue scores an ability: damage (×1.5 against a weakness), healing
// scaled by missing hp, power×duration/3 per attached effect, minus half
// the mp cost.
func (e *Engine) abilityValue(user, target *actor.Actor, def types.AbilityDef) float64 {
	v := 0.0
	if def.Healing {
		v += float64(def.Power) * (1 - user.HPPercent())
	} else if def.Power > 0 && def.Target != types.TargetAlly {
		v += float64(def.Power)
		if e.weak(target, def.Element) {
			v *= 1.5
		}
	}
	for _, ref := range def.Effects {
		power, duration := ref.Power, ref.Duration
		if sd, ok := e.defs.Status(ref.Status); ok {
			if power == 0 {
				power = sd.Power
			}
			if duration == 0 {
				duration = sd.Duration
			}
		}
		v += float64(power) * float64(duration) / 3
	}
	return v - float64(def.MPCost)*0.5
}

func (e *Engine) affordable(user *actor.Actor, def types.AbilityDef) bool {
	if user.MP() < def.MPCost || user.Level < def.Level {
		return false
	}
	if def.Requires != "" && (user.Bag == nil || user.Bag.Count(def.Requires) < 1) {
		return false
	}
	return true
}
