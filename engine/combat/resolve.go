package combat

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/types"
)

// plan is a validated action, ready to execute without further checks.
type plan struct {
	act     Action
	targets []*actor.Actor
	ability types.AbilityDef
	item    types.ItemDef
}

// prepare validates an action for user. It reads state but never writes it,
// so a rejected action leaves the session untouched.
func (e *Engine) prepare(user *actor.Actor, act Action, targetID string) (plan, error) {
	p := plan{act: act}

	switch a := act.(type) {
	case Attack:
		t, err := e.opponent(user, targetID)
		if err != nil {
			return p, err
		}
		p.targets = []*actor.Actor{t}

	case UseAbility:
		def, ok := e.defs.Ability(a.ID)
		if !ok || !slices.Contains(user.Abilities, a.ID) {
			return p, fmt.Errorf("%w: %s does not know %q", ErrIllegalAction, user.Name, a.ID)
		}
		if user.Level < def.Level {
			return p, fmt.Errorf("%w: %s requires level %d", ErrIllegalAction, def.Name, def.Level)
		}
		if def.Requires != "" && (user.Bag == nil || user.Bag.Count(def.Requires) < 1) {
			return p, fmt.Errorf("%w: %s requires %s", ErrIllegalAction, def.Name, e.defs.ItemName(def.Requires))
		}
		if user.MP() < def.MPCost {
			return p, fmt.Errorf("%w: not enough mp for %s (%d/%d)", ErrIllegalAction, def.Name, user.MP(), def.MPCost)
		}
		p.ability = def

		switch {
		case def.Healing || def.Target == types.TargetAlly:
			t, err := e.ally(user, targetID)
			if err != nil {
				return p, err
			}
			p.targets = []*actor.Actor{t}
		case def.Area:
			p.targets = e.livingOpponents(user)
		default:
			t, err := e.opponent(user, targetID)
			if err != nil {
				return p, err
			}
			p.targets = []*actor.Actor{t}
		}

	case UseItem:
		if user.Bag == nil || user.Bag.Count(a.ID) < 1 {
			return p, fmt.Errorf("%w: no %s to use", ErrIllegalAction, e.defs.ItemName(a.ID))
		}
		def, ok := e.defs.Item(a.ID)
		if !ok {
			return p, fmt.Errorf("%w: unknown item %q", ErrIllegalAction, a.ID)
		}
		switch def.Kind {
		case types.ItemHeal, types.ItemMana, types.ItemBuff:
		default:
			return p, fmt.Errorf("%w: %s cannot be used in combat", ErrIllegalAction, def.Name)
		}
		t, err := e.ally(user, targetID)
		if err != nil {
			return p, err
		}
		p.item = def
		p.targets = []*actor.Actor{t}

	case Flee:

	default:
		return p, fmt.Errorf("%w: unsupported action %T", ErrIllegalAction, act)
	}
	return p, nil
}

// execute applies a prepared action. It reports true when the action ended
// the session by itself (a successful flee).
func (e *Engine) execute(user *actor.Actor, p plan) bool {
	log := e.session.log.WithFields(logrus.Fields{"actor": user.ID, "action": Describe(p.act)})

	switch p.act.(type) {
	case Attack:
		e.physicalAttack(user, p.targets[0])

	case UseAbility:
		user.SpendMP(p.ability.MPCost)
		e.castAbility(user, p.ability, p.targets)

	case UseItem:
		user.Bag.Remove(p.item.ID, 1)
		e.useItem(user, p.item, p.targets[0])

	case Flee:
		chance := FleeChance(user.Stat(actor.Agility))
		if e.rng.Float64() < chance {
			log.WithField("chance", chance).Info("fled")
			e.finish(ResultFled)
			return true
		}
		e.bus.Emit(types.Event{Type: types.EventFleeFailed, Actor: user.ID, Name: user.Name})
	}
	log.Debug("resolved")
	return false
}

func (e *Engine) physicalAttack(user, target *actor.Actor) {
	mult := PhysicalMultiplier(e.defs.Weaknesses, user.Element, target.Element)
	crit := user.Crit > 0 && e.rng.Float64() < user.Crit
	dmg := ResolvePhysicalAttack(user.Stat(actor.Attack), target.Stat(actor.Defense), mult, crit)

	applied := target.Damage(dmg)
	e.emitDamage(user.ID, target, applied, "attack", map[string]any{
		"crit":       crit,
		"multiplier": mult,
	}, true)
	e.bumpCombo()
}

func (e *Engine) castAbility(user *actor.Actor, def types.AbilityDef, targets []*actor.Actor) {
	if def.Healing {
		heal := ResolveHealing(def.Power, user.Stat(actor.Magic), e.rng.Float64())
		for _, t := range targets {
			e.bus.Emit(types.Event{
				Type:   types.EventHeal,
				Actor:  user.ID,
				Target: t.ID,
				Amount: t.Heal(heal),
				Name:   def.Name,
			})
		}
	} else if def.Power > 0 && def.Target != types.TargetAlly {
		hits := max(def.Hits, 1)
		for _, t := range targets {
			for i := 0; i < hits && t.IsAlive(); i++ {
				weak := e.weak(t, def.Element)
				dmg := ResolveAbilityDamage(AbilityRoll{
					Power:   def.Power,
					Attack:  user.Stat(actor.Attack),
					Defense: t.Stat(actor.Defense),
					Weak:    weak,
					Spread:  e.rng.Float64(),
					Combo:   e.comboNow(),
				})
				applied := t.Damage(dmg)
				e.emitDamage(user.ID, t, applied, def.Name, map[string]any{
					"weak":  weak,
					"combo": e.session.combo,
				}, true)
				e.bumpCombo()
			}
		}
	}

	for _, t := range targets {
		if !t.IsAlive() {
			continue
		}
		for _, ref := range def.Effects {
			e.inflict(user, t, ref)
		}
	}
}

func (e *Engine) useItem(user *actor.Actor, def types.ItemDef, target *actor.Actor) {
	switch def.Kind {
	case types.ItemHeal:
		e.bus.Emit(types.Event{
			Type:   types.EventHeal,
			Actor:  user.ID,
			Target: target.ID,
			Amount: target.Heal(def.Power),
			Name:   def.Name,
		})
	case types.ItemMana:
		e.bus.Emit(types.Event{
			Type:   types.EventManaRestored,
			Actor:  user.ID,
			Target: target.ID,
			Amount: target.RestoreMP(def.Power),
			Name:   def.Name,
		})
	}
	for _, ref := range def.Effects {
		e.inflict(user, target, ref)
	}
}

func (e *Engine) inflict(source, target *actor.Actor, ref types.EffectRef) {
	def, ok := e.defs.Status(ref.Status)
	if !ok {
		e.session.log.WithField("status", ref.Status).Warn("unknown status effect ignored")
		return
	}
	a := e.session.ledger.Apply(target, def, ref)
	e.bus.Emit(types.Event{
		Type:   types.EventStatusApplied,
		Actor:  source.ID,
		Target: target.ID,
		Amount: a.Remaining,
		Name:   def.Name,
		Data:   map[string]any{"status": def.ID},
	})
}

// weak reports whether target takes extra damage from element, either by
// its own weakness list or by the weakness map for its element.
func (e *Engine) weak(target *actor.Actor, element types.Element) bool {
	if element == types.ElementNone {
		return false
	}
	return target.IsWeakTo(element) || e.defs.WeakTo(target.Element, element)
}

func (e *Engine) opponent(user *actor.Actor, targetID string) (*actor.Actor, error) {
	if targetID == "" {
		opp := e.livingOpponents(user)
		if len(opp) == 0 {
			return nil, fmt.Errorf("%w: no one to target", ErrIllegalAction)
		}
		return opp[0], nil
	}
	t, ok := e.Participant(targetID)
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: no combatant %q", ErrIllegalAction, targetID)
	case t.Team == user.Team:
		return nil, fmt.Errorf("%w: %s is an ally", ErrIllegalAction, t.Name)
	case !t.IsAlive():
		return nil, fmt.Errorf("%w: %s is already down", ErrIllegalAction, t.Name)
	}
	return t, nil
}

func (e *Engine) ally(user *actor.Actor, targetID string) (*actor.Actor, error) {
	if targetID == "" || targetID == user.ID {
		return user, nil
	}
	t, ok := e.Participant(targetID)
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: no combatant %q", ErrIllegalAction, targetID)
	case t.Team != user.Team:
		return nil, fmt.Errorf("%w: %s is not an ally", ErrIllegalAction, t.Name)
	case !t.IsAlive():
		return nil, fmt.Errorf("%w: %s is already down", ErrIllegalAction, t.Name)
	}
	return t, nil
}

func (e *Engine) livingOpponents(user *actor.Actor) []*actor.Actor {
	var out []*actor.Actor
	for _, a := range e.session.participants {
		if a.Team != user.Team && a.IsAlive() {
			out = append(out, a)
		}
	}
	return out
}
