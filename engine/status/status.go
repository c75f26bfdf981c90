// Package status implements the per-target ledger of timed status effects.
// The combat engine owns the ledger; other components only read snapshots.
package status

import (
	"math"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/types"
)

// Active is one status instance on a target.
type Active struct {
	Def       types.StatusDef
	Power     int
	Remaining int

	target   *actor.Actor
	token    actor.Token
	hasToken bool
}

// Tick reports what a single active effect did during a target's turn start.
type Tick struct {
	StatusID string
	Name     string
	Category types.StatusCategory
	Target   string
	Amount   int // hp actually removed (dot) or restored (hot)
	Expired  bool
}

// View is the read-only tuple handed to display layers.
type View struct {
	ID        string
	Name      string
	Category  types.StatusCategory
	Remaining int
}

// Ledger tracks active effects per target id, in application order.
type Ledger struct {
	byTarget map[string][]*Active
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byTarget: map[string][]*Active{}}
}

// Apply appends a new instance of def to target and runs its apply hook:
// stat modifiers and crowd control push a modifier onto the actor at once.
// ref overrides power and duration when non-zero.
func (l *Ledger) Apply(target *actor.Actor, def types.StatusDef, ref types.EffectRef) *Active {
	a := &Active{
		Def:       def,
		Power:     def.Power,
		Remaining: def.Duration,
		target:    target,
	}
	if ref.Power != 0 {
		a.Power = ref.Power
	}
	if ref.Duration > 0 {
		a.Remaining = ref.Duration
	}
	if a.Remaining < 1 {
		a.Remaining = 1
	}

	switch def.Category {
	case types.CategoryStatModifier:
		a.token = target.AddModifier(actor.Modifier{
			Source: def.ID,
			Stat:   actor.Stat(def.Stat),
			Mult:   def.Mult,
			Add:    def.Add,
		})
		a.hasToken = true
	case types.CategoryCrowdControl:
		a.token = target.AddModifier(actor.Modifier{Source: def.ID, Incapacitate: true})
		a.hasToken = true
	}

	l.byTarget[target.ID] = append(l.byTarget[target.ID], a)
	return a
}

// Tick processes every effect on target once: periodic effects apply their
// magnitude, every remaining duration drops by one and effects reaching zero
// are removed and reverted. Call exactly once at the start of target's turn.
func (l *Ledger) Tick(target *actor.Actor) []Tick {
	effects := l.byTarget[target.ID]
	if len(effects) == 0 {
		return nil
	}

	ticks := make([]Tick, 0, len(effects))
	kept := effects[:0]
	for _, a := range effects {
		t := Tick{
			StatusID: a.Def.ID,
			Name:     a.Def.Name,
			Category: a.Def.Category,
			Target:   target.ID,
		}
		switch a.Def.Category {
		case types.CategoryDamageOverTime:
			t.Amount = target.Damage(a.magnitude())
		case types.CategoryHealOverTime:
			t.Amount = target.Heal(a.magnitude())
		}

		a.Remaining--
		if a.Remaining > 0 {
			kept = append(kept, a)
		} else {
			a.expire()
			t.Expired = true
		}
		ticks = append(ticks, t)
	}

	if len(kept) == 0 {
		delete(l.byTarget, target.ID)
	} else {
		l.byTarget[target.ID] = kept
	}
	return ticks
}

// Snapshot returns the effects on a target as display tuples.
func (l *Ledger) Snapshot(targetID string) []View {
	effects := l.byTarget[targetID]
	views := make([]View, 0, len(effects))
	for _, a := range effects {
		views = append(views, View{
			ID:        a.Def.ID,
			Name:      a.Def.Name,
			Category:  a.Def.Category,
			Remaining: a.Remaining,
		})
	}
	return views
}

// Has reports whether target carries at least one instance of statusID.
func (l *Ledger) Has(targetID, statusID string) bool {
	for _, a := range l.byTarget[targetID] {
		if a.Def.ID == statusID {
			return true
		}
	}
	return false
}

// Len returns the number of active effects across all targets.
func (l *Ledger) Len() int {
	n := 0
	for _, effects := range l.byTarget {
		n += len(effects)
	}
	return n
}

// Clear drops every effect. Outstanding modifiers are reverted so actors
// that outlive the session keep their pre-effect stats.
func (l *Ledger) Clear() {
	for id, effects := range l.byTarget {
		for _, a := range effects {
			a.expire()
		}
		delete(l.byTarget, id)
	}
}

func (a *Active) magnitude() int {
	return a.Power + int(math.Round(a.Def.Percent*float64(a.target.MaxHP())))
}

// expire runs the expiry hook at most once.
func (a *Active) expire() {
	if a.hasToken {
		a.target.RemoveModifier(a.token)
		a.hasToken = false
	}
}
