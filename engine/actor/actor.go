// Package actor implements the combat stat block shared by the player and
// enemies. Vitals are clamped on every mutation and combat stats are derived
// on demand from a base value, equipment bonuses and an ordered modifier stack.
package actor

import (
	"math"
	"slices"

	"github.com/nathoo/eldoria/types"
)

// Stat names a modifiable combat stat.
type Stat string

const (
	Attack  Stat = "attack"
	Defense Stat = "defense"
	Magic   Stat = "magic"
	Speed   Stat = "speed"
	Agility Stat = "agility"
)

// Stats lists every combat stat in display order.
var Stats = []Stat{Attack, Defense, Magic, Speed, Agility}

// Bag is the inventory an actor draws consumables from.
type Bag interface {
	Count(itemID string) int
	Remove(itemID string, qty int) bool
}

// Token identifies an applied modifier for exact removal.
type Token uint64

// Modifier is a temporary change layered over a stat.
// Mult of 0 is treated as 1.
type Modifier struct {
	Source       string
	Stat         Stat
	Mult         float64
	Add          int
	Incapacitate bool
}

type applied struct {
	token Token
	mod   Modifier
}

// Actor is any hp/mp-bearing combat participant.
type Actor struct {
	ID         string
	Kind       string // template id, used for progress events
	Name       string
	Team       types.Team
	Controlled bool // waits for external input on its turn
	Level      int
	Crit       float64
	Element    types.Element
	Weaknesses []types.Element
	Abilities  []string
	ExpValue   int
	GoldValue  int
	Loot       []types.LootEntry
	Bag        Bag

	hp, maxHP int
	mp, maxMP int
	base      map[Stat]int
	equip     map[Stat]int
	mods      []applied
	next      Token
}

// New creates an actor at full hp/mp from a stat block.
func New(id, name string, team types.Team, stats types.StatBlock) *Actor {
	a := &Actor{
		ID:    id,
		Kind:  id,
		Name:  name,
		Team:  team,
		Level: 1,
		Crit:  stats.Crit,
		base: map[Stat]int{
			Attack:  nonNegative(stats.Attack),
			Defense: nonNegative(stats.Defense),
			Magic:   nonNegative(stats.Magic),
			Speed:   nonNegative(stats.Speed),
			Agility: nonNegative(stats.Agility),
		},
		equip: map[Stat]int{},
	}
	a.maxHP = nonNegative(stats.HP)
	a.maxMP = nonNegative(stats.MP)
	a.hp = a.maxHP
	a.mp = a.maxMP
	return a
}

// FromEnemy builds an enemy actor from its template. id must be unique within
// an encounter; Kind keeps the template id.
func FromEnemy(id string, def types.EnemyDef) *Actor {
	a := New(id, def.Name, types.TeamEnemy, def.Stats)
	a.Kind = def.ID
	if def.Level > 0 {
		a.Level = def.Level
	}
	a.Element = def.Element
	a.Weaknesses = slices.Clone(def.Weaknesses)
	a.Abilities = slices.Clone(def.Abilities)
	a.ExpValue = def.Exp
	a.GoldValue = def.Gold
	a.Loot = slices.Clone(def.Loot)
	return a
}

// HP returns current hit points.
func (a *Actor) HP() int { return a.hp }

// MaxHP returns maximum hit points.
func (a *Actor) MaxHP() int { return a.maxHP }

// MP returns current mana points.
func (a *Actor) MP() int { return a.mp }

// MaxMP returns maximum mana points.
func (a *Actor) MaxMP() int { return a.maxMP }

// HPPercent returns hp/maxHp in [0,1].
func (a *Actor) HPPercent() float64 {
	if a.maxHP == 0 {
		return 0
	}
	return float64(a.hp) / float64(a.maxHP)
}

// SetMaxHP changes maximum hp and re-clamps current hp.
func (a *Actor) SetMaxHP(n int) {
	a.maxHP = nonNegative(n)
	a.hp = clamp(a.hp, 0, a.maxHP)
}

// SetMaxMP changes maximum mp and re-clamps current mp.
func (a *Actor) SetMaxMP(n int) {
	a.maxMP = nonNegative(n)
	a.mp = clamp(a.mp, 0, a.maxMP)
}

// SetVitals sets hp and mp, clamped to their ranges.
func (a *Actor) SetVitals(hp, mp int) {
	a.hp = clamp(hp, 0, a.maxHP)
	a.mp = clamp(mp, 0, a.maxMP)
}

// Restore refills hp and mp.
func (a *Actor) Restore() {
	a.hp = a.maxHP
	a.mp = a.maxMP
}

// Damage removes up to n hp and returns the amount actually removed.
func (a *Actor) Damage(n int) int {
	if n <= 0 {
		return 0
	}
	before := a.hp
	a.hp = clamp(a.hp-n, 0, a.maxHP)
	return before - a.hp
}

// Heal adds up to n hp and returns the amount actually added.
func (a *Actor) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := a.hp
	a.hp = clamp(a.hp+n, 0, a.maxHP)
	return a.hp - before
}

// SpendMP pays n mp. It fails without side effects when mp is short.
func (a *Actor) SpendMP(n int) bool {
	if n < 0 || n > a.mp {
		return false
	}
	a.mp -= n
	return true
}

// RestoreMP adds up to n mp and returns the amount actually added.
func (a *Actor) RestoreMP(n int) int {
	if n <= 0 {
		return 0
	}
	before := a.mp
	a.mp = clamp(a.mp+n, 0, a.maxMP)
	return a.mp - before
}

// IsAlive reports hp > 0.
func (a *Actor) IsAlive() bool { return a.hp > 0 }

// Incapacitated reports whether any active modifier prevents acting.
func (a *Actor) Incapacitated() bool {
	for _, m := range a.mods {
		if m.mod.Incapacitate {
			return true
		}
	}
	return false
}

// CanAct reports whether the actor is alive and not incapacitated.
func (a *Actor) CanAct() bool {
	return a.IsAlive() && !a.Incapacitated()
}

// Base returns the unmodified value of a stat.
func (a *Actor) Base(s Stat) int { return a.base[s] }

// SetBase replaces the base value of a stat (floored at 0).
func (a *Actor) SetBase(s Stat, v int) {
	a.base[s] = nonNegative(v)
}

// AddBase permanently shifts a stat, as on level up.
func (a *Actor) AddBase(s Stat, delta int) {
	a.SetBase(s, a.base[s]+delta)
}

// SetEquipment replaces the additive equipment bonuses.
func (a *Actor) SetEquipment(bonuses map[Stat]int) {
	a.equip = make(map[Stat]int, len(bonuses))
	for s, v := range bonuses {
		a.equip[s] = v
	}
}

// EquipmentBonus returns the equipment bonus for a stat.
func (a *Actor) EquipmentBonus(s Stat) int { return a.equip[s] }

// Stat returns the effective value: (base + equipment) scaled by every
// multiplier, rounded, plus every additive delta, floored at 0.
func (a *Actor) Stat(s Stat) int {
	v := float64(a.base[s] + a.equip[s])
	add := 0
	for _, m := range a.mods {
		if m.mod.Stat != s {
			continue
		}
		if m.mod.Mult != 0 {
			v *= m.mod.Mult
		}
		add += m.mod.Add
	}
	return nonNegative(int(math.Round(v)) + add)
}

// AddModifier pushes a modifier and returns its removal token.
func (a *Actor) AddModifier(m Modifier) Token {
	a.next++
	a.mods = append(a.mods, applied{token: a.next, mod: m})
	return a.next
}

// RemoveModifier pops the modifier with the given token.
// It returns false if the token is unknown or already removed.
func (a *Actor) RemoveModifier(t Token) bool {
	for i, m := range a.mods {
		if m.token == t {
			a.mods = append(a.mods[:i], a.mods[i+1:]...)
			return true
		}
	}
	return false
}

// ModifierCount returns the number of active modifiers.
func (a *Actor) ModifierCount() int { return len(a.mods) }

// IsWeakTo reports whether the actor lists the element as a weakness.
func (a *Actor) IsWeakTo(e types.Element) bool {
	if e == types.ElementNone {
		return false
	}
	return slices.Contains(a.Weaknesses, e)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
