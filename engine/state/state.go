// Package state holds the immutable content tables the engine reads at
// runtime. Tables are built once by the loader and never mutated afterwards.
package state

import (
	"sort"

	"github.com/nathoo/eldoria/types"
)

// DefaultWeaknesses maps an element to the element it is weak to.
// The relation is directed: fire is weak to ice and ice is weak to fire,
// but wind is weak to lightning while lightning is weak to earth.
var DefaultWeaknesses = map[types.Element]types.Element{
	types.ElementFire:      types.ElementIce,
	types.ElementIce:       types.ElementFire,
	types.ElementLightning: types.ElementEarth,
	types.ElementEarth:     types.ElementWind,
	types.ElementWind:      types.ElementLightning,
	types.ElementLight:     types.ElementDark,
	types.ElementDark:      types.ElementLight,
}

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game       types.GameDef
	Abilities  map[string]types.AbilityDef
	Items      map[string]types.ItemDef
	Statuses   map[string]types.StatusDef
	Enemies    map[string]types.EnemyDef
	Quests     map[string]types.QuestDef
	Weaknesses map[types.Element]types.Element
}

// NewDefs returns empty tables with the default weakness map.
func NewDefs() *Defs {
	w := make(map[types.Element]types.Element, len(DefaultWeaknesses))
	for k, v := range DefaultWeaknesses {
		w[k] = v
	}
	return &Defs{
		Abilities:  map[string]types.AbilityDef{},
		Items:      map[string]types.ItemDef{},
		Statuses:   map[string]types.StatusDef{},
		Enemies:    map[string]types.EnemyDef{},
		Quests:     map[string]types.QuestDef{},
		Weaknesses: w,
	}
}

// Ability returns an ability definition by id.
func (d *Defs) Ability(id string) (types.AbilityDef, bool) {
	a, ok := d.Abilities[id]
	return a, ok
}

// Item returns an item definition by id.
func (d *Defs) Item(id string) (types.ItemDef, bool) {
	it, ok := d.Items[id]
	return it, ok
}

// Status returns a status definition by id.
func (d *Defs) Status(id string) (types.StatusDef, bool) {
	s, ok := d.Statuses[id]
	return s, ok
}

// Enemy returns an enemy template by id.
func (d *Defs) Enemy(id string) (types.EnemyDef, bool) {
	e, ok := d.Enemies[id]
	return e, ok
}

// Quest returns a quest definition by id.
func (d *Defs) Quest(id string) (types.QuestDef, bool) {
	q, ok := d.Quests[id]
	return q, ok
}

// QuestOrder returns quest ids in source (definition) order, ties by id.
func (d *Defs) QuestOrder() []string {
	ids := make([]string, 0, len(d.Quests))
	for id := range d.Quests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		qi, qj := d.Quests[ids[i]], d.Quests[ids[j]]
		if qi.SourceOrder != qj.SourceOrder {
			return qi.SourceOrder < qj.SourceOrder
		}
		return ids[i] < ids[j]
	})
	return ids
}

// WeakTo reports whether an element is weak to the attacking element.
func (d *Defs) WeakTo(defender, attack types.Element) bool {
	if defender == types.ElementNone || attack == types.ElementNone {
		return false
	}
	w := d.Weaknesses
	if w == nil {
		w = DefaultWeaknesses
	}
	return w[defender] == attack
}

// ItemName returns the display name of an item, falling back to its id.
func (d *Defs) ItemName(id string) string {
	if it, ok := d.Items[id]; ok && it.Name != "" {
		return it.Name
	}
	return id
}

// StatusName returns the display name of a status, falling back to its id.
func (d *Defs) StatusName(id string) string {
	if s, ok := d.Statuses[id]; ok && s.Name != "" {
		return s.Name
	}
	return id
}
