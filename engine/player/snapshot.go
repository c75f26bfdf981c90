package player

import (
	"maps"
	"slices"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/state"
)

// State is the persisted form of a player.
type State struct {
	Name       string            `json:"name"`
	Level      int               `json:"level"`
	Exp        int               `json:"exp"`
	ExpNext    int               `json:"exp_next"`
	Gold       int               `json:"gold"`
	HP         int               `json:"hp"`
	MaxHP      int               `json:"max_hp"`
	MP         int               `json:"mp"`
	MaxMP      int               `json:"max_mp"`
	Stats      map[string]int    `json:"stats"`
	Abilities  []string          `json:"abilities,omitempty"`
	Inventory  []Stack           `json:"inventory,omitempty"`
	Equipment  map[string]string `json:"equipment,omitempty"`
	Reputation map[string]int    `json:"reputation,omitempty"`
}

// Snapshot captures the player for a save file. Base stats are stored
// without equipment bonuses or temporary modifiers.
func (p *Player) Snapshot() State {
	stats := make(map[string]int, len(actor.Stats))
	for _, s := range actor.Stats {
		stats[string(s)] = p.Base(s)
	}
	return State{
		Name:       p.Name,
		Level:      p.Actor.Level,
		Exp:        p.Exp,
		ExpNext:    p.ExpNext,
		Gold:       p.Gold,
		HP:         p.HP(),
		MaxHP:      p.MaxHP(),
		MP:         p.MP(),
		MaxMP:      p.MaxMP(),
		Stats:      stats,
		Abilities:  slices.Clone(p.Abilities),
		Inventory:  p.inv.Stacks(),
		Equipment:  maps.Clone(p.equipment),
		Reputation: maps.Clone(p.rep),
	}
}

// Load overwrites the player with a saved state. Equipment that no
// longer exists in content is dropped.
func (p *Player) Load(defs *state.Defs, st State) {
	if st.Name != "" {
		p.Name = st.Name
	}
	p.Actor.Level = max(1, st.Level)
	p.Exp = max(0, st.Exp)
	p.ExpNext = st.ExpNext
	if p.ExpNext <= 0 {
		p.ExpNext = firstExpNext
	}
	p.Gold = max(0, st.Gold)
	for _, s := range actor.Stats {
		if v, ok := st.Stats[string(s)]; ok {
			p.SetBase(s, v)
		}
	}
	if st.Abilities != nil {
		p.Abilities = slices.Clone(st.Abilities)
	}

	p.inv = &Inventory{}
	for _, s := range st.Inventory {
		p.inv.Add(s.ItemID, s.Qty)
	}
	p.Bag = p.inv

	p.equipment = map[string]string{}
	for slot, id := range st.Equipment {
		if _, ok := defs.Item(id); ok {
			p.equipment[slot] = id
		}
	}
	p.refreshEquipment(defs)

	p.rep = map[string]int{}
	maps.Copy(p.rep, st.Reputation)

	p.SetMaxHP(st.MaxHP)
	p.SetMaxMP(st.MaxMP)
	p.SetVitals(st.HP, st.MP)
	p.regenHP, p.regenMP = 0, 0
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
