// Package player holds the persistent player record: the combat actor plus
// level, experience, gold, inventory, reputation and equipment.
package player

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/types"
)

// ID is the actor id of the player in every encounter.
const ID = "player"

// Equipment slots.
const (
	SlotWeapon     = "weapon"
	SlotArmor      = "armor"
	SlotAccessory1 = "accessory1"
	SlotAccessory2 = "accessory2"
)

// Slots lists the equipment slots in display order.
var Slots = []string{SlotWeapon, SlotArmor, SlotAccessory1, SlotAccessory2}

const firstExpNext = 100

var (
	ErrNotOwned     = errors.New("item not owned")
	ErrNotEquipment = errors.New("item cannot be equipped")
)

// Player is the persistent character. The embedded actor carries hp/mp and
// combat stats between encounters.
type Player struct {
	*actor.Actor

	Exp     int
	ExpNext int
	Gold    int

	inv       *Inventory
	rep       map[string]int
	equipment map[string]string

	regenHP float64
	regenMP float64
}

// New creates the starting character from content.
func New(def types.PlayerDef) *Player {
	name := def.Name
	if name == "" {
		name = "Hero"
	}
	a := actor.New(ID, name, types.TeamPlayer, def.Stats)
	a.Controlled = true
	a.Element = def.Element
	a.Abilities = append([]string(nil), def.Abilities...)

	p := &Player{
		Actor:     a,
		ExpNext:   firstExpNext,
		inv:       &Inventory{},
		rep:       map[string]int{},
		equipment: map[string]string{},
	}
	a.Bag = p.inv
	for _, id := range sortedKeys(def.Items) {
		p.inv.Add(id, def.Items[id])
	}
	return p
}

// Inventory returns the player's bag.
func (p *Player) Inventory() *Inventory { return p.inv }

// ItemCount returns how many of an item the player holds.
func (p *Player) ItemCount(itemID string) int { return p.inv.Count(itemID) }

// Reputation returns standing with a faction.
func (p *Player) Reputation(faction string) int { return p.rep[faction] }

// Reputations returns a copy of every faction standing.
func (p *Player) Reputations() map[string]int { return maps.Clone(p.rep) }

// AddReputation shifts standing with a faction and returns the new value.
func (p *Player) AddReputation(faction string, delta int) int {
	p.rep[faction] += delta
	return p.rep[faction]
}

// AddGold credits gold; the purse never goes negative.
func (p *Player) AddGold(n int) {
	p.Gold = max(0, p.Gold+n)
}

// Level returns the character level.
func (p *Player) Level() int { return p.Actor.Level }

// GainExp adds experience and applies every level up it pays for.
// It returns the number of levels gained.
func (p *Player) GainExp(n int) int {
	if n <= 0 {
		return 0
	}
	p.Exp += n
	levels := 0
	for p.ExpNext > 0 && p.Exp >= p.ExpNext {
		p.levelUp()
		levels++
	}
	return levels
}

// levelUp raises the level, grows every stat and refills hp and mp.
func (p *Player) levelUp() {
	p.Actor.Level++
	p.Exp -= p.ExpNext
	p.ExpNext = p.ExpNext * 3 / 2

	p.SetMaxHP(p.MaxHP() + 10)
	p.SetMaxMP(p.MaxMP() + 5)
	p.AddBase(actor.Attack, 2)
	p.AddBase(actor.Defense, 1)
	p.AddBase(actor.Magic, 2)
	p.AddBase(actor.Speed, 1)
	p.Restore()
}

// Equipped returns the item id in a slot, or "".
func (p *Player) Equipped(slot string) string { return p.equipment[slot] }

// Equip moves an owned equipment item into its slot. An item already in
// that slot goes back to the inventory. Accessories take the first free
// accessory slot. It returns the slot used.
func (p *Player) Equip(defs *state.Defs, itemID string) (string, error) {
	if p.inv.Count(itemID) < 1 {
		return "", fmt.Errorf("%w: %s", ErrNotOwned, defs.ItemName(itemID))
	}
	def, ok := defs.Item(itemID)
	if !ok || def.Kind != types.ItemEquipment {
		return "", fmt.Errorf("%w: %s", ErrNotEquipment, defs.ItemName(itemID))
	}

	slot := def.Slot
	switch slot {
	case SlotWeapon, SlotArmor, SlotAccessory1, SlotAccessory2:
	case "accessory":
		slot = SlotAccessory1
		if p.equipment[SlotAccessory1] != "" && p.equipment[SlotAccessory2] == "" {
			slot = SlotAccessory2
		}
	default:
		return "", fmt.Errorf("%w: %s has no slot", ErrNotEquipment, def.Name)
	}

	p.inv.Remove(itemID, 1)
	if prev := p.equipment[slot]; prev != "" {
		p.inv.Add(prev, 1)
	}
	p.equipment[slot] = itemID
	p.refreshEquipment(defs)
	return slot, nil
}

// Unequip returns a slot's item to the inventory. It returns the item id,
// or "" if the slot was empty.
func (p *Player) Unequip(defs *state.Defs, slot string) string {
	id := p.equipment[slot]
	if id == "" {
		return ""
	}
	delete(p.equipment, slot)
	p.inv.Add(id, 1)
	p.refreshEquipment(defs)
	return id
}

func (p *Player) refreshEquipment(defs *state.Defs) {
	bonuses := map[actor.Stat]int{}
	for _, slot := range Slots {
		def, ok := defs.Item(p.equipment[slot])
		if !ok {
			continue
		}
		for stat, v := range def.Bonuses {
			bonuses[actor.Stat(stat)] += v
		}
	}
	p.SetEquipment(bonuses)
}

// Regenerate restores 1 hp and 0.5 mp per second of elapsed time. Callers
// skip it during combat.
func (p *Player) Regenerate(elapsed time.Duration) {
	if elapsed <= 0 || !p.IsAlive() {
		return
	}
	p.regenHP += elapsed.Seconds()
	p.regenMP += elapsed.Seconds() * 0.5
	if whole := int(p.regenHP); whole > 0 {
		p.Heal(whole)
		p.regenHP -= float64(whole)
	}
	if whole := int(p.regenMP); whole > 0 {
		p.RestoreMP(whole)
		p.regenMP -= float64(whole)
	}
}
