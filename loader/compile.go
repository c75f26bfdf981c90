// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading; nothing Lua runs during play.
package loader

import (
	"fmt"

	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a curried definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getStringOr returns a string field, or def when missing or empty.
func getStringOr(tbl *lua.LTable, key, def string) string {
	if s := getString(tbl, key); s != "" {
		return s
	}
	return def
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntOr returns an int field, or def when the field is absent.
func getIntOr(tbl *lua.LTable, key string, def int) int {
	if _, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return getInt(tbl, key)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// stringList reads the array part of a table as strings, skipping
// non-string entries.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableList reads the array part of a table as tables.
func tableList(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// intMap reads string keys with numeric values.
func intMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		if n, ok := v.(lua.LNumber); ok {
			m[string(ks)] = int(n)
		}
	})
	return m
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}

	defs := state.NewDefs()
	defs.Game = compileGame(coll.game)

	for _, tbl := range coll.elements {
		tbl.ForEach(func(k, v lua.LValue) {
			ks, kok := k.(lua.LString)
			vs, vok := v.(lua.LString)
			if kok && vok {
				defs.Weaknesses[types.Element(ks)] = types.Element(vs)
			}
		})
	}

	for _, raw := range coll.statuses {
		defs.Statuses[raw.id] = compileStatus(raw)
	}
	for _, raw := range coll.abilities {
		defs.Abilities[raw.id] = compileAbility(raw)
	}
	for _, raw := range coll.items {
		defs.Items[raw.id] = compileItem(raw)
	}
	for _, raw := range coll.enemies {
		defs.Enemies[raw.id] = compileEnemy(raw)
	}
	for _, raw := range coll.quests {
		defs.Quests[raw.id] = compileQuest(raw)
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Intro:   getString(tbl, "intro"),
	}
	if p := getTable(tbl, "player"); p != nil {
		g.Player = types.PlayerDef{
			Name:      getString(p, "name"),
			Stats:     compileStats(p),
			Element:   types.Element(getString(p, "element")),
			Abilities: stringList(getTable(p, "abilities")),
			Items:     intMap(getTable(p, "items")),
		}
	}
	return g
}

// compileStats reads the flat stat fields shared by the player and enemies.
func compileStats(tbl *lua.LTable) types.StatBlock {
	return types.StatBlock{
		HP:      getInt(tbl, "hp"),
		MP:      getInt(tbl, "mp"),
		Attack:  getInt(tbl, "attack"),
		Defense: getInt(tbl, "defense"),
		Magic:   getInt(tbl, "magic"),
		Speed:   getInt(tbl, "speed"),
		Agility: getInt(tbl, "agility"),
		Crit:    getNumber(tbl, "crit"),
	}
}

func compileStatus(raw rawDef) types.StatusDef {
	tbl := raw.table
	return types.StatusDef{
		ID:       raw.id,
		Name:     getStringOr(tbl, "name", raw.id),
		Category: types.StatusCategory(getString(tbl, "category")),
		Power:    getInt(tbl, "power"),
		Percent:  getNumber(tbl, "percent"),
		Duration: getInt(tbl, "duration"),
		Stat:     getString(tbl, "stat"),
		Mult:     getNumber(tbl, "multiplier"),
		Add:      getInt(tbl, "add"),
	}
}

func compileEffects(tbl *lua.LTable) []types.EffectRef {
	var out []types.EffectRef
	for _, e := range tableList(tbl) {
		out = append(out, types.EffectRef{
			Status:   getString(e, "status"),
			Power:    getInt(e, "power"),
			Duration: getInt(e, "duration"),
		})
	}
	return out
}

func compileAbility(raw rawDef) types.AbilityDef {
	tbl := raw.table
	return types.AbilityDef{
		ID:          raw.id,
		Name:        getStringOr(tbl, "name", raw.id),
		Description: getString(tbl, "description"),
		Kind:        types.AbilityKind(getStringOr(tbl, "kind", string(types.AbilityPhysical))),
		Element:     types.Element(getString(tbl, "element")),
		Power:       getInt(tbl, "power"),
		MPCost:      getInt(tbl, "mp_cost"),
		Level:       getIntOr(tbl, "level", 1),
		Target:      types.TargetKind(getStringOr(tbl, "target", string(types.TargetEnemy))),
		Healing:     getBool(tbl, "healing", false),
		Hits:        getInt(tbl, "hits"),
		Area:        getBool(tbl, "area", false),
		Requires:    getString(tbl, "requires"),
		Effects:     compileEffects(getTable(tbl, "effects")),
	}
}

func compileItem(raw rawDef) types.ItemDef {
	tbl := raw.table
	return types.ItemDef{
		ID:          raw.id,
		Name:        getStringOr(tbl, "name", raw.id),
		Description: getString(tbl, "description"),
		Kind:        types.ItemKind(getStringOr(tbl, "kind", string(types.ItemMisc))),
		Power:       getInt(tbl, "power"),
		Slot:        getString(tbl, "slot"),
		Bonuses:     intMap(getTable(tbl, "bonuses")),
		Effects:     compileEffects(getTable(tbl, "effects")),
		Value:       getInt(tbl, "value"),
	}
}

func compileEnemy(raw rawDef) types.EnemyDef {
	tbl := raw.table
	e := types.EnemyDef{
		ID:        raw.id,
		Name:      getStringOr(tbl, "name", raw.id),
		Level:     getIntOr(tbl, "level", 1),
		Stats:     compileStats(tbl),
		Element:   types.Element(getString(tbl, "element")),
		Abilities: stringList(getTable(tbl, "abilities")),
		Exp:       getInt(tbl, "exp"),
		Gold:      getInt(tbl, "gold"),
	}
	for _, w := range stringList(getTable(tbl, "weaknesses")) {
		e.Weaknesses = append(e.Weaknesses, types.Element(w))
	}
	for _, d := range tableList(getTable(tbl, "loot")) {
		e.Loot = append(e.Loot, types.LootEntry{
			ItemID: getString(d, "item"),
			Chance: getInt(d, "chance"),
		})
	}
	return e
}

func compileQuest(raw rawDef) types.QuestDef {
	tbl := raw.table
	q := types.QuestDef{
		ID:          raw.id,
		Title:       getStringOr(tbl, "title", raw.id),
		Description: getString(tbl, "description"),
		Type:        types.QuestType(getStringOr(tbl, "type", string(types.QuestSide))),
		Level:       getIntOr(tbl, "level", 1),
		AutoStart:   getBool(tbl, "auto_start", false),
		SourceOrder: raw.order,
	}
	for _, p := range tableList(getTable(tbl, "prerequisites")) {
		q.Prerequisites = append(q.Prerequisites, types.Prerequisite{
			Kind:    types.PrereqKind(getString(p, "type")),
			QuestID: getString(p, "quest"),
			Level:   getInt(p, "level"),
			ItemID:  getString(p, "item"),
			Faction: getString(p, "faction"),
			Amount:  getInt(p, "amount"),
		})
	}
	for _, o := range tableList(getTable(tbl, "objectives")) {
		q.Objectives = append(q.Objectives, types.ObjectiveDef{
			Description: getString(o, "description"),
			Required:    getInt(o, "required"),
			Trigger:     getString(o, "trigger"),
		})
	}
	for _, r := range tableList(getTable(tbl, "rewards")) {
		q.Rewards = append(q.Rewards, types.Reward{
			Kind:    types.RewardKind(getString(r, "type")),
			Amount:  getInt(r, "amount"),
			ItemID:  getString(r, "item"),
			Faction: getString(r, "faction"),
		})
	}
	return q
}
