package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerPrerequisiteHelpers(L)
	registerRewardHelpers(L)
	registerEffectHelpers(L)
}

// curried returns a constructor of the form Kind "id" { ... } that appends
// the id and table to *dst.
func curried(L *lua.LState, coll *collector, kind string, dst *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.claim(kind, id)
			*dst = append(*dst, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", player = { ... } }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if coll.game != nil {
			coll.problems = append(coll.problems, "Game{} defined more than once")
		}
		coll.game = tbl
		return 0
	}))

	// Elements { fire = "ice", ... } overrides entries of the weakness map.
	L.SetGlobal("Elements", L.NewFunction(func(L *lua.LState) int {
		coll.elements = append(coll.elements, L.CheckTable(1))
		return 0
	}))

	L.SetGlobal("Status", curried(L, coll, "status", &coll.statuses))
	L.SetGlobal("Ability", curried(L, coll, "ability", &coll.abilities))
	L.SetGlobal("Item", curried(L, coll, "item", &coll.items))
	L.SetGlobal("Enemy", curried(L, coll, "enemy", &coll.enemies))
	L.SetGlobal("Quest", curried(L, coll, "quest", &coll.quests))
}

func registerPrerequisiteHelpers(L *lua.LState) {
	// QuestDone("quest_id")
	L.SetGlobal("QuestDone", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("quest"))
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// MinLevel(n)
	L.SetGlobal("MinLevel", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("level"))
		tbl.RawSetString("level", L.CheckNumber(1))
		L.Push(tbl)
		return 1
	}))

	// HasItem("item_id")
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("item"))
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// MinReputation("faction", n)
	L.SetGlobal("MinReputation", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("reputation"))
		tbl.RawSetString("faction", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Objective("description", required, "trigger")
	L.SetGlobal("Objective", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("description", lua.LString(L.CheckString(1)))
		tbl.RawSetString("required", L.OptNumber(2, 1))
		tbl.RawSetString("trigger", lua.LString(L.OptString(3, "")))
		L.Push(tbl)
		return 1
	}))
}

func registerRewardHelpers(L *lua.LState) {
	amount := func(kind string) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(kind))
			tbl.RawSetString("amount", L.CheckNumber(1))
			L.Push(tbl)
			return 1
		})
	}

	// Gold(n), Exp(n)
	L.SetGlobal("Gold", amount("gold"))
	L.SetGlobal("Exp", amount("exp"))

	// GiveItem("item_id", qty)
	L.SetGlobal("GiveItem", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("item"))
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.OptNumber(2, 1))
		L.Push(tbl)
		return 1
	}))

	// Reputation("faction", n)
	L.SetGlobal("Reputation", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("reputation"))
		tbl.RawSetString("faction", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Inflict("status_id", power, duration); power and duration of 0 fall
	// back to the status definition.
	L.SetGlobal("Inflict", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("status", lua.LString(L.CheckString(1)))
		tbl.RawSetString("power", L.OptNumber(2, 0))
		tbl.RawSetString("duration", L.OptNumber(3, 0))
		L.Push(tbl)
		return 1
	}))

	// Drop("item_id", chance)
	L.SetGlobal("Drop", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("item", lua.LString(L.CheckString(1)))
		tbl.RawSetString("chance", L.OptNumber(2, 100))
		L.Push(tbl)
		return 1
	}))
}
