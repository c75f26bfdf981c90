package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/combat"
	"github.com/nathoo/eldoria/engine/parser"
	"github.com/nathoo/eldoria/engine/resolve"
	"github.com/nathoo/eldoria/types"
)

// maxEnemies bounds a single encounter.
const maxEnemies = 5

// combatVerbs are the commands allowed during combat.
var combatVerbs = map[string]bool{
	"attack":    true,
	"cast":      true,
	"use":       true,
	"flee":      true,
	"look":      true,
	"status":    true,
	"inventory": true,
	"quests":    true,
	"quest":     true,
	"time":      true,
	"help":      true,
}

// isCombatVerb returns true if the verb is allowed during combat.
func isCombatVerb(verb string) bool {
	return combatVerbs[verb]
}

// selfTargets name the player as the target of an ally action.
var selfTargets = map[string]bool{"me": true, "self": true, "myself": true}

// fight spawns the named enemies and opens a session. Repeated kinds get
// numbered ids and names ("goblin_1", "Goblin 1").
func (g *Game) fight(intent types.Intent) {
	names := parser.SplitList(intent.Object)
	if len(names) == 0 {
		g.say("Fight what?")
		return
	}
	if len(names) > maxEnemies {
		g.say(fmt.Sprintf("You can take on at most %d foes at once.", maxEnemies))
		return
	}

	kinds := make([]string, 0, len(names))
	count := map[string]int{}
	for _, n := range names {
		id, err := resolve.Resolve("enemy", n, resolve.Enemies(g.Defs))
		if err != nil {
			g.say(err.Error())
			return
		}
		kinds = append(kinds, id)
		count[id]++
	}

	g.names = map[string]string{g.Player.ID: g.Player.Name}
	participants := []*actor.Actor{g.Player.Actor}
	seen := map[string]int{}
	for _, kind := range kinds {
		def, _ := g.Defs.Enemy(kind)
		id, name := kind, def.Name
		if count[kind] > 1 {
			seen[kind]++
			id = fmt.Sprintf("%s_%d", kind, seen[kind])
			name = fmt.Sprintf("%s %d", def.Name, seen[kind])
		}
		a := actor.FromEnemy(id, def)
		a.Name = name
		participants = append(participants, a)
		g.names[id] = name
	}

	err := g.Combat.Start(participants, combat.Hooks{Rewards: g, Progress: g.Quests})
	if err != nil {
		g.say(actionError(err))
		return
	}
	g.afterAction()
}

func (g *Game) attack(intent types.Intent) {
	if !g.inBattle() {
		return
	}
	target, ok := g.resolveEnemy(intent.Target)
	if !ok {
		return
	}
	g.submit(combat.Attack{}, target)
}

func (g *Game) cast(intent types.Intent) {
	if !g.inBattle() {
		return
	}
	if intent.Object == "" {
		g.say("Cast what?")
		return
	}
	id, err := resolve.Resolve("ability", intent.Object, resolve.Abilities(g.Player.Abilities, g.Defs))
	if err != nil {
		g.say(err.Error())
		return
	}
	def, _ := g.Defs.Ability(id)

	target := ""
	if !def.Healing && def.Target != types.TargetAlly && !def.Area {
		var ok bool
		if target, ok = g.resolveEnemy(intent.Target); !ok {
			return
		}
	}
	g.submit(combat.UseAbility{ID: id}, target)
}

func (g *Game) use(intent types.Intent) {
	if intent.Object == "" {
		g.say("Use what?")
		return
	}
	id, err := resolve.Resolve("item", intent.Object, resolve.Items(g.Player, g.Defs))
	if err != nil {
		g.say(err.Error())
		return
	}
	if intent.Target != "" && !selfTargets[intent.Target] {
		g.say("You can only use items on yourself.")
		return
	}
	if g.Combat.Active() {
		g.submit(combat.UseItem{ID: id}, "")
		return
	}
	g.useOutsideCombat(id)
}

// useOutsideCombat applies restorative items between fights.
func (g *Game) useOutsideCombat(id string) {
	def, _ := g.Defs.Item(id)
	p := g.Player
	switch def.Kind {
	case types.ItemHeal:
		if p.HP() == p.MaxHP() {
			g.say("You are already at full health.")
			return
		}
		p.Inventory().Remove(id, 1)
		g.say(fmt.Sprintf("You use the %s and recover %d HP.", def.Name, p.Heal(def.Power)))
	case types.ItemMana:
		if p.MP() == p.MaxMP() {
			g.say("Your mana is already full.")
			return
		}
		p.Inventory().Remove(id, 1)
		g.say(fmt.Sprintf("You use the %s and recover %d MP.", def.Name, p.RestoreMP(def.Power)))
	case types.ItemEquipment:
		g.say(fmt.Sprintf("Try equip %s.", strings.ToLower(def.Name)))
	case types.ItemBuff:
		g.say("That only works in battle.")
	default:
		g.say("You can't use that right now.")
	}
}

func (g *Game) flee() {
	if !g.Combat.Active() {
		g.say("There is nothing to flee from.")
		return
	}
	g.submit(combat.Flee{}, "")
}

func (g *Game) inBattle() bool {
	if !g.Combat.Active() {
		g.say("There is nothing to fight here. (fight <enemy>)")
		return false
	}
	return true
}

// resolveEnemy maps a typed name to a living opponent. An empty name lets
// the combat engine pick.
func (g *Game) resolveEnemy(name string) (string, bool) {
	if name == "" {
		return "", true
	}
	var foes []*actor.Actor
	for _, a := range g.Combat.Participants() {
		if a.Team != g.Player.Team {
			foes = append(foes, a)
		}
	}
	id, err := resolve.Resolve("enemy", name, resolve.Combatants(foes))
	if err != nil {
		g.say(err.Error())
		return "", false
	}
	return id, true
}

func (g *Game) submit(act combat.Action, target string) {
	if err := g.Combat.Submit(act, target); err != nil {
		g.say(actionError(err))
		return
	}
	g.afterAction()
}

// afterAction shows where the fight stands once control returns to the
// player. Auto-start quests are evaluated after the fight's progress
// reports, so a quest opened by the fight does not count its kills.
func (g *Game) afterAction() {
	if !g.Combat.Active() {
		// Exp and loot from the fight can open level- or item-gated quests.
		g.Quests.EvaluateAutoStart()
	}
	g.Bus.Drain()
	if g.Combat.Active() {
		g.say(g.battleLine())
	}
}

// actionError turns a combat error into a player-facing sentence.
func actionError(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{combat.ErrIllegalAction, combat.ErrInvalidEncounter} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
		}
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// battleLine is the one-line summary shown after every combat action.
func (g *Game) battleLine() string {
	p := g.Player
	parts := []string{fmt.Sprintf("You: HP %d/%d MP %d/%d", p.HP(), p.MaxHP(), p.MP(), p.MaxMP())}
	for _, a := range g.Combat.Participants() {
		if a.ID == p.ID {
			continue
		}
		if a.IsAlive() {
			parts = append(parts, fmt.Sprintf("%s: %d/%d", a.Name, a.HP(), a.MaxHP()))
		} else {
			parts = append(parts, a.Name+": down")
		}
	}
	if c := g.Combat.Combo(); c > 1 {
		parts = append(parts, fmt.Sprintf("Combo x%d", c))
	}
	return strings.Join(parts, " | ")
}

func (g *Game) describeBattle() {
	order := make([]string, 0, len(g.Combat.TurnOrder()))
	for _, id := range g.Combat.TurnOrder() {
		order = append(order, g.who(id))
	}
	g.say(fmt.Sprintf("Round %d. Turn order: %s.", g.Combat.Round(), strings.Join(order, ", ")))
	for _, a := range g.Combat.Participants() {
		line := fmt.Sprintf("  %s: HP %d/%d MP %d/%d", g.who(a.ID), a.HP(), a.MaxHP(), a.MP(), a.MaxMP())
		if !a.IsAlive() {
			line = fmt.Sprintf("  %s: defeated", g.who(a.ID))
		} else if st := g.statusList(a.ID); st != "" {
			line += " [" + st + "]"
		}
		g.say(line)
	}
	if c := g.Combat.Combo(); c > 0 {
		g.say(fmt.Sprintf("Combo: %d", c))
	}
}

func (g *Game) statusList(id string) string {
	views := g.Combat.Statuses(id)
	parts := make([]string, 0, len(views))
	for _, v := range views {
		parts = append(parts, fmt.Sprintf("%s %d", v.Name, v.Remaining))
	}
	return strings.Join(parts, ", ")
}
