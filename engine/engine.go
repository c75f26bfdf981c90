// Package engine provides the Game orchestrator that wires together
// parsing, resolution, combat, quests, the clock and reward payouts into a
// single Step per command.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/engine/clock"
	"github.com/nathoo/eldoria/engine/combat"
	"github.com/nathoo/eldoria/engine/effects"
	"github.com/nathoo/eldoria/engine/events"
	"github.com/nathoo/eldoria/engine/parser"
	"github.com/nathoo/eldoria/engine/player"
	"github.com/nathoo/eldoria/engine/quest"
	"github.com/nathoo/eldoria/engine/resolve"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/logger"
	"github.com/nathoo/eldoria/types"
)

// Options tunes a Game. Zero values take each component's defaults.
type Options struct {
	Seed           int64
	TimeScale      float64
	StartHour      int
	StartMinute    int
	ComboWindow    time.Duration
	MaxCombo       int
	MaxRounds      int
	AutoChainLimit int
	Now            func() time.Time
	Logger         logrus.FieldLogger
}

// Game holds the content definitions and every mutable component.
type Game struct {
	Defs   *state.Defs
	RNG    *RNG
	Bus    *events.Bus
	Player *player.Player
	Clock  *clock.Clock
	Quests *quest.Tracker
	Combat *combat.Engine

	opts       Options
	log        logrus.FieldLogger
	turn       int
	gameOver   bool
	commandLog []string

	// names caches display names of everyone met in combat, since defeat
	// narration runs after the session is torn down.
	names map[string]string

	evts []types.Event
	out  []string
}

// New creates a game from definitions.
func New(defs *state.Defs, opts Options) *Game {
	log := logger.OrDiscard(opts.Logger)
	g := &Game{
		Defs:   defs,
		RNG:    NewRNG(opts.Seed),
		Bus:    events.New(),
		Player: player.New(defs.Game.Player),
		opts:   opts,
		log:    log,
		names:  map[string]string{},
	}
	g.Clock = clock.New(clock.Options{
		Bus:         g.Bus,
		Logger:      log,
		Scale:       opts.TimeScale,
		StartHour:   opts.StartHour,
		StartMinute: opts.StartMinute,
	})
	g.Quests = quest.New(defs, quest.Options{
		World:          g.Player,
		Payer:          g,
		Bus:            g.Bus,
		Logger:         log,
		AutoChainLimit: opts.AutoChainLimit,
	})
	g.Combat = g.newCombat()
	g.Bus.Subscribe(g.record)
	return g
}

func (g *Game) newCombat() *combat.Engine {
	return combat.New(g.Defs, g.RNG, g.Bus, combat.Options{
		ComboWindow: g.opts.ComboWindow,
		MaxCombo:    g.opts.MaxCombo,
		MaxRounds:   g.opts.MaxRounds,
		Now:         g.opts.Now,
		Logger:      g.log,
	})
}

// Begin opens the game: auto-start quests kick in and the surroundings are
// described.
func (g *Game) Begin() types.Result {
	g.reset()
	g.Quests.EvaluateAutoStart()
	g.Bus.Drain()
	g.look()
	return g.flush()
}

// GameOver reports whether the player has been defeated.
func (g *Game) GameOver() bool { return g.gameOver }

// Turn returns the number of commands processed.
func (g *Game) Turn() int { return g.turn }

// CommandLog returns every command entered, in order.
func (g *Game) CommandLog() []string { return g.commandLog }

// Step processes one player command and returns the result.
func (g *Game) Step(input string) types.Result {
	g.reset()

	// 0. Game over: block all gameplay commands.
	if g.gameOver {
		g.say("Game over. Use /load to restore a save or /quit to exit.")
		return g.flush()
	}

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Log the command.
	g.commandLog = append(g.commandLog, input)
	g.log.WithFields(logrus.Fields{"turn": g.turn, "input": input}).Debug("step")

	// 3. Empty input.
	if intent.Verb == "" {
		g.say("What do you want to do?")
		return g.flush()
	}

	// 3a. Combat mode restricts commands.
	if g.Combat.Active() && !isCombatVerb(intent.Verb) {
		g.say("You're in the middle of a fight! (attack, cast <ability>, use <item>, flee)")
		return g.flush()
	}

	// 4. Dispatch.
	switch intent.Verb {
	case "fight":
		g.fight(intent)
	case "attack":
		g.attack(intent)
	case "cast":
		g.cast(intent)
	case "use":
		g.use(intent)
	case "flee":
		g.flee()
	case "quests":
		g.questLog()
	case "quest":
		g.questDetail(intent.Object)
	case "accept":
		g.accept(intent.Object)
	case "abandon":
		g.abandon(intent.Object)
	case "time":
		g.timeOfDay()
	case "wait":
		g.wait(intent.Object)
	case "status":
		g.status()
	case "inventory":
		g.inventory()
	case "equip":
		g.equip(intent.Object)
	case "unequip":
		g.unequip(intent.Object)
	case "look":
		g.look()
	case "help":
		g.help()
	default:
		g.say(fmt.Sprintf("I don't know how to %q. Type help for a list of commands.", intent.Verb))
	}

	// 5. Deliver anything still queued.
	g.Bus.Drain()

	// 6. Increment turn count.
	g.turn++

	return g.flush()
}

// Tick advances real time: the clock moves (unless paused) and, outside
// combat, the player regenerates.
func (g *Game) Tick(elapsed time.Duration) types.Result {
	g.reset()
	if g.gameOver || elapsed <= 0 {
		return g.flush()
	}
	if !g.Combat.Active() {
		g.Player.Regenerate(elapsed)
	}
	g.Clock.Advance(elapsed)
	g.Bus.Drain()
	return g.flush()
}

// record is the bus subscriber: it collects every delivered event for the
// current result and narrates it.
func (g *Game) record(ev types.Event) {
	g.evts = append(g.evts, ev)
	if ev.Type == types.EventCombatEnd && ev.Name == string(combat.ResultDefeat) {
		g.gameOver = true
	}
	if line := g.narrate(ev); line != "" {
		g.out = append(g.out, line)
	}
}

func (g *Game) reset() {
	g.evts = nil
	g.out = nil
}

func (g *Game) flush() types.Result {
	res := types.Result{Events: g.evts, Output: g.out}
	g.reset()
	return res
}

func (g *Game) say(lines ...string) {
	g.out = append(g.out, lines...)
}

// AwardCombat pays a combat share to the player.
func (g *Game) AwardCombat(actorID string, exp, gold int) {
	if actorID != g.Player.ID {
		return
	}
	g.pay([]types.Reward{
		{Kind: types.RewardExp, Amount: exp},
		{Kind: types.RewardGold, Amount: gold},
	})
}

// AwardLoot gives a dropped item to the player.
func (g *Game) AwardLoot(actorID, itemID string) {
	if actorID != g.Player.ID {
		return
	}
	g.pay([]types.Reward{{Kind: types.RewardItem, ItemID: itemID, Amount: 1}})
}

// PayQuest credits quest rewards.
func (g *Game) PayQuest(questID string, rewards []types.Reward) {
	g.log.WithField("quest", questID).Debug("paying quest rewards")
	g.pay(rewards)
}

func (g *Game) pay(rewards []types.Reward) {
	for _, ev := range effects.Apply(g.Player, g.Defs, rewards) {
		g.Bus.Emit(ev)
	}
}

func (g *Game) questLog() {
	active := g.Quests.ActiveQuests()
	if len(active) == 0 {
		g.say("You have no active quests.")
	} else {
		g.say("Active quests:")
		for _, id := range active {
			def, _ := g.Defs.Quest(id)
			g.say("  " + def.Title)
			objs, _ := g.Quests.Progress(id)
			for _, o := range objs {
				g.say("    " + formatObjective(o))
			}
		}
	}

	var available []string
	for _, id := range g.Defs.QuestOrder() {
		if g.Quests.Status(id) != quest.Active && g.Quests.Status(id) != quest.Completed && g.Quests.CanStart(id) {
			def, _ := g.Defs.Quest(id)
			available = append(available, def.Title)
		}
	}
	if len(available) > 0 {
		g.say("Available: " + strings.Join(available, ", ") + ".")
	}
	if done := g.Quests.CompletedQuests(); len(done) > 0 {
		g.say(fmt.Sprintf("Completed: %d.", len(done)))
	}
}

func (g *Game) questDetail(name string) {
	id, ok := g.resolveQuest(name)
	if !ok {
		return
	}
	def, _ := g.Defs.Quest(id)
	g.say(fmt.Sprintf("%s [%s, %s]", def.Title, def.Type, strings.ReplaceAll(string(g.Quests.Status(id)), "_", " ")))
	if def.Description != "" {
		g.say(def.Description)
	}
	if def.Level > 1 {
		g.say(fmt.Sprintf("Recommended level: %d", def.Level))
	}
	objs, _ := g.Quests.Progress(id)
	for _, o := range objs {
		g.say("  " + formatObjective(o))
	}
	if len(def.Rewards) > 0 {
		g.say("Rewards: " + g.formatRewards(def.Rewards) + ".")
	}
}

func (g *Game) accept(name string) {
	id, ok := g.resolveQuest(name)
	if !ok {
		return
	}
	def, _ := g.Defs.Quest(id)
	switch g.Quests.Status(id) {
	case quest.Active:
		g.say(fmt.Sprintf("You are already on %q.", def.Title))
		return
	case quest.Completed:
		g.say(fmt.Sprintf("You have already completed %q.", def.Title))
		return
	}
	started, err := g.Quests.StartQuest(id)
	if err != nil {
		g.say(err.Error())
		return
	}
	if !started {
		g.say(fmt.Sprintf("You can't take on %q yet.", def.Title))
	}
}

func (g *Game) abandon(name string) {
	id, ok := g.resolveQuest(name)
	if !ok {
		return
	}
	failed, err := g.Quests.FailQuest(id)
	if err != nil {
		g.say(err.Error())
		return
	}
	if !failed {
		def, _ := g.Defs.Quest(id)
		g.say(fmt.Sprintf("%q is not an active quest.", def.Title))
	}
}

func (g *Game) resolveQuest(name string) (string, bool) {
	if name == "" {
		g.say("Which quest?")
		return "", false
	}
	id, err := resolve.Resolve("quest", name, resolve.Quests(g.Defs))
	if err != nil {
		g.say(err.Error())
		return "", false
	}
	return id, true
}

func (g *Game) timeOfDay() {
	note := ""
	if g.Clock.Paused() {
		note = " Time stands still."
	}
	g.say(fmt.Sprintf("Day %d, %s (%s).%s", g.Clock.Day(), g.Clock.String(), g.Clock.TimeOfDay(), note))
}

const (
	defaultWait = 60
	maxWait     = clock.MinutesPerDay
)

func (g *Game) wait(arg string) {
	minutes := defaultWait
	if arg != "" {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.Fields(arg)[0], "m"))
		if err != nil || n <= 0 {
			g.say("Wait how many minutes?")
			return
		}
		minutes = min(n, maxWait)
	}
	// Resting regenerates as if the game minutes had passed in real time.
	scale := g.Clock.TimeScale()
	if scale <= 0 {
		scale = clock.MinScale
	}
	elapsed := time.Duration(float64(minutes) / scale * float64(time.Second))
	g.Player.Regenerate(elapsed)
	g.Clock.AdvanceMinutes(minutes)
	g.say(fmt.Sprintf("You rest for %d minutes.", minutes))
	g.Bus.Drain()
	g.timeOfDay()
}

func (g *Game) status() {
	p := g.Player
	g.say(fmt.Sprintf("%s, level %d (%d/%d exp)", p.Name, p.Level(), p.Exp, p.ExpNext))
	g.say(fmt.Sprintf("HP %d/%d  MP %d/%d  Gold %d", p.HP(), p.MaxHP(), p.MP(), p.MaxMP(), p.Gold))
	g.say(fmt.Sprintf("ATK %d  DEF %d  MAG %d  SPD %d  AGI %d",
		p.Stat("attack"), p.Stat("defense"), p.Stat("magic"), p.Stat("speed"), p.Stat("agility")))
	var gear []string
	for _, slot := range player.Slots {
		if id := p.Equipped(slot); id != "" {
			gear = append(gear, fmt.Sprintf("%s: %s", slot, g.Defs.ItemName(id)))
		}
	}
	if len(gear) > 0 {
		g.say("Equipped: " + strings.Join(gear, ", ") + ".")
	}
	if len(p.Abilities) > 0 {
		var names []string
		for _, c := range resolve.Abilities(p.Abilities, g.Defs) {
			names = append(names, c.Name)
		}
		g.say("Abilities: " + strings.Join(names, ", ") + ".")
	}
	if g.Combat.Active() {
		if st := g.statusList(p.ID); st != "" {
			g.say("Affected by: " + st + ".")
		}
	}
}

func (g *Game) inventory() {
	stacks := g.Player.Inventory().Stacks()
	if len(stacks) == 0 {
		g.say("You are carrying nothing.")
		return
	}
	names := make([]string, 0, len(stacks))
	for _, s := range stacks {
		name := g.Defs.ItemName(s.ItemID)
		if s.Qty > 1 {
			name = fmt.Sprintf("%s x%d", name, s.Qty)
		}
		names = append(names, name)
	}
	g.say("You are carrying: " + strings.Join(names, ", ") + ".")
}

func (g *Game) equip(name string) {
	if name == "" {
		g.say("Equip what?")
		return
	}
	id, err := resolve.Resolve("item", name, resolve.Items(g.Player, g.Defs))
	if err != nil {
		g.say(err.Error())
		return
	}
	slot, err := g.Player.Equip(g.Defs, id)
	if err != nil {
		g.say(fmt.Sprintf("You can't equip that: %v.", err))
		return
	}
	g.say(fmt.Sprintf("You equip the %s (%s).", g.Defs.ItemName(id), slot))
}

func (g *Game) unequip(name string) {
	if name == "" {
		g.say("Unequip what?")
		return
	}
	slot := ""
	for _, s := range player.Slots {
		if s == name {
			slot = s
		}
	}
	if slot == "" {
		id, err := resolve.Resolve("item", name, resolve.Equipped(g.Player, g.Defs))
		if err != nil {
			g.say(err.Error())
			return
		}
		for _, s := range player.Slots {
			if g.Player.Equipped(s) == id {
				slot = s
				break
			}
		}
	}
	id := g.Player.Unequip(g.Defs, slot)
	if id == "" {
		g.say("Nothing is equipped there.")
		return
	}
	g.say(fmt.Sprintf("You remove the %s.", g.Defs.ItemName(id)))
}

func (g *Game) look() {
	if g.Combat.Active() {
		g.describeBattle()
		return
	}
	g.say(fmt.Sprintf("Day %d, %s. %s", g.Clock.Day(), g.Clock.String(), periodText(g.Clock.TimeOfDay())))
	if len(g.Defs.Enemies) > 0 {
		var names []string
		for _, c := range resolve.Enemies(g.Defs) {
			names = append(names, c.Name)
		}
		g.say("Creatures roam nearby: " + strings.Join(names, ", ") + ". (fight <enemy>)")
	}
	if n := len(g.Quests.ActiveQuests()); n > 0 {
		g.say(fmt.Sprintf("You have %d active quest(s). (quests)", n))
	}
}

func (g *Game) help() {
	g.say(
		"Commands:",
		"  fight <enemy> [and <enemy>...]  start a battle",
		"  attack [target]                 basic attack",
		"  cast <ability> [on <target>]    use an ability",
		"  use <item> [on <target>]        use an item",
		"  flee                            try to escape",
		"  quests, quest <name>            quest log and details",
		"  accept <quest>, abandon <quest>",
		"  equip <item>, unequip <item>",
		"  status, inventory, look, time, wait [minutes]",
	)
}

func periodText(p clock.Period) string {
	switch p {
	case clock.Dawn:
		return "The sky brightens with the dawn."
	case clock.Day:
		return "The sun is high."
	case clock.Dusk:
		return "The light fades to dusk."
	default:
		return "Night has fallen."
	}
}

func formatObjective(o quest.Objective) string {
	mark := "[ ]"
	if o.Completed {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s (%d/%d)", mark, o.Description, o.Current, o.Required)
}

func (g *Game) formatRewards(rewards []types.Reward) string {
	parts := make([]string, 0, len(rewards))
	for _, r := range rewards {
		switch r.Kind {
		case types.RewardGold:
			parts = append(parts, fmt.Sprintf("%d gold", r.Amount))
		case types.RewardExp:
			parts = append(parts, fmt.Sprintf("%d exp", r.Amount))
		case types.RewardItem:
			qty := max(r.Amount, 1)
			if qty > 1 {
				parts = append(parts, fmt.Sprintf("%s x%d", g.Defs.ItemName(r.ItemID), qty))
			} else {
				parts = append(parts, g.Defs.ItemName(r.ItemID))
			}
		case types.RewardReputation:
			parts = append(parts, fmt.Sprintf("%+d %s reputation", r.Amount, r.Faction))
		}
	}
	return strings.Join(parts, ", ")
}
