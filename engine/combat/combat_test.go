package combat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/events"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/types"
)

// --- fakes ---

type fixedRNG struct {
	f    float64
	roll int
}

func (r *fixedRNG) Float64() float64 { return r.f }
func (r *fixedRNG) Roll(int) int     { return r.roll }

type bag map[string]int

func (b bag) Count(id string) int { return b[id] }
func (b bag) Remove(id string, qty int) bool {
	if b[id] < qty {
		return false
	}
	b[id] -= qty
	return true
}

type rewardLog struct {
	combat []string
	loot   []string
}

func (r *rewardLog) AwardCombat(id string, exp, gold int) {
	r.combat = append(r.combat, fmt.Sprintf("%s:%d:%d", id, exp, gold))
}

func (r *rewardLog) AwardLoot(id, item string) {
	r.loot = append(r.loot, id+":"+item)
}

type progressLog []string

func (p *progressLog) Report(ev string) { *p = append(*p, ev) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// --- fixtures ---

func testDefs() *state.Defs {
	d := state.NewDefs()
	d.Statuses["poison"] = types.StatusDef{ID: "poison", Name: "Poisoned", Category: types.CategoryDamageOverTime, Power: 5, Duration: 2}
	d.Statuses["slow"] = types.StatusDef{ID: "slow", Name: "Slowed", Category: types.CategoryStatModifier, Stat: "speed", Mult: 0.5, Duration: 3}
	d.Statuses["stun"] = types.StatusDef{ID: "stun", Name: "Stunned", Category: types.CategoryCrowdControl, Duration: 1}

	d.Abilities["fireball"] = types.AbilityDef{ID: "fireball", Name: "Fireball", Kind: types.AbilityMagic, Element: types.ElementFire, Power: 40, MPCost: 20, Target: types.TargetEnemy}
	d.Abilities["heal"] = types.AbilityDef{ID: "heal", Name: "Heal", Kind: types.AbilityMagic, Element: types.ElementLight, Power: 40, MPCost: 25, Healing: true, Target: types.TargetAlly}
	d.Abilities["multishot"] = types.AbilityDef{ID: "multishot", Name: "Multishot", Kind: types.AbilityPhysical, Power: 20, MPCost: 25, Hits: 3, Target: types.TargetEnemy}
	d.Abilities["whirlwind"] = types.AbilityDef{ID: "whirlwind", Name: "Whirlwind", Kind: types.AbilityPhysical, Power: 45, MPCost: 25, Area: true, Target: types.TargetEnemy}
	d.Abilities["poison_arrow"] = types.AbilityDef{ID: "poison_arrow", Name: "Poison Arrow", Kind: types.AbilityPhysical, Power: 25, MPCost: 20, Target: types.TargetEnemy,
		Effects: []types.EffectRef{{Status: "poison", Power: 10, Duration: 4}}}
	d.Abilities["shield_bash"] = types.AbilityDef{ID: "shield_bash", Name: "Shield Bash", Kind: types.AbilityPhysical, Power: 20, MPCost: 15, Target: types.TargetEnemy,
		Effects: []types.EffectRef{{Status: "stun", Duration: 2}}}
	d.Abilities["dragon_rage"] = types.AbilityDef{ID: "dragon_rage", Name: "Dragon Rage", Kind: types.AbilitySpecial, Element: types.ElementFire, Power: 100, MPCost: 50, Level: 15, Requires: "dragon_scale", Target: types.TargetEnemy}

	d.Items["basic_potion"] = types.ItemDef{ID: "basic_potion", Name: "Basic Potion", Kind: types.ItemHeal, Power: 50}
	d.Items["ether"] = types.ItemDef{ID: "ether", Name: "Ether", Kind: types.ItemMana, Power: 30}
	d.Items["iron_sword"] = types.ItemDef{ID: "iron_sword", Name: "Iron Sword", Kind: types.ItemEquipment, Slot: "weapon"}
	d.Items["dragon_scale"] = types.ItemDef{ID: "dragon_scale", Name: "Dragon Scale", Kind: types.ItemQuest}
	return d
}

func newHero() *actor.Actor {
	h := actor.New("hero", "Hero", types.TeamPlayer, types.StatBlock{
		HP: 100, MP: 50, Attack: 100, Magic: 100, Speed: 20,
	})
	h.Controlled = true
	h.Abilities = []string{"fireball", "heal", "multishot", "whirlwind", "poison_arrow", "shield_bash", "dragon_rage"}
	h.Bag = bag{"basic_potion": 2, "iron_sword": 1}
	return h
}

func newGoblin(id string, hp int) *actor.Actor {
	g := actor.FromEnemy(id, types.EnemyDef{
		ID:    "goblin",
		Name:  "Goblin",
		Stats: types.StatBlock{HP: hp, MP: 50, Attack: 5, Speed: 5},
		Exp:   20,
		Gold:  5,
		Loot:  []types.LootEntry{{ItemID: "basic_potion", Chance: 30}},
	})
	return g
}

type harness struct {
	e        *Engine
	bus      *events.Bus
	rng      *fixedRNG
	clock    *fakeClock
	rewards  *rewardLog
	progress *progressLog
	evts     []types.Event
}

func newHarness(opts Options) *harness {
	h := &harness{
		bus:      events.New(),
		rng:      &fixedRNG{f: 0.5, roll: 1},
		clock:    &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		rewards:  &rewardLog{},
		progress: &progressLog{},
	}
	h.bus.Subscribe(func(ev types.Event) { h.evts = append(h.evts, ev) })
	opts.Now = h.clock.now
	h.e = New(testDefs(), h.rng, h.bus, opts)
	return h
}

func (h *harness) hooks() Hooks {
	return Hooks{Rewards: h.rewards, Progress: h.progress}
}

func (h *harness) events(kinds ...types.EventType) []types.Event {
	h.bus.Drain()
	return events.Filter(h.evts, kinds...)
}

// --- start ---

func TestStart_RejectsSingleTeam(t *testing.T) {
	h := newHarness(Options{})
	err := h.e.Start([]*actor.Actor{newGoblin("g1", 10), newGoblin("g2", 10)}, h.hooks())
	require.ErrorIs(t, err, ErrInvalidEncounter)
	assert.False(t, h.e.Active())
}

func TestStart_RejectsTooFewOrDeadTeams(t *testing.T) {
	h := newHarness(Options{})
	require.ErrorIs(t, h.e.Start([]*actor.Actor{newHero()}, h.hooks()), ErrInvalidEncounter)

	dead := newGoblin("g1", 10)
	dead.Damage(10)
	require.ErrorIs(t, h.e.Start([]*actor.Actor{newHero(), dead}, h.hooks()), ErrInvalidEncounter)

	require.ErrorIs(t, h.e.Start([]*actor.Actor{newHero(), newHero()}, h.hooks()), ErrInvalidEncounter, "duplicate ids")
	assert.False(t, h.e.Active())
}

func TestStart_TwiceIsIllegal(t *testing.T) {
	h := newHarness(Options{})
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), newGoblin("g1", 1000)}, h.hooks()))
	err := h.e.Start([]*actor.Actor{newHero(), newGoblin("g2", 1000)}, h.hooks())
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestStart_WaitsForControlledActor(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 1000)}, h.hooks()))

	assert.True(t, h.e.Active())
	assert.NotEmpty(t, h.e.Session())
	assert.Equal(t, PhaseAwaitingAction, h.e.Phase())
	assert.Same(t, hero, h.e.Current())
	assert.Equal(t, 1, h.e.Round())
	assert.Len(t, h.events(types.EventCombatStart), 1)
}

// --- turn order ---

func TestTurnOrder_SpeedDescendingStable(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g1 := newGoblin("g1", 1000)
	g2 := newGoblin("g2", 1000)
	wolf := actor.New("wolf", "Wolf", types.TeamEnemy, types.StatBlock{HP: 1000, Attack: 5, Speed: 30})

	require.NoError(t, h.e.Start([]*actor.Actor{hero, g1, g2, wolf}, h.hooks()))
	assert.Equal(t, []string{"wolf", "hero", "g1", "g2"}, h.e.TurnOrder())
	assert.Same(t, hero, h.e.Current(), "the wolf already acted")
	assert.Equal(t, 95, hero.HP())
}

func TestTurnOrder_FixedDespiteSpeedChanges(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g1 := newGoblin("g1", 1000)
	wolf := actor.New("wolf", "Wolf", types.TeamEnemy, types.StatBlock{HP: 1000, Attack: 5, Speed: 30})
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g1, wolf}, h.hooks()))
	before := h.e.TurnOrder()

	g1.AddModifier(actor.Modifier{Stat: actor.Speed, Add: 500})
	hero.AddModifier(actor.Modifier{Stat: actor.Speed, Mult: 0.1})
	require.NoError(t, h.e.Submit(Attack{}, "g1"))
	require.NoError(t, h.e.Submit(Attack{}, "g1"))

	assert.Equal(t, before, h.e.TurnOrder())
	assert.Same(t, hero, h.e.Current())
	assert.Equal(t, 3, h.e.Round())
}

// --- submit ---

func TestSubmit_IllegalActionsLeaveStateUnchanged(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	hero.SetVitals(100, 10)
	hero.Level = 20
	g := newGoblin("g1", 1000)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))

	tests := []struct {
		name   string
		act    Action
		target string
	}{
		{"not enough mp", UseAbility{ID: "fireball"}, "g1"},
		{"unknown ability", UseAbility{ID: "meteor"}, "g1"},
		{"missing required item", UseAbility{ID: "dragon_rage"}, "g1"},
		{"attack an ally", Attack{}, "hero"},
		{"attack nobody", Attack{}, "dragon"},
		{"item not owned", UseItem{ID: "ether"}, ""},
		{"item not usable", UseItem{ID: "iron_sword"}, ""},
		{"item on an enemy", UseItem{ID: "basic_potion"}, "g1"},
		{"nil action", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.e.Submit(tt.act, tt.target)
			require.ErrorIs(t, err, ErrIllegalAction)

			assert.Equal(t, PhaseAwaitingAction, h.e.Phase())
			assert.Same(t, hero, h.e.Current())
			assert.Equal(t, 100, hero.HP())
			assert.Equal(t, 10, hero.MP())
			assert.Equal(t, 1000, g.HP())
			assert.Equal(t, 2, hero.Bag.Count("basic_potion"))
			assert.Zero(t, h.e.Combo())
			assert.Equal(t, 1, h.e.Round())
		})
	}
	assert.Len(t, h.events(types.EventActionFailed), len(tests))
}

func TestSubmit_LevelRequirement(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	hero.Bag.(bag)["dragon_scale"] = 1
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 1000)}, h.hooks()))

	assert.ErrorIs(t, h.e.Submit(UseAbility{ID: "dragon_rage"}, "g1"), ErrIllegalAction)

	hero.Level = 15
	assert.NoError(t, h.e.Submit(UseAbility{ID: "dragon_rage"}, "g1"))
	assert.Equal(t, 0, hero.MP())
}

func TestSubmit_WithoutSession(t *testing.T) {
	h := newHarness(Options{})
	assert.ErrorIs(t, h.e.Submit(Attack{}, ""), ErrNotActive)
	assert.ErrorIs(t, h.e.Abort(), ErrNotActive)
}

func TestAttack_VictoryPaysRewardsAndProgress(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g := newGoblin("g1", 50)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))

	require.NoError(t, h.e.Submit(Attack{}, ""))

	assert.False(t, h.e.Active())
	assert.False(t, g.IsAlive())
	out, ok := h.e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, types.TeamPlayer, out.Winner)
	assert.Equal(t, 20, out.ExpShare)
	assert.Equal(t, 5, out.GoldShare)
	assert.Equal(t, []string{"goblin"}, out.Defeated)

	assert.Equal(t, []string{"hero:20:5"}, h.rewards.combat)
	assert.Equal(t, []string{"hero:basic_potion"}, h.rewards.loot)
	assert.Equal(t, progressLog{"defeated:goblin"}, *h.progress)

	dmg := h.events(types.EventDamage)
	require.Len(t, dmg, 1)
	assert.Equal(t, 50, dmg[0].Amount, "damage reported as applied")
	assert.Len(t, h.events(types.EventDefeated), 1)
	end := h.events(types.EventCombatEnd)
	require.Len(t, end, 1)
	assert.Equal(t, "victory", end[0].Name)
	assert.Len(t, h.events(types.EventLootDropped), 1)
}

func TestVictory_SplitsOverSurvivorsPaysOnlyControlled(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	ally := actor.New("ally", "Squire", types.TeamPlayer, types.StatBlock{HP: 100, Attack: 50, Speed: 15})
	g1 := newGoblin("g1", 1)
	g2 := newGoblin("g2", 1)
	g1.SetBase(actor.Speed, 1)
	g2.SetBase(actor.Speed, 1)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, ally, g1, g2}, h.hooks()))

	require.NoError(t, h.e.Submit(Attack{}, "g1"))

	out, ok := h.e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, 40, out.Exp)
	assert.Equal(t, 20, out.ExpShare)
	assert.Equal(t, 5, out.GoldShare)
	assert.Equal(t, []string{"hero"}, out.Paid)
	assert.Equal(t, []string{"hero:20:5"}, h.rewards.combat)
	assert.Equal(t, []string{"hero:basic_potion", "hero:basic_potion"}, h.rewards.loot)
	assert.Equal(t, progressLog{"defeated:goblin", "defeated:goblin"}, *h.progress)
}

func TestVictory_ThirdTeamStandingDoesNotTakeTheWin(t *testing.T) {
	h := newHarness(Options{})
	wolf := actor.New("wolf", "Wolf", "beast", types.StatBlock{HP: 30, Attack: 5, Speed: 1})
	hero := newHero()
	g := newGoblin("g1", 1)
	require.NoError(t, h.e.Start([]*actor.Actor{wolf, hero, g}, h.hooks()))

	require.NoError(t, h.e.Submit(Attack{}, "g1"))

	out, ok := h.e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, ResultVictory, out.Result)
	assert.Equal(t, types.TeamPlayer, out.Winner)
	assert.Equal(t, []string{"goblin"}, out.Defeated)
	assert.Equal(t, []string{"hero"}, out.Paid)
	assert.Equal(t, []string{"hero:20:5"}, h.rewards.combat)
	assert.Equal(t, progressLog{"defeated:goblin"}, *h.progress)
	assert.True(t, wolf.IsAlive())
}

func TestLoot_FailedRollDropsNothing(t *testing.T) {
	h := newHarness(Options{})
	h.rng.roll = 31
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), newGoblin("g1", 1)}, h.hooks()))
	require.NoError(t, h.e.Submit(Attack{}, ""))

	out, _ := h.e.LastOutcome()
	assert.Empty(t, out.Loot)
	assert.Empty(t, h.rewards.loot)
}

func TestDefeat_NoRewards(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	hero.SetBase(actor.Speed, 1)
	ogre := actor.New("ogre", "Ogre", types.TeamEnemy, types.StatBlock{HP: 500, Attack: 500, Speed: 10})

	require.NoError(t, h.e.Start([]*actor.Actor{hero, ogre}, h.hooks()))

	assert.False(t, h.e.Active())
	assert.False(t, hero.IsAlive())
	out, ok := h.e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, ResultDefeat, out.Result)
	assert.Equal(t, types.TeamEnemy, out.Winner)
	assert.Empty(t, h.rewards.combat)
	assert.Empty(t, *h.progress)
}

func TestAbility_WeaknessDoublesDamage(t *testing.T) {
	cast := func(weak bool) int {
		h := newHarness(Options{})
		g := newGoblin("g1", 1000)
		if weak {
			g.Weaknesses = []types.Element{types.ElementFire}
		}
		require.NoError(t, h.e.Start([]*actor.Actor{newHero(), g}, h.hooks()))
		require.NoError(t, h.e.Submit(UseAbility{ID: "fireball"}, "g1"))
		for _, ev := range h.events(types.EventDamage) {
			if ev.Name == "Fireball" {
				return ev.Amount
			}
		}
		t.Fatal("no fireball damage")
		return 0
	}

	neutral := cast(false)
	assert.Equal(t, 40, neutral)
	assert.Equal(t, 2*neutral, cast(true))
}

func TestAbility_ElementMapCountsAsWeakness(t *testing.T) {
	h := newHarness(Options{})
	g := newGoblin("g1", 1000)
	g.Element = types.ElementIce
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), g}, h.hooks()))
	require.NoError(t, h.e.Submit(UseAbility{ID: "fireball"}, "g1"))
	assert.Equal(t, 920, g.HP())
}

func TestAbility_MultiHitAndArea(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g1 := newGoblin("g1", 1000)
	g2 := newGoblin("g2", 1000)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g1, g2}, h.hooks()))

	require.NoError(t, h.e.Submit(UseAbility{ID: "multishot"}, "g2"))
	hits := 0
	for _, ev := range h.events(types.EventDamage) {
		if ev.Name == "Multishot" {
			hits++
			assert.Equal(t, "g2", ev.Target)
		}
	}
	assert.Equal(t, 3, hits)
	assert.Equal(t, 1000, g1.HP())
	assert.Equal(t, 25, hero.MP())

	h.clock.advance(10 * time.Second)
	require.NoError(t, h.e.Submit(UseAbility{ID: "whirlwind"}, ""))
	assert.Less(t, g1.HP(), 1000)
	assert.Less(t, g2.HP(), 1000)
	assert.Zero(t, hero.MP())
}

func TestAbility_HealTargetsAllyAndClamps(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	hero.SetVitals(80, 50)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 1000)}, h.hooks()))

	require.NoError(t, h.e.Submit(UseAbility{ID: "heal"}, ""))

	heals := h.events(types.EventHeal)
	require.Len(t, heals, 1)
	assert.Equal(t, 20, heals[0].Amount, "clamped at max hp")
	assert.Equal(t, 95, hero.HP(), "then hit by the goblin")
}

func TestAbility_DamageOverTimeTicksOnTargetTurn(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g := newGoblin("g1", 1000)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))

	require.NoError(t, h.e.Submit(UseAbility{ID: "poison_arrow"}, "g1"))

	assert.Equal(t, 1000-25-10, g.HP())
	views := h.e.Statuses("g1")
	require.Len(t, views, 1)
	assert.Equal(t, "Poisoned", views[0].Name)
	assert.Equal(t, 3, views[0].Remaining)
	assert.Empty(t, h.e.Statuses("hero"))
	assert.Len(t, h.events(types.EventStatusApplied), 1)
}

func TestAbility_StunSkipsTurns(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g := newGoblin("g1", 1000)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))

	require.NoError(t, h.e.Submit(UseAbility{ID: "shield_bash"}, "g1"))
	assert.Equal(t, 100, hero.HP(), "stunned goblin skipped its turn")
	assert.False(t, g.CanAct())

	// The stun expires at the start of the goblin's next turn, which it
	// then gets to use.
	require.NoError(t, h.e.Submit(Attack{}, "g1"))
	assert.True(t, g.CanAct())
	assert.Equal(t, 95, hero.HP())
	assert.Len(t, h.events(types.EventStatusExpired), 1)
}

func TestItem_ConsumedFromBag(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	hero.SetVitals(40, 50)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 1000)}, h.hooks()))

	require.NoError(t, h.e.Submit(UseItem{ID: "basic_potion"}, ""))

	assert.Equal(t, 1, hero.Bag.Count("basic_potion"))
	heals := h.events(types.EventHeal)
	require.Len(t, heals, 1)
	assert.Equal(t, 50, heals[0].Amount)
	assert.Equal(t, 85, hero.HP())
}

// --- flee / abort / end ---

func TestFlee_HighAgilityAlwaysEscapes(t *testing.T) {
	h := newHarness(Options{})
	h.rng.f = 0.999
	hero := newHero()
	hero.SetBase(actor.Agility, 50)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 1000)}, h.hooks()))

	require.NoError(t, h.e.Submit(Flee{}, ""))

	assert.False(t, h.e.Active())
	out, _ := h.e.LastOutcome()
	assert.Equal(t, ResultFled, out.Result)
	assert.Empty(t, h.rewards.combat)
	assert.Empty(t, *h.progress)
}

func TestFlee_FailureCostsTheTurn(t *testing.T) {
	h := newHarness(Options{})
	h.rng.f = 0.9
	hero := newHero()
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 1000)}, h.hooks()))

	require.NoError(t, h.e.Submit(Flee{}, ""))

	assert.True(t, h.e.Active())
	assert.Equal(t, PhaseAwaitingAction, h.e.Phase())
	assert.Equal(t, 95, hero.HP())
	assert.Len(t, h.events(types.EventFleeFailed), 1)
}

func TestAbort_EndsAsFled(t *testing.T) {
	h := newHarness(Options{})
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), newGoblin("g1", 1000)}, h.hooks()))

	require.NoError(t, h.e.Abort())
	assert.False(t, h.e.Active())
	out, ok := h.e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, ResultFled, out.Result)
}

func TestEnd_IdempotentAndRevertsStatuses(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g := newGoblin("g1", 1000)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))
	require.NoError(t, h.e.Submit(UseAbility{ID: "shield_bash"}, "g1"))
	require.False(t, g.CanAct())
	require.NotZero(t, h.e.Combo())

	h.e.End()
	assert.False(t, h.e.Active())
	assert.Equal(t, PhaseIdle, h.e.Phase())
	assert.Nil(t, h.e.Current())
	assert.Nil(t, h.e.Statuses("g1"))
	assert.Nil(t, h.e.Participants())
	assert.Zero(t, h.e.Combo())
	assert.True(t, g.CanAct())
	assert.Zero(t, g.ModifierCount())

	h.e.End()
	assert.False(t, h.e.Active())
	assert.True(t, g.CanAct())
	_, ok := h.e.LastOutcome()
	assert.False(t, ok)
}

// --- combo ---

func TestCombo_CountsHitsAndResetsAfterIdle(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	require.NoError(t, h.e.Start([]*actor.Actor{hero, newGoblin("g1", 100000)}, h.hooks()))

	require.NoError(t, h.e.Submit(Attack{}, ""))
	assert.Equal(t, 2, h.e.Combo(), "hero hit plus goblin hit")

	h.clock.advance(2 * time.Second)
	assert.Equal(t, 2, h.e.Combo())

	h.clock.advance(time.Second)
	assert.Zero(t, h.e.Combo())
}

func TestCombo_ScalesAbilityDamage(t *testing.T) {
	h := newHarness(Options{})
	g := newGoblin("g1", 100000)
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), g}, h.hooks()))

	require.NoError(t, h.e.Submit(Attack{}, ""))
	before := g.HP()
	require.NoError(t, h.e.Submit(UseAbility{ID: "fireball"}, ""))
	assert.Equal(t, 48, before-g.HP())
}

func TestCombo_Capped(t *testing.T) {
	h := newHarness(Options{MaxCombo: 10})
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), newGoblin("g1", 100000)}, h.hooks()))

	for i := 0; i < 8; i++ {
		require.NoError(t, h.e.Submit(Attack{}, ""))
	}
	assert.Equal(t, 10, h.e.Combo())
}

// --- ai ---

func TestAI_PrefersAffordableHighestValue(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g := newGoblin("g1", 100)
	g.Abilities = []string{"fireball"}
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))

	act, target := h.e.decide(g)
	assert.Equal(t, UseAbility{ID: "fireball"}, act)
	assert.Equal(t, "hero", target)

	g.SetVitals(100, 0)
	act, target = h.e.decide(g)
	assert.Equal(t, Attack{}, act)
	assert.Equal(t, "hero", target)
}

func TestAI_HealsWhenHurt(t *testing.T) {
	h := newHarness(Options{})
	g := newGoblin("g1", 100)
	g.Abilities = []string{"heal"}
	require.NoError(t, h.e.Start([]*actor.Actor{newHero(), g}, h.hooks()))

	act, _ := h.e.decide(g)
	assert.Equal(t, Attack{}, act, "healing at full hp is worth less than a hit")

	g.SetVitals(10, 50)
	act, target := h.e.decide(g)
	assert.Equal(t, UseAbility{ID: "heal"}, act)
	assert.Equal(t, "g1", target)
}

func TestAI_TargetsLowestHP(t *testing.T) {
	h := newHarness(Options{})
	a := newHero()
	b := actor.New("mage", "Mage", types.TeamPlayer, types.StatBlock{HP: 100, Speed: 25})
	b.Controlled = true
	b.SetVitals(30, 0)
	g := newGoblin("g1", 100)
	require.NoError(t, h.e.Start([]*actor.Actor{a, b, g}, h.hooks()))

	_, target := h.e.decide(g)
	assert.Equal(t, "mage", target)
}

// --- termination ---

func TestStalemate_AIOnlySessionsTerminate(t *testing.T) {
	h := newHarness(Options{MaxRounds: 5})
	a := actor.New("knight", "Knight", types.TeamPlayer, types.StatBlock{HP: 1000, Attack: 1, Speed: 2})
	b := actor.New("troll", "Troll", types.TeamEnemy, types.StatBlock{HP: 1000, Attack: 1, Speed: 1})

	require.NoError(t, h.e.Start([]*actor.Actor{a, b}, h.hooks()))

	assert.False(t, h.e.Active())
	out, ok := h.e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, ResultStalemate, out.Result)
	assert.Equal(t, 5, out.Rounds)
	assert.Equal(t, 995, a.HP())
	assert.Equal(t, 995, b.HP())
}

func TestHPNeverLeavesRange(t *testing.T) {
	h := newHarness(Options{})
	hero := newHero()
	g := newGoblin("g1", 3000)
	require.NoError(t, h.e.Start([]*actor.Actor{hero, g}, h.hooks()))

	for h.e.Active() {
		require.NoError(t, h.e.Submit(UseAbility{ID: "multishot"}, ""))
		if hero.MP() < 25 {
			break
		}
	}
	for _, a := range []*actor.Actor{hero, g} {
		assert.GreaterOrEqual(t, a.HP(), 0)
		assert.LessOrEqual(t, a.HP(), a.MaxHP())
		assert.GreaterOrEqual(t, a.MP(), 0)
		assert.LessOrEqual(t, a.MP(), a.MaxMP())
	}
}
