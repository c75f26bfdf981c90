package loader

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/player"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validElements = map[types.Element]bool{
	types.ElementNone:      true,
	types.ElementFire:      true,
	types.ElementIce:       true,
	types.ElementLightning: true,
	types.ElementEarth:     true,
	types.ElementWind:      true,
	types.ElementLight:     true,
	types.ElementDark:      true,
}

var validCategories = map[types.StatusCategory]bool{
	types.CategoryDamageOverTime: true,
	types.CategoryHealOverTime:   true,
	types.CategoryStatModifier:   true,
	types.CategoryCrowdControl:   true,
}

var validAbilityKinds = map[types.AbilityKind]bool{
	types.AbilityPhysical: true,
	types.AbilityMagic:    true,
	types.AbilitySpecial:  true,
}

var validTargets = map[types.TargetKind]bool{
	types.TargetEnemy: true,
	types.TargetAlly:  true,
}

var validItemKinds = map[types.ItemKind]bool{
	types.ItemHeal:      true,
	types.ItemMana:      true,
	types.ItemBuff:      true,
	types.ItemEquipment: true,
	types.ItemQuest:     true,
	types.ItemMisc:      true,
}

var validQuestTypes = map[types.QuestType]bool{
	types.QuestMain:  true,
	types.QuestSide:  true,
	types.QuestDaily: true,
}

func validStat(name string) bool {
	return slices.Contains(actor.Stats, actor.Stat(name))
}

func validSlot(slot string) bool {
	return slot == "accessory" || slices.Contains(player.Slots, slot)
}

// validate checks the compiled defs for referential integrity and
// consistency. Problems found while collecting (duplicate ids) are passed in
// and reported first.
func validate(defs *state.Defs, problems ...string) *ValidationError {
	ve := &ValidationError{Errors: append([]string(nil), problems...)}

	if defs.Game.Title == "" {
		ve.errorf("Game.title is required")
	}
	validatePlayer(defs, ve)

	for _, k := range sortedElementKeys(defs.Weaknesses) {
		if !validElements[k] || k == types.ElementNone {
			ve.errorf("weakness map uses unknown element %q", k)
		}
		if v := defs.Weaknesses[k]; !validElements[v] || v == types.ElementNone {
			ve.errorf("element %q is weak to unknown element %q", k, v)
		}
	}

	for _, id := range sortedKeys(defs.Statuses) {
		validateStatus(defs.Statuses[id], ve)
	}
	for _, id := range sortedKeys(defs.Abilities) {
		validateAbility(defs.Abilities[id], defs, ve)
	}
	for _, id := range sortedKeys(defs.Items) {
		validateItem(defs.Items[id], defs, ve)
	}
	for _, id := range sortedKeys(defs.Enemies) {
		validateEnemy(defs.Enemies[id], defs, ve)
	}
	for _, id := range sortedKeys(defs.Quests) {
		validateQuest(defs.Quests[id], defs, ve)
	}
	return ve
}

func validatePlayer(defs *state.Defs, ve *ValidationError) {
	p := defs.Game.Player
	if p.Stats.HP < 1 {
		ve.errorf("player hp must be at least 1")
	}
	if p.Stats.Crit < 0 || p.Stats.Crit > 1 {
		ve.errorf("player crit %v must be between 0 and 1", p.Stats.Crit)
	}
	if !validElements[p.Element] {
		ve.errorf("player has unknown element %q", p.Element)
	}
	for _, id := range p.Abilities {
		if _, ok := defs.Abilities[id]; !ok {
			ve.errorf("player ability %q is not defined", id)
		}
	}
	for _, id := range sortedKeys(p.Items) {
		if _, ok := defs.Items[id]; !ok {
			ve.errorf("player item %q is not defined", id)
		} else if p.Items[id] < 1 {
			ve.errorf("player item %q quantity must be at least 1", id)
		}
	}
}

func validateStatus(s types.StatusDef, ve *ValidationError) {
	if !validCategories[s.Category] {
		ve.errorf("status %q has unknown category %q", s.ID, s.Category)
	}
	if s.Duration < 1 {
		ve.errorf("status %q duration must be at least 1", s.ID)
	}
	switch s.Category {
	case types.CategoryStatModifier:
		if !validStat(s.Stat) {
			ve.errorf("status %q modifies unknown stat %q", s.ID, s.Stat)
		}
		if s.Mult == 0 && s.Add == 0 {
			ve.warnf("status %q changes nothing", s.ID)
		}
	case types.CategoryDamageOverTime, types.CategoryHealOverTime:
		if s.Power <= 0 && s.Percent <= 0 {
			ve.warnf("status %q has no per-turn magnitude", s.ID)
		}
	}
}

func validateEffects(owner string, effects []types.EffectRef, defs *state.Defs, ve *ValidationError) {
	for _, e := range effects {
		if _, ok := defs.Statuses[e.Status]; !ok {
			ve.errorf("%s inflicts undefined status %q", owner, e.Status)
		}
		if e.Duration < 0 {
			ve.errorf("%s inflicts %q with negative duration", owner, e.Status)
		}
	}
}

func validateAbility(a types.AbilityDef, defs *state.Defs, ve *ValidationError) {
	owner := fmt.Sprintf("ability %q", a.ID)
	if !validAbilityKinds[a.Kind] {
		ve.errorf("%s has unknown kind %q", owner, a.Kind)
	}
	if !validElements[a.Element] {
		ve.errorf("%s has unknown element %q", owner, a.Element)
	}
	if !validTargets[a.Target] {
		ve.errorf("%s has unknown target %q", owner, a.Target)
	}
	if a.MPCost < 0 {
		ve.errorf("%s mp_cost must not be negative", owner)
	}
	if a.Hits < 0 {
		ve.errorf("%s hits must not be negative", owner)
	}
	if a.Requires != "" {
		if _, ok := defs.Items[a.Requires]; !ok {
			ve.errorf("%s requires undefined item %q", owner, a.Requires)
		}
	}
	validateEffects(owner, a.Effects, defs, ve)
	if a.Power == 0 && len(a.Effects) == 0 {
		ve.warnf("%s has no power and no effects", owner)
	}
}

func validateItem(it types.ItemDef, defs *state.Defs, ve *ValidationError) {
	owner := fmt.Sprintf("item %q", it.ID)
	if !validItemKinds[it.Kind] {
		ve.errorf("%s has unknown kind %q", owner, it.Kind)
	}
	switch it.Kind {
	case types.ItemEquipment:
		if !validSlot(it.Slot) {
			ve.errorf("%s has unknown slot %q", owner, it.Slot)
		}
	case types.ItemHeal, types.ItemMana:
		if it.Power <= 0 {
			ve.errorf("%s power must be positive", owner)
		}
	case types.ItemBuff:
		if len(it.Effects) == 0 {
			ve.errorf("%s is a buff with no effects", owner)
		}
	}
	for _, stat := range sortedKeys(it.Bonuses) {
		if !validStat(stat) {
			ve.errorf("%s has a bonus to unknown stat %q", owner, stat)
		}
	}
	validateEffects(owner, it.Effects, defs, ve)
}

func validateEnemy(e types.EnemyDef, defs *state.Defs, ve *ValidationError) {
	owner := fmt.Sprintf("enemy %q", e.ID)
	if e.Stats.HP < 1 {
		ve.errorf("%s hp must be at least 1", owner)
	}
	if e.Stats.Crit < 0 || e.Stats.Crit > 1 {
		ve.errorf("%s crit %v must be between 0 and 1", owner, e.Stats.Crit)
	}
	if !validElements[e.Element] {
		ve.errorf("%s has unknown element %q", owner, e.Element)
	}
	for _, w := range e.Weaknesses {
		if !validElements[w] || w == types.ElementNone {
			ve.errorf("%s has unknown weakness %q", owner, w)
		}
	}
	for _, id := range e.Abilities {
		if _, ok := defs.Abilities[id]; !ok {
			ve.errorf("%s uses undefined ability %q", owner, id)
		}
	}
	for _, l := range e.Loot {
		if _, ok := defs.Items[l.ItemID]; !ok {
			ve.errorf("%s drops undefined item %q", owner, l.ItemID)
		}
		if l.Chance < 1 || l.Chance > 100 {
			ve.errorf("%s drop %q chance %d must be between 1 and 100", owner, l.ItemID, l.Chance)
		}
	}
}

func validateQuest(q types.QuestDef, defs *state.Defs, ve *ValidationError) {
	owner := fmt.Sprintf("quest %q", q.ID)
	if !validQuestTypes[q.Type] {
		ve.errorf("%s has unknown type %q", owner, q.Type)
	}
	if q.Level < 0 {
		ve.errorf("%s level must not be negative", owner)
	}

	for _, p := range q.Prerequisites {
		switch p.Kind {
		case types.PrereqQuest:
			if p.QuestID == q.ID {
				ve.errorf("%s requires itself", owner)
			} else if _, ok := defs.Quests[p.QuestID]; !ok {
				ve.errorf("%s requires undefined quest %q", owner, p.QuestID)
			}
		case types.PrereqItem:
			if _, ok := defs.Items[p.ItemID]; !ok {
				ve.errorf("%s requires undefined item %q", owner, p.ItemID)
			}
		case types.PrereqLevel:
			if p.Level < 1 {
				ve.errorf("%s level prerequisite must be at least 1", owner)
			}
		case types.PrereqReputation:
			if p.Faction == "" {
				ve.errorf("%s reputation prerequisite has no faction", owner)
			}
		default:
			ve.errorf("%s has unknown prerequisite %q", owner, p.Kind)
		}
	}

	if len(q.Objectives) == 0 {
		ve.errorf("%s has no objectives", owner)
	}
	for i, o := range q.Objectives {
		if o.Description == "" {
			ve.errorf("%s objective %d has no description", owner, i+1)
		}
		if o.Required < 1 {
			ve.errorf("%s objective %d required must be at least 1", owner, i+1)
		}
		if o.Trigger == "" {
			ve.warnf("%s objective %d has no trigger", owner, i+1)
		}
	}

	for _, r := range q.Rewards {
		switch r.Kind {
		case types.RewardGold, types.RewardExp:
		case types.RewardItem:
			if _, ok := defs.Items[r.ItemID]; !ok {
				ve.errorf("%s rewards undefined item %q", owner, r.ItemID)
			}
			if r.Amount < 1 {
				ve.errorf("%s item reward %q quantity must be at least 1", owner, r.ItemID)
			}
		case types.RewardReputation:
			if r.Faction == "" {
				ve.errorf("%s reputation reward has no faction", owner)
			}
		default:
			ve.errorf("%s has unknown reward %q", owner, r.Kind)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedElementKeys(m map[types.Element]types.Element) []types.Element {
	keys := make([]types.Element, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
