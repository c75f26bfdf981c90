package combat

import (
	"math"

	"github.com/nathoo/eldoria/types"
)

// Plain attacks and abilities deliberately use different formulas. Merging
// them would change balance; keep both.

// PhysicalMultiplier is the soft elemental modifier used by plain attacks:
// 1.5 when the defender's element is weak to the attacker's, 0.5 when the
// attacker's element is weak to the defender's, 1 otherwise.
func PhysicalMultiplier(weak map[types.Element]types.Element, attack, defender types.Element) float64 {
	if attack == types.ElementNone || defender == types.ElementNone {
		return 1
	}
	if weak[defender] == attack {
		return 1.5
	}
	if weak[attack] == defender {
		return 0.5
	}
	return 1
}

// ResolvePhysicalAttack computes plain attack damage:
// max(1, attack-defense) scaled by the elemental multiplier, rounded and
// floored at 1, doubled on a critical hit.
func ResolvePhysicalAttack(attack, defense int, multiplier float64, crit bool) int {
	base := attack - defense
	if base < 1 {
		base = 1
	}
	dmg := int(math.Round(float64(base) * multiplier))
	if dmg < 1 {
		dmg = 1
	}
	if crit {
		dmg *= 2
	}
	return dmg
}

// AbilityRoll holds the inputs of one ability damage instance.
type AbilityRoll struct {
	Power   int
	Attack  int
	Defense int
	Weak    bool    // defender is weak to the ability's element
	Spread  float64 // uniform draw in [0,1), mapped to a 0.9..1.1 factor
	Combo   int
}

// ResolveAbilityDamage computes ability damage:
// power × attack/100 × 100/(100+defense) × spread × (1 + combo×0.1),
// rounded and floored at 1, then doubled when the defender is weak.
// The weakness factor is applied to the rounded value so a weak hit is
// exactly twice the neutral hit for the same draw.
func ResolveAbilityDamage(r AbilityRoll) int {
	v := float64(r.Power) *
		(float64(r.Attack) / 100) *
		(100 / (100 + float64(r.Defense))) *
		(0.9 + r.Spread*0.2) *
		(1 + float64(r.Combo)*0.1)
	dmg := int(math.Round(v))
	if dmg < 1 {
		dmg = 1
	}
	if r.Weak {
		dmg *= 2
	}
	return dmg
}

// ResolveHealing computes power × magic/100 × spread, rounded. Clamping to
// max hp happens when the heal is applied to the actor.
func ResolveHealing(power, magic int, spread float64) int {
	v := float64(power) * (float64(magic) / 100) * (0.9 + spread*0.2)
	heal := int(math.Round(v))
	if heal < 0 {
		return 0
	}
	return heal
}

// FleeChance is 0.5 + agility/100 clamped to [0,1].
func FleeChance(agility int) float64 {
	p := 0.5 + float64(agility)/100
	return math.Max(0, math.Min(1, p))
}
