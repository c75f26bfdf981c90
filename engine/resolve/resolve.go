// Package resolve maps names typed by the player to combatant, item,
// ability and quest ids.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/eldoria/engine/actor"
	"github.com/nathoo/eldoria/engine/player"
	"github.com/nathoo/eldoria/engine/state"
)

// Candidate is one thing a name can resolve to.
type Candidate struct {
	ID   string
	Name string
}

// AmbiguityError indicates multiple candidates matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no candidate matched a name.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "anything"
	}
	return fmt.Sprintf("there is no %s called %q", kind, e.Name)
}

// Resolve maps a name to a single candidate id. An exact id or display name
// match wins outright; otherwise a query matching one word of a name, or an
// id after replacing spaces with underscores, counts as a match.
func Resolve(kind, name string, cands []Candidate) (string, error) {
	nameLower := strings.ToLower(strings.TrimSpace(name))

	// 1. Exact id or exact name.
	for _, c := range cands {
		if strings.ToLower(c.ID) == nameLower || strings.ToLower(c.Name) == nameLower {
			return c.ID, nil
		}
	}

	// 2. Partial matches.
	var matches []string
	for _, c := range cands {
		if matchesName(c, nameLower) && !slices.Contains(matches, c.ID) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks a candidate against a lower-cased query.
// e.g. "goblin" matches "Goblin 2", "iron sword" matches id "iron_sword".
func matchesName(c Candidate, nameLower string) bool {
	for _, word := range strings.Fields(strings.ToLower(c.Name)) {
		if word == nameLower {
			return true
		}
	}
	idLower := strings.ToLower(c.ID)
	if strings.ReplaceAll(nameLower, " ", "_") == idLower {
		return true
	}
	return strings.HasPrefix(strings.ToLower(c.Name), nameLower+" ")
}

// Combatants lists the living actors as candidates.
func Combatants(actors []*actor.Actor) []Candidate {
	var out []Candidate
	for _, a := range actors {
		if a.IsAlive() {
			out = append(out, Candidate{ID: a.ID, Name: a.Name})
		}
	}
	return out
}

// Items lists the player's inventory as candidates.
func Items(p *player.Player, defs *state.Defs) []Candidate {
	var out []Candidate
	for _, s := range p.Inventory().Stacks() {
		out = append(out, Candidate{ID: s.ItemID, Name: defs.ItemName(s.ItemID)})
	}
	return out
}

// Equipped lists the player's equipped items as candidates.
func Equipped(p *player.Player, defs *state.Defs) []Candidate {
	var out []Candidate
	for _, slot := range player.Slots {
		if id := p.Equipped(slot); id != "" {
			out = append(out, Candidate{ID: id, Name: defs.ItemName(id)})
		}
	}
	return out
}

// Abilities lists known abilities as candidates.
func Abilities(ids []string, defs *state.Defs) []Candidate {
	var out []Candidate
	for _, id := range ids {
		name := id
		if def, ok := defs.Ability(id); ok && def.Name != "" {
			name = def.Name
		}
		out = append(out, Candidate{ID: id, Name: name})
	}
	return out
}

// Quests lists every quest in source order as candidates.
func Quests(defs *state.Defs) []Candidate {
	var out []Candidate
	for _, id := range defs.QuestOrder() {
		def, _ := defs.Quest(id)
		out = append(out, Candidate{ID: id, Name: def.Title})
	}
	return out
}

// Enemies lists every enemy template as candidates, sorted by id.
func Enemies(defs *state.Defs) []Candidate {
	out := make([]Candidate, 0, len(defs.Enemies))
	for id, def := range defs.Enemies {
		out = append(out, Candidate{ID: id, Name: def.Name})
	}
	slices.SortFunc(out, func(a, b Candidate) int { return strings.Compare(a.ID, b.ID) })
	return out
}
