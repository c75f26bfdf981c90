// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/eldoria/types"
)

var verbAliases = map[string]string{
	// Look
	"l":       "look",
	"examine": "look",
	"x":       "look",
	"scan":    "look",

	// Combat
	"a":       "attack",
	"hit":     "attack",
	"strike":  "attack",
	"slash":   "attack",
	"kill":    "attack",
	"engage":  "fight",
	"battle":  "fight",
	"c":       "cast",
	"spell":   "cast",
	"run":     "flee",
	"escape":  "flee",
	"retreat": "flee",

	// Items
	"drink":  "use",
	"quaff":  "use",
	"eat":    "use",
	"wield":  "equip",
	"wear":   "equip",
	"don":    "equip",
	"remove": "unequip",
	"doff":   "unequip",
	"inv":    "inventory",
	"i":      "inventory",

	// Quests
	"journal": "quests",
	"log":     "quests",
	"j":       "quests",
	"start":   "accept",
	"take":    "accept",
	"begin":   "accept",
	"drop":    "abandon",
	"quit":    "abandon",

	// Time
	"clock": "time",
	"t":     "time",
	"z":     "wait",
	"rest":  "wait",
	"sleep": "wait",

	// Character
	"stats": "status",
	"st":    "status",
	"char":  "status",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "against": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)
	if len(words) == 0 {
		return types.Intent{}
	}

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := words[1:]

	// Strip articles ("the", "a", "an").
	rest = stripArticles(rest)

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	// "attack goblin" names the target directly.
	if verb == "attack" && target == "" {
		object, target = "", object
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "look at", "run away", "take off" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" {
			return append([]string{"look"}, words[2:]...)
		}
	case "run", "get":
		if words[1] == "away" {
			return append([]string{"flee"}, words[2:]...)
		}
	case "take":
		if words[1] == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "put":
		if words[1] == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
	case "give":
		if words[1] == "up" {
			return append([]string{"abandon"}, words[2:]...)
		}
	case "quest":
		if words[1] == "log" || words[1] == "list" {
			return append([]string{"quests"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}

// SplitList splits an enumeration like "goblin, wolf and goblin" into
// its names, in order.
func SplitList(s string) []string {
	s = strings.ReplaceAll(s, ",", " and ")
	var out []string
	var cur []string
	for _, w := range strings.Fields(s) {
		if w == "and" || w == "&" {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, w)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}
