package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusCombat = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("230")).
				Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("209"))

	styleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("202")).
			Bold(true)

	styleRestore = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	styleReward = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	styleQuest = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDamage
	kindCritical
	kindRestore
	kindReward
	kindQuest
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "There is no"),
		strings.HasPrefix(line, "Which "),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You can only"),
		strings.HasPrefix(line, "You don't"),
		strings.HasPrefix(line, "You have fallen"),
		strings.HasPrefix(line, "Game over"),
		strings.HasPrefix(line, "I don't know"):
		return kindError
	case strings.HasPrefix(line, "New quest:"),
		strings.HasPrefix(line, "Quest "):
		return kindQuest
	case strings.HasPrefix(line, "Victory!"),
		strings.HasPrefix(line, "You receive"),
		strings.HasPrefix(line, "You gain"),
		strings.HasPrefix(line, "You obtain"),
		strings.HasPrefix(line, "You reached level"):
		return kindReward
	case strings.Contains(line, "Critical hit!"),
		strings.Contains(line, "super effective"):
		return kindCritical
	case strings.Contains(line, " damage"):
		return kindDamage
	case strings.Contains(line, " recover"),
		strings.Contains(line, "restoring"):
		return kindRestore
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDamage:
		return styleDamage.Render(line)
	case kindCritical:
		return styleCritical.Render(line)
	case kindRestore:
		return styleRestore.Render(line)
	case kindReward:
		return styleReward.Render(line)
	case kindQuest:
		return styleQuest.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledPlayerInput renders the echoed player input in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
