package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// statusLeft describes the player: vitals and the world clock.
func (m Model) statusLeft() string {
	p := m.game.Player
	clk := m.game.Clock
	when := fmt.Sprintf("Day %d %s %s", clk.Day(), clk.String(), clk.TimeOfDay())
	if clk.Paused() {
		when += " (paused)"
	}
	return fmt.Sprintf(" %s Lv%d | HP %d/%d | MP %d/%d | %s",
		p.Name, p.Level(), p.HP(), p.MaxHP(), p.MP(), p.MaxMP(), when)
}

// statusRight shows combat state during a battle, otherwise gold.
func (m Model) statusRight() string {
	g := m.game
	if g.Combat.Active() {
		turn := "-"
		if cur := g.Combat.Current(); cur != nil {
			turn = cur.Name
			if cur.ID == g.Player.ID {
				turn = "you"
			}
		}
		right := fmt.Sprintf("Round %d | Turn: %s", g.Combat.Round(), turn)
		if combo := g.Combat.Combo(); combo > 0 {
			right = fmt.Sprintf("Combo x%d | %s", combo, right)
		}
		return right + fmt.Sprintf(" | T:%d ", g.Turn())
	}
	return fmt.Sprintf("Gold %d | T:%d ", g.Player.Gold, g.Turn())
}

// renderStatusBar produces a full-width inverted status line. The bar turns
// red while a battle is running.
func (m Model) renderStatusBar() string {
	left := m.statusLeft()
	right := m.statusRight()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Drop the clock before overlapping the right side.
		if i := strings.LastIndex(left, " | Day"); i > 0 {
			left = left[:i]
		}
		gap = max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if m.game.Combat.Active() {
		style = styleStatusCombat
	}
	return style.Width(m.width).Render(bar)
}
