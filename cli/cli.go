// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the Eldoria engine.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/eldoria/engine"
	"github.com/nathoo/eldoria/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Game      *engine.Game
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	// Now drives the world clock between commands; nil freezes it, which
	// keeps script playback deterministic.
	Now func() time.Time

	lastCmd  string // for "again"/"g" repeat
	lastTick time.Time
}

// New creates a CLI wired to the given game.
func New(g *engine.Game) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Game:    g,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".eldoria", "saves"),
		Now:     time.Now,
	}
}

// Run starts the game loop. It shows the intro and the opening description,
// then loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	if intro := c.Game.Defs.Game.Intro; intro != "" {
		c.printLine(intro)
		c.printLine("")
	}
	c.printResult(c.Game.Begin())
	if c.Now != nil {
		c.lastTick = c.Now()
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		c.tick()

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Game.Step(input)
		c.printResult(result)
		if c.Trace {
			c.printTrace(result)
		}
	}
}

// tick feeds the wall time spent at the prompt into the world clock.
func (c *CLI) tick() {
	if c.Now == nil {
		return
	}
	now := c.Now()
	elapsed := now.Sub(c.lastTick)
	c.lastTick = now
	if elapsed <= 0 {
		return
	}
	c.printResult(c.Game.Tick(elapsed))
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/pause":
		if c.Game.Clock.Paused() {
			c.Game.Clock.Resume()
			c.printSystem("Time flows again.")
		} else {
			c.Game.Clock.Pause()
			c.printSystem("Time stands still.")
		}

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(c.SaveDir, name+".json")
}

func (c *CLI) cmdSave(name string) {
	data, err := c.Game.Save()
	switch {
	case errors.Is(err, engine.ErrSaveInCombat):
		c.printSystem("You cannot save in the middle of a battle.")
		return
	case errors.Is(err, engine.ErrGameOver):
		c.printSystem("The game is over. Load a save instead.")
		return
	case err != nil:
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := c.savePath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", strings.TrimSuffix(filepath.Base(path), ".json")))
}

func (c *CLI) cmdLoad(name string) {
	path := c.savePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if err := c.Game.Load(data); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).",
		strings.TrimSuffix(filepath.Base(path), ".json"), c.Game.Turn()))

	c.printResult(c.Game.Step("look"))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle event trace output",
		"  /pause        Stop or restart the world clock",
		"  again (g)     Repeat your last command",
		"",
	}
	for _, line := range help {
		c.printLine(line)
	}
	c.printResult(c.Game.Step("help"))
}

func (c *CLI) cmdState() {
	g := c.Game
	p := g.Player
	c.printSystem(fmt.Sprintf("Turn: %d", g.Turn()))
	c.printSystem(fmt.Sprintf("Day %d %s (scale %.0f, paused %t)",
		g.Clock.Day(), g.Clock.String(), g.Clock.TimeScale(), g.Clock.Paused()))
	c.printSystem(fmt.Sprintf("Level %d  HP %d/%d  MP %d/%d  Gold %d  Exp %d/%d",
		p.Level(), p.HP(), p.MaxHP(), p.MP(), p.MaxMP(), p.Gold, p.Exp, p.ExpNext))
	c.printSystem(fmt.Sprintf("Inventory: %v", p.Inventory().Stacks()))
	if rep := p.Reputations(); len(rep) > 0 {
		c.printSystem(fmt.Sprintf("Reputation: %v", rep))
	}
	for _, group := range []struct {
		label string
		ids   []string
	}{
		{"active", g.Quests.ActiveQuests()},
		{"completed", g.Quests.CompletedQuests()},
		{"failed", g.Quests.FailedQuests()},
	} {
		if len(group.ids) > 0 {
			c.printSystem(fmt.Sprintf("Quests %s: %s", group.label, strings.Join(group.ids, ", ")))
		}
	}
	if g.Combat.Active() {
		c.printSystem(fmt.Sprintf("Combat %s: round %d, order %v, combo %d",
			g.Combat.Session(), g.Combat.Round(), g.Combat.TurnOrder(), g.Combat.Combo()))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) == 0 {
		return
	}
	c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
	for _, e := range result.Events {
		line := fmt.Sprintf("[trace]   %s", e.Type)
		if e.Actor != "" {
			line += " actor=" + e.Actor
		}
		if e.Target != "" {
			line += " target=" + e.Target
		}
		if e.Amount != 0 {
			line += fmt.Sprintf(" amount=%d", e.Amount)
		}
		if e.Name != "" {
			line += " name=" + e.Name
		}
		c.printSystem(line)
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
