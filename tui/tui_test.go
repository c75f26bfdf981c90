package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/eldoria/engine"
	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[Game saved to test.]", kindSystem},
		{"[trace] Events: 2", kindTrace},
		{`There is no enemy called "bob".`, kindError},
		{"Which wolf? (Wolf 1, Wolf 2)", kindError},
		{"You can't use that right now.", kindError},
		{"You have fallen. Game over. Use /load to restore a save or /quit to exit.", kindError},
		{"New quest: First Steps", kindQuest},
		{"Quest progress: Defeat slimes (2/5)", kindQuest},
		{"Quest complete: First Steps!", kindQuest},
		{"Victory!", kindReward},
		{"You receive 50 gold.", kindReward},
		{"You gain 20 experience.", kindReward},
		{"You reached level 2!", kindReward},
		{"You hit Wolf for 12 damage. Critical hit!", kindCritical},
		{"You use Fireball on Slime for 30 damage. It's super effective!", kindCritical},
		{"Wolf hits you for 7 damage.", kindDamage},
		{"You use Heal and recover 40 HP.", kindRestore},
		{"The sun is high.", kindNarration},
		{"", kindNarration},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyLine(tt.line), "classifyLine(%q)", tt.line)
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The wolf lunges at you from the shadows of the trees.", 30,
			"The wolf lunges at you from\nthe shadows of the trees."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wordWrap(tt.text, tt.width), "wordWrap(%q, %d)", tt.text, tt.width)
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("fight wolf")
	h.Push("attack")

	for _, want := range []string{"attack", "fight wolf", "look", "look"} {
		prev, ok := h.Prev()
		require.True(t, ok)
		assert.Equal(t, want, prev)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("attack")

	h.Prev()
	h.Prev()
	next, ok := h.Next()
	require.True(t, ok)
	assert.Equal(t, "attack", next)

	_, ok = h.Next()
	assert.False(t, ok, "past the newest entry returns to fresh input")
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Prev()
	assert.False(t, ok)
	_, ok = h.Next()
	assert.False(t, ok)
}

func TestHistory_MaxSizeAndDuplicates(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("a")
	h.Push("b")
	h.Push("c")

	prev, _ := h.Prev()
	assert.Equal(t, "c", prev)
	prev, _ = h.Prev()
	assert.Equal(t, "b", prev)
	prev, _ = h.Prev()
	assert.Equal(t, "b", prev, "oldest entry was evicted")

	h.ResetCursor()
	prev, _ = h.Prev()
	assert.Equal(t, "c", prev)
}

func TestHistory_SkipsRepeatShortcuts(t *testing.T) {
	h := NewHistory(historySize)
	h.Push("attack")
	h.Push("g")
	h.Push("Again")
	h.Push("  ")

	prev, ok := h.Prev()
	require.True(t, ok)
	assert.Equal(t, "attack", prev)
	prev, _ = h.Prev()
	assert.Equal(t, "attack", prev, "only one command was recorded")
}

func TestHandleEnter_RecordsHistory(t *testing.T) {
	m := testModel(t)
	m = enter(t, m, "time")
	m = enter(t, m, "g")

	prev, ok := m.history.Prev()
	require.True(t, ok)
	assert.Equal(t, "time", prev)
}

func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Game = types.GameDef{
		Title:   "Test Realm",
		Version: "1.0",
		Author:  "Tester",
		Intro:   "The wind howls.",
		Player: types.PlayerDef{
			Name:  "Aria",
			Stats: types.StatBlock{HP: 100, MP: 30, Attack: 15, Defense: 5, Speed: 10},
		},
	}
	defs.Enemies["dummy"] = types.EnemyDef{
		ID: "dummy", Name: "Training Dummy", Level: 1,
		Stats: types.StatBlock{HP: 40, Speed: 1},
		Exp:   10,
	}
	return defs
}

func testModel(t *testing.T) Model {
	t.Helper()
	g := engine.New(testDefs(), engine.Options{Seed: 3, StartHour: 8})
	m := New(g, t.TempDir())
	m.width = 120
	return m
}

func enter(t *testing.T, m Model, input string) Model {
	t.Helper()
	m.input.SetValue(input)
	next, _ := m.handleEnter()
	return next.(Model)
}

func rawText(m Model) string {
	var b strings.Builder
	for _, rl := range m.rawLines {
		b.WriteString(rl.text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestInitialOutput(t *testing.T) {
	m := testModel(t)
	msg := m.initialOutput()()

	out, ok := msg.(gameOutputMsg)
	require.True(t, ok)
	assert.Equal(t, "Test Realm v1.0 by Tester", out.lines[0])
	assert.Contains(t, out.lines, "The wind howls.")
}

func TestHandleEnter_GameCommand(t *testing.T) {
	m := testModel(t)
	m = enter(t, m, "fight dummy")

	text := rawText(m)
	assert.Contains(t, text, "fight dummy")
	assert.Contains(t, text, "Battle! You face Training Dummy.")
	assert.True(t, m.rawLines[0].isInput)
	assert.Equal(t, "fight dummy", m.lastCmd)
}

func TestHandleEnter_Again(t *testing.T) {
	m := testModel(t)
	m = enter(t, m, "g")
	assert.Contains(t, rawText(m), "Nothing to repeat.")

	m = enter(t, m, "time")
	m = enter(t, m, "again")
	assert.Equal(t, 2, strings.Count(rawText(m), "Day 1, 08:00 ("))
}

func TestHandleEnter_QuitCommand(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("/quit")
	next, cmd := m.handleEnter()

	assert.True(t, next.(Model).quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	m := testModel(t)
	m.game.Step("time")

	out, quit := m.handleMeta("/save slot")
	assert.False(t, quit)
	assert.Equal(t, []string{"Game saved to slot."}, out)
	_, err := os.Stat(filepath.Join(m.saveDir, "slot.json"))
	require.NoError(t, err)

	out, _ = m.handleMeta("/load slot")
	assert.Equal(t, "Game loaded from slot (turn 1).", out[0])
}

func TestHandleMeta_SaveRejectedInCombat(t *testing.T) {
	m := testModel(t)
	m.game.Step("fight dummy")

	out, _ := m.handleMeta("/save")
	assert.Equal(t, []string{"You cannot save in the middle of a battle."}, out)
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	m := testModel(t)
	out, quit := m.handleMeta("/load nothing")
	assert.False(t, quit)
	assert.Contains(t, out[0], "Load failed")
}

func TestHandleMeta_Help(t *testing.T) {
	m := testModel(t)
	out, _ := m.handleMeta("/help")
	joined := strings.Join(out, "\n")
	assert.Contains(t, joined, "/save")
	assert.Contains(t, joined, "/pause")
	assert.Contains(t, joined, "fight <enemy>")
}

func TestHandleMeta_Trace(t *testing.T) {
	m := testModel(t)
	out, _ := m.handleMeta("/trace")
	assert.Equal(t, []string{"Trace output enabled."}, out)
	assert.True(t, m.trace)

	out, _ = m.handleMeta("/trace")
	assert.Equal(t, []string{"Trace output disabled."}, out)
	assert.False(t, m.trace)
}

func TestHandleMeta_Pause(t *testing.T) {
	m := testModel(t)
	out, _ := m.handleMeta("/pause")
	assert.Equal(t, []string{"Time stands still."}, out)
	assert.True(t, m.game.Clock.Paused())

	out, _ = m.handleMeta("/pause")
	assert.Equal(t, []string{"Time flows again."}, out)
	assert.False(t, m.game.Clock.Paused())
}

func TestHandleMeta_UnknownAndState(t *testing.T) {
	m := testModel(t)
	out, _ := m.handleMeta("/dance")
	assert.Contains(t, out[0], "Unknown command: /dance")

	out, _ = m.handleMeta("/state")
	assert.Equal(t, "Turn: 0", out[0])
}

func TestHandleTick_AdvancesClock(t *testing.T) {
	m := testModel(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m = m.handleTick(start)
	assert.Equal(t, "08:00", m.game.Clock.String(), "first tick only sets the reference")

	m = m.handleTick(start.Add(30 * time.Second))
	assert.Equal(t, "08:30", m.game.Clock.String())
}

func TestUpdate_TickReschedules(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.False(t, next.(Model).lastTick.IsZero())
}

func TestStatusBar(t *testing.T) {
	m := testModel(t)

	left := m.statusLeft()
	assert.Contains(t, left, "Aria Lv1")
	assert.Contains(t, left, "HP 100/100")
	assert.Contains(t, left, "Day 1 08:00 day")
	assert.Equal(t, "Gold 0 | T:0 ", m.statusRight())

	m.game.Step("fight dummy")
	assert.Equal(t, "Round 1 | Turn: you | T:1 ", m.statusRight())

	m.game.Step("attack")
	assert.Contains(t, m.statusRight(), "Combo x")
	assert.Contains(t, m.statusRight(), "Round 2")

	bar := m.renderStatusBar()
	assert.Contains(t, bar, "Aria Lv1")
}
