package tui

import "strings"

// historySize is how many typed commands the input line can recall.
const historySize = 100

// History holds the commands typed this session, oldest first, for recall
// with the up and down keys. Repeat shortcuts are not recorded: recalling
// "g" would replay whatever ran before it rather than what was typed.
type History struct {
	entries []string
	limit   int
	pos     int // len(entries) while the player is not browsing
}

// NewHistory returns an empty history keeping at most limit commands.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push records a command and stops browsing. Blank lines, repeat
// shortcuts and a command equal to the previous one are dropped.
func (h *History) Push(cmd string) {
	defer h.ResetCursor()
	cmd = strings.TrimSpace(cmd)
	switch strings.ToLower(cmd) {
	case "", "again", "g":
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps back to an older command, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps forward to a newer command. Stepping past the newest returns
// false, and the input line goes back to being empty.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// ResetCursor ends browsing.
func (h *History) ResetCursor() {
	h.pos = len(h.entries)
}
