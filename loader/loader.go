package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/eldoria/engine/state"
	"github.com/nathoo/eldoria/logger"
	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game      *lua.LTable
	elements  []*lua.LTable
	statuses  []rawDef
	abilities []rawDef
	items     []rawDef
	enemies   []rawDef
	quests    []rawDef
	order     int

	seen     map[string]bool
	problems []string
}

func newCollector() *collector {
	return &collector{seen: map[string]bool{}}
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// claim records a definition id and notes a problem if the same kind of
// definition was already declared under that id.
func (c *collector) claim(kind, id string) {
	key := kind + ":" + id
	if c.seen[key] {
		c.problems = append(c.problems, fmt.Sprintf("duplicate %s id %q", kind, id))
		return
	}
	c.seen[key] = true
}

// Load reads all .lua files from dir, compiles them into content tables,
// validates references, and returns the immutable Defs. The Lua VM is
// discarded after loading. Validation warnings go to log.
func Load(dir string, log logrus.FieldLogger) (*state.Defs, error) {
	log = logger.OrDiscard(log).WithField("content", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := newCollector()
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
		log.WithField("file", f).Debug("content file loaded")
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}

	ve := validate(defs, coll.problems...)
	for _, w := range ve.Warnings {
		log.Warn(w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}

	log.WithFields(logrus.Fields{
		"abilities": len(defs.Abilities),
		"items":     len(defs.Items),
		"statuses":  len(defs.Statuses),
		"enemies":   len(defs.Enemies),
		"quests":    len(defs.Quests),
	}).Info("content loaded")
	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed or draw from Lua's own generator; all
	// randomness at runtime goes through the engine RNG.
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("randomseed", lua.LNil)
		mathTbl.RawSetString("random", lua.LNil)
	}
}

// sortedLuaFiles returns files with game.lua first, then alphabetical.
func sortedLuaFiles(files []string) []string {
	var result []string
	var rest []string
	for _, f := range files {
		if f == "game.lua" {
			result = append(result, f)
		} else {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	return append(result, rest...)
}
