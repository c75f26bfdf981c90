// Eldoria is a turn-based RPG core: real-time world clock, quest journal
// and speed-ordered combat over Lua-defined content.
// Usage: eldoria [--version] [--config <file>] [--plain] [--script <file>] [--trace] [content_directory]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/cli"
	"github.com/nathoo/eldoria/config"
	"github.com/nathoo/eldoria/engine"
	"github.com/nathoo/eldoria/loader"
	"github.com/nathoo/eldoria/logger"
	"github.com/nathoo/eldoria/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: eldoria [--version] [--config <file>] [--plain] [--script <file>] [--trace] [content_directory]"

func main() {
	plain := false
	trace := false
	configFile := "eldoria.yaml"
	var contentDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("eldoria %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script", "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a file path\n", args[i])
				os.Exit(1)
			}
			if args[i] == "--script" {
				scriptFile = args[i+1]
			} else {
				configFile = args[i+1]
			}
			i++
		case "-h", "--help":
			fmt.Println(usage)
			return
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if contentDir == "" {
		contentDir = cfg.ContentDir
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Load and compile Lua game content.
	defs, err := loader.Load(contentDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.WithFields(logrus.Fields{"seed": seed, "content": contentDir}).Info("starting")

	g := engine.New(defs, engine.Options{
		Seed:           seed,
		TimeScale:      cfg.TimeScale,
		StartHour:      cfg.StartHour,
		StartMinute:    cfg.StartMinute,
		ComboWindow:    cfg.ComboWindow,
		MaxCombo:       cfg.MaxCombo,
		MaxRounds:      cfg.MaxRounds,
		AutoChainLimit: cfg.AutoChainLimit,
		Logger:         log,
	})

	// Script mode: open file, force plain, echo commands, freeze the clock.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		printBanner(defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(g)
		c.In = f
		c.SaveDir = cfg.SaveDir
		c.EchoInput = true
		c.Trace = trace
		c.Now = nil
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		printBanner(defs.Game.Title, defs.Game.Version, defs.Game.Author)
		c := cli.New(g)
		c.SaveDir = cfg.SaveDir
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(g, cfg.SaveDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(title, version, author string) {
	fmt.Printf("%s v%s by %s\n\n", title, version, author)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
