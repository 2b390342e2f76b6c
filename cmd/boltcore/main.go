// Boltcore replays the scripted scene graphs of a BLT resource set:
// sequence tables drive menus, hubs, puzzles, and movie reels out of a
// resource container and a movie pack.
// Usage: boltcore [-config FILE] [-data FILE] [-movies FILE] [-scripts DIR]
// [-profile N] [-script FILE] [-tui] [-echo] [-debug] [-version]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/cli"
	"github.com/nathoo/boltcore/engine"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/engine/host"
	"github.com/nathoo/boltcore/engine/profile"
	"github.com/nathoo/boltcore/loader"
	"github.com/nathoo/boltcore/tui"
)

// Plane dimensions of the original CD-i presentation.
const (
	screenW = 384
	screenH = 240
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		cfgPath    string
		dataPath   string
		moviesPath string
		scriptsDir string
		scriptFile string
		slot       int
		useTUI     bool
		echo       bool
		debug      bool
	)

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-version", "--version":
			fmt.Printf("boltcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "-tui":
			useTUI = true
		case "-echo":
			echo = true
		case "-debug":
			debug = true
		case "-config":
			cfgPath = nextArg(args, &i)
		case "-data":
			dataPath = nextArg(args, &i)
		case "-movies":
			moviesPath = nextArg(args, &i)
		case "-scripts":
			scriptsDir = nextArg(args, &i)
		case "-script":
			scriptFile = nextArg(args, &i)
		case "-profile":
			n, err := strconv.Atoi(nextArg(args, &i))
			if err != nil {
				fmt.Fprintf(os.Stderr, "-profile requires a slot number\n")
				os.Exit(1)
			}
			slot = n
		default:
			usage()
		}
	}

	cfg, err := engine.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}
	if dataPath != "" {
		cfg.Data = dataPath
	}
	if moviesPath != "" {
		cfg.Movies = moviesPath
	}
	if scriptsDir != "" {
		cfg.Scripts = scriptsDir
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(logLevel(cfg.LogLevel))

	container, err := boltlib.Open(cfg.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data: %v\n", err)
		os.Exit(1)
	}

	// A missing movie pack is survivable; reels are skipped at runtime.
	var pack *boltlib.PackFile
	if cfg.Movies != "" {
		pack, err = boltlib.OpenPack(cfg.Movies)
		if err != nil {
			log.Warn().Err(err).Msg("movie pack unavailable, reels will be skipped")
		}
	}

	var cat loader.Catalog
	if pack != nil {
		cat = pack
	}
	table, warnings, err := loader.Load(cfg.Scripts, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scripts: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		log.Warn().Str("sys", "loader").Msg(w)
	}

	store := profile.Open(cfg.AppName, log)
	if err := store.Select(slot); err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting profile: %v\n", err)
		os.Exit(1)
	}

	clock := &host.ManualClock{}
	renderer := gfx.NewMemoryRenderer(screenW, screenH)

	game, err := engine.New(engine.Deps{
		Log:       log,
		Container: container,
		Movies:    pack,
		Table:     table,
		Renderer:  renderer,
		Platform:  clock,
		Profiles:  store,
		Seed:      cfg.Seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building game: %v\n", err)
		os.Exit(1)
	}

	// Script mode: replay a command file with echoed input.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(game, clock)
		c.In = f
		c.EchoInput = true
		c.TickMs = cfg.TickMs
		c.Run()
		return
	}

	if useTUI {
		if !isTerminal() {
			fmt.Fprintf(os.Stderr, "stdout is not a terminal, using the line driver\n")
		} else {
			if err := tui.Run(game, clock, renderer); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	c := cli.New(game, clock)
	c.EchoInput = echo
	c.TickMs = cfg.TickMs
	c.Run()
}

// nextArg consumes the value following a flag.
func nextArg(args []string, i *int) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", args[*i])
		os.Exit(1)
	}
	*i++
	return args[*i]
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: boltcore [-config FILE] [-data FILE] [-movies FILE] [-scripts DIR] [-profile N] [-script FILE] [-tui] [-echo] [-debug] [-version]\n")
	os.Exit(1)
}

func logLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
