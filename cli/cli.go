// Package cli provides the headless scripted driver: one command per
// input line, events fed into the engine, transitions printed as the
// script moves. Replay files use the same grammar as interactive use.
package cli

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nathoo/boltcore/engine"
	"github.com/nathoo/boltcore/engine/host"
	"github.com/nathoo/boltcore/types"
)

// CLI drives a session from a line-oriented command stream.
type CLI struct {
	Game      *engine.Game
	Clock     *host.ManualClock
	In        io.Reader
	Out       io.Writer
	TickMs    int
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for replay transcripts)
	lastCmd   string // for "again"/"g" repeat
	printed   int    // journal records already printed
}

// New creates a CLI wired to the given game. The clock may be nil when
// the platform is not a manual one; tick and pointer commands then skip
// the clock bookkeeping.
func New(g *engine.Game, clock *host.ManualClock) *CLI {
	return &CLI{
		Game:   g,
		Clock:  clock,
		In:     os.Stdin,
		Out:    os.Stdout,
		TickMs: 20,
	}
}

// Run starts the session and pumps commands until quit or EOF.
func (c *CLI) Run() {
	if err := c.Begin(); err != nil {
		c.printSystem(fmt.Sprintf("start failed: %v", err))
		return
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
		// Skip comment lines (for replay files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}
		if c.Exec(input) {
			return
		}
	}
}

// Begin starts the game and prints the opening transitions. The
// full-screen player calls this directly instead of Run.
func (c *CLI) Begin() error {
	if err := c.Game.Start(); err != nil {
		return err
	}
	c.flushTransitions()
	return nil
}

// Exec runs a single command line, expanding "again"/"g" to the last
// event command. It returns true when the session should end.
func (c *CLI) Exec(input string) bool {
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if c.lastCmd == "" {
			c.printLine("Nothing to repeat.")
			return false
		}
		input = c.lastCmd
	}
	return c.dispatch(input)
}

// dispatch runs one command line. Returns true when the session ends.
func (c *CLI) dispatch(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "quit", "exit":
		c.printSystem("Goodbye.")
		return true

	case "help":
		c.cmdHelp()

	case "state":
		c.cmdState()

	case "buttons":
		c.cmdButtons()

	case "journal":
		c.cmdJournal()

	case "trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	case "profile":
		c.cmdProfile(parts[1:])

	case "click", "hover", "rclick":
		c.cmdPointer(cmd, parts[1:])
		c.lastCmd = input

	case "tick":
		c.cmdTick(parts[1:])
		c.lastCmd = input

	case "timer":
		c.cmdTimer(parts[1:])
		c.lastCmd = input

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type help for the command list.", cmd))
	}

	return false
}

func (c *CLI) cmdPointer(cmd string, args []string) {
	if len(args) != 2 {
		c.printSystem(fmt.Sprintf("usage: %s X Y", cmd))
		return
	}
	x, errX := strconv.Atoi(args[0])
	y, errY := strconv.Atoi(args[1])
	if errX != nil || errY != nil {
		c.printSystem(fmt.Sprintf("usage: %s X Y", cmd))
		return
	}

	kind := types.MsgClick
	switch cmd {
	case "hover":
		kind = types.MsgHover
	case "rclick":
		kind = types.MsgRightClick
	}
	if c.Clock != nil {
		c.Clock.SetMousePos(image.Pt(x, y))
	}
	c.send(types.Msg{Kind: kind, Pos: image.Pt(x, y)})
}

// cmdTick advances the manual clock, delivering any timers that come
// due, then pumps one frame.
func (c *CLI) cmdTick(args []string) {
	ms := c.TickMs
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			c.printSystem("usage: tick [MS]")
			return
		}
		ms = n
	}
	if c.Clock != nil {
		for _, id := range c.Clock.Advance(int64(ms)) {
			c.send(types.Msg{Kind: types.MsgTimer, Num: id})
		}
	}
	c.send(types.Msg{Kind: types.MsgTick})
}

func (c *CLI) cmdTimer(args []string) {
	if len(args) != 1 {
		c.printSystem("usage: timer ID")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		c.printSystem("usage: timer ID")
		return
	}
	c.send(types.Msg{Kind: types.MsgTimer, Num: id})
}

func (c *CLI) cmdProfile(args []string) {
	if c.Game.Profiles() == nil {
		c.printSystem("No profile store is attached.")
		return
	}
	if len(args) != 1 {
		c.printSystem("usage: profile SLOT")
		return
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		c.printSystem("usage: profile SLOT")
		return
	}
	if err := c.Game.Profiles().Select(slot); err != nil {
		c.printSystem(fmt.Sprintf("Profile switch failed: %v", err))
		return
	}
	p := c.Game.Profiles().Current()
	c.printSystem(fmt.Sprintf("Profile slot %d: difficulty %v, %d solved.", slot, p.Difficulty, len(p.Solved)))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Events:",
		"  click X Y     - left click at X,Y",
		"  hover X Y     - move the pointer to X,Y",
		"  rclick X Y    - right click at X,Y",
		"  tick [MS]     - advance time and pump one frame (default one tick)",
		"  timer ID      - fire a timer by id",
		"",
		"Queries:",
		"  buttons       - list the active scene's buttons",
		"  state         - show cursor, movie, rng, and profile",
		"  journal       - print the transition journal",
		"",
		"Session:",
		"  profile SLOT  - switch the active profile slot",
		"  trace         - toggle trace output",
		"  again (g)     - repeat the last event",
		"  quit          - exit",
		"",
		"Lines starting with # are comments.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	g := c.Game
	e := g.Current()
	c.printSystem(fmt.Sprintf("Cursor: %d (%s %s)", g.Cursor(), e.Op, e.Label))
	if g.MovieRunning() {
		c.printSystem(fmt.Sprintf("Movie: %s", g.MovieName()))
	} else {
		c.printSystem("Movie: none")
	}
	c.printSystem(fmt.Sprintf("RNG: seed %d, position %d", g.RNG().Seed(), g.RNG().Position()))
	if g.Profiles() != nil {
		if p := g.Profiles().Current(); p != nil {
			c.printSystem(fmt.Sprintf("Profile: slot %d, difficulty %v, %d solved",
				g.Profiles().Slot(), p.Difficulty, len(p.Solved)))
		}
	}
}

func (c *CLI) cmdButtons() {
	s := c.Game.Scene()
	if s == nil {
		c.printSystem("No scene is active.")
		return
	}
	c.printSystem(fmt.Sprintf("%d buttons, hovered %d", s.NumButtons(), s.Hovered()))
	for i := 0; i < s.NumButtons(); i++ {
		r := s.ButtonRect(i)
		if r.Empty() {
			c.printLine(fmt.Sprintf("  %2d: query hotspot", i))
			continue
		}
		c.printLine(fmt.Sprintf("  %2d: (%d,%d)-(%d,%d)", i, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y))
	}
}

func (c *CLI) cmdJournal() {
	recs := c.Game.Journal().Records()
	if len(recs) == 0 {
		c.printSystem("Journal is empty.")
		return
	}
	for _, rec := range recs {
		c.printLine(rec.String())
	}
}

// send feeds one event into the engine and prints whatever transitions
// it caused.
func (c *CLI) send(m types.Msg) {
	if err := c.Game.HandleEvent(m); err != nil {
		c.printSystem(fmt.Sprintf("Event failed: %v", err))
	}
	c.flushTransitions()
	if c.Trace {
		c.printSystem(fmt.Sprintf("trace: %s -> cursor %d %s",
			m.Kind, c.Game.Cursor(), c.Game.Current().Label))
	}
}

// flushTransitions prints journal records added since the last flush.
func (c *CLI) flushTransitions() {
	j := c.Game.Journal()
	total := j.Total()
	if total <= c.printed {
		return
	}
	recs := j.Records()
	missed := total - c.printed
	if missed > len(recs) {
		missed = len(recs)
	}
	for _, rec := range recs[len(recs)-missed:] {
		c.printLine(rec.String())
	}
	c.printed = total
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
