// Package engine drives playback: one Game owns the script cursor, the
// active card, and the movie player, and pumps every inbound message
// through them on the caller's goroutine. Nothing here spawns goroutines
// or blocks; timers and frames come back in as ordinary messages.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/cards"
	"github.com/nathoo/boltcore/engine/events"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/engine/host"
	"github.com/nathoo/boltcore/engine/movie"
	"github.com/nathoo/boltcore/engine/profile"
	"github.com/nathoo/boltcore/engine/scene"
	"github.com/nathoo/boltcore/engine/script"
	"github.com/nathoo/boltcore/types"
)

// driveLimit bounds self-drives within one external turn. A script that
// keeps re-driving past this is livelocked, which is a bug, so we panic
// rather than spin.
const driveLimit = 1024

// TimerSlideshow is the timer id slideshow cards schedule their advance on.
const TimerSlideshow = 1

// Deps carries everything a Game borrows. Container and Table are
// required; the rest default to null collaborators so headless drivers
// stay one-liners.
type Deps struct {
	Log       zerolog.Logger
	Container *boltlib.Container
	Movies    *boltlib.PackFile
	Table     *script.Table
	Renderer  gfx.Renderer
	Audio     host.Audio
	Platform  host.Platform
	Profiles  *profile.Store

	// Rules supplies puzzle logic by entry label. Entries it declines
	// (nil return) fall back to resource-driven TargetRules.
	Rules func(label string) cards.Rules

	// Seed fixes the variant stream; 0 draws one from the clock.
	Seed int64

	// JournalBound caps the transition journal; 0 uses the default.
	JournalBound int
}

// Game is the playback loop. Single-threaded: HandleEvent must only be
// called from one goroutine, and never from inside a collaborator
// callback.
type Game struct {
	log     zerolog.Logger
	c       *boltlib.Container
	r       gfx.Renderer
	audio   host.Audio
	clock   host.Platform
	movies  *movie.Player
	table   *script.Table
	seq     *script.Engine
	profs   *profile.Store
	rng     *RNG
	journal *events.Journal
	rules   func(label string) cards.Rules

	card    types.Card
	pending types.Msg
	driving bool
}

// New wires a Game from its dependencies. The script table is not
// activated yet; call Start.
func New(d Deps) (*Game, error) {
	if d.Container == nil {
		return nil, fmt.Errorf("engine: nil container")
	}
	if d.Table == nil {
		return nil, fmt.Errorf("engine: nil script table")
	}
	if d.Renderer == nil {
		d.Renderer = gfx.NewNullRenderer()
	}
	if d.Audio == nil {
		d.Audio = host.NullAudio{}
	}
	if d.Platform == nil {
		d.Platform = &host.ManualClock{}
	}
	if d.Seed == 0 {
		d.Seed = time.Now().UnixNano()
	}

	log := d.Log.With().Str("sys", "engine").Logger()
	g := &Game{
		log:     log,
		c:       d.Container,
		r:       d.Renderer,
		audio:   d.Audio,
		clock:   d.Platform,
		movies:  movie.New(d.Movies, d.Audio, d.Platform, d.Log),
		table:   d.Table,
		seq:     script.NewEngine(d.Table, d.Log),
		profs:   d.Profiles,
		rng:     NewRNG(d.Seed),
		journal: events.NewJournal(d.JournalBound),
		rules:   d.Rules,
	}
	g.movies.OnTrigger(movie.TriggerReenter, g.reenter)
	log.Debug().Int64("seed", d.Seed).Int("entries", d.Table.Len()).Msg("game wired")
	return g, nil
}

// Start activates the script's first entry. Calling it on a started
// game is a no-op.
func (g *Game) Start() error {
	if g.card != nil || g.movies.Running() {
		return nil
	}
	return g.HandleEvent(types.Msg{Kind: types.MsgDrive})
}

// HandleEvent pumps one external message through the loop, then keeps
// dispatching as long as handlers leave a pending message behind. It
// returns once the slot stays empty.
func (g *Game) HandleEvent(m types.Msg) error {
	if g.driving {
		panic("engine: HandleEvent re-entered")
	}
	g.driving = true
	defer func() { g.driving = false }()

	g.pending = m
	for i := 0; g.pending.Kind != types.MsgNone; i++ {
		if i >= driveLimit {
			panic("engine: drive loop exceeded bound")
		}
		cur := g.pending
		g.pending = types.Msg{}
		if err := g.dispatch(cur); err != nil {
			return err
		}
	}
	return nil
}

// post leaves a message in the turn's pending slot.
func (g *Game) post(m types.Msg) {
	g.pending = m
}

func (g *Game) dispatch(m types.Msg) error {
	// A running movie owns the screen: clicks cut it short, ticks drive
	// its cues, everything else is swallowed.
	if g.movies.Running() {
		switch m.Kind {
		case types.MsgClick:
			g.movies.Stop()
			return g.afterMovie()
		case types.MsgTick:
			if g.movies.Tick(g.clock.Now()) {
				return g.afterMovie()
			}
		}
		return nil
	}

	if g.card == nil {
		// Nothing live: a drive (startup, post-movie) activates the
		// current entry.
		if m.Kind == types.MsgDrive || m.Kind == types.MsgTick {
			return g.activate()
		}
		return nil
	}

	return g.applyOutcome(g.card.HandleMsg(m))
}

// afterMovie runs when the player stops, whatever stopped it. A card
// beneath the reel is repainted; bare movies advance the script.
func (g *Game) afterMovie() error {
	if g.card != nil {
		g.card.Enter()
		return nil
	}
	g.seq.Apply(types.Outcome{Kind: types.End})
	g.post(types.Msg{Kind: types.MsgDrive})
	return nil
}

// reenter is the movie trigger that repaints the card under a reel
// mid-playback.
func (g *Game) reenter() {
	if g.card != nil {
		g.card.Enter()
	}
}

func (g *Game) applyOutcome(out types.Outcome) error {
	switch out.Kind {
	case types.Continue:
		return nil
	case types.Win:
		return g.applyWin()
	case types.End, types.Return, types.EnterSub:
		g.card = nil
		g.seq.Apply(out)
		g.post(types.Msg{Kind: types.MsgDrive})
		return nil
	default:
		panic(fmt.Sprintf("engine: unhandled outcome %v", out.Kind))
	}
}

// applyWin records the solve, returns the cursor to the dispatching
// hub, and plays the entry's win reel over the freshly entered hub.
func (g *Game) applyWin() error {
	e := g.seq.Current()
	g.markSolved(e.Label)

	g.card = nil
	g.seq.Apply(types.Outcome{Kind: types.Win})
	if err := g.activate(); err != nil {
		return err
	}
	if e.WinMovie != "" {
		if err := g.movies.Start(e.WinMovie); err != nil {
			g.log.Warn().Str("movie", e.WinMovie).Err(err).Msg("win reel skipped")
		}
	}
	return nil
}

func (g *Game) markSolved(label string) {
	if g.profs == nil || label == "" {
		return
	}
	p := g.profs.Current()
	if p == nil || p.IsSolved(label) {
		return
	}
	p.MarkSolved(label)
	if err := g.profs.Save(); err != nil {
		g.log.Warn().Err(err).Msg("profile save failed")
	}
}

// activate builds the current entry's state: a card for interactive
// ops, a running reel for movie ops.
func (g *Game) activate() error {
	// Segment boundary: stale cycling and fades must not leak into the
	// next state.
	g.r.ResetColorCycles()
	g.r.SetFade(1)

	e := g.seq.Current()
	g.journal.Add(events.Record{
		Cursor: g.seq.Cursor(),
		Op:     e.Op,
		Label:  e.Label,
		Movie:  e.Movie,
	})
	g.noteLabel(e.Label)
	g.log.Debug().Int("cursor", g.seq.Cursor()).Stringer("op", e.Op).Str("label", e.Label).Msg("activate")

	switch e.Op {
	case script.OpMovie:
		if err := g.movies.Start(e.Movie); err != nil {
			g.log.Warn().Str("movie", e.Movie).Err(err).Msg("movie skipped")
			g.seq.Apply(types.Outcome{Kind: types.End})
			g.post(types.Msg{Kind: types.MsgDrive})
		}
		return nil

	case script.OpMenu:
		out := make(map[int]types.Outcome, len(e.Buttons))
		for btn, slot := range e.Buttons {
			if slot == 0 {
				out[btn] = types.Outcome{Kind: types.End}
			} else {
				out[btn] = types.Outcome{Kind: types.EnterSub, Index: slot}
			}
		}
		card, err := cards.NewMenu(g.env(), e.Param, out)
		if err != nil {
			return fmt.Errorf("entry %d: %w", g.seq.Cursor(), err)
		}
		g.enterCard(card)
		return nil

	case script.OpHub, script.OpFreeplay:
		entries := make([]cards.HubEntry, len(e.Hub.Items))
		for i, it := range e.Hub.Items {
			target := g.table.Entry(e.Branches[it.Branch])
			entries[i] = cards.HubEntry{
				Button:   it.Button,
				Branch:   it.Branch,
				Label:    target.Label,
				Category: it.Category,
				Marker:   it.Marker,
			}
		}
		card, err := cards.NewHub(g.env(), e.Param, entries, e.Hub.Exit, e.Op == script.OpFreeplay)
		if err != nil {
			return fmt.Errorf("entry %d: %w", g.seq.Cursor(), err)
		}
		g.enterCard(card)
		return nil

	case script.OpPuzzle:
		card, err := cards.NewPuzzle(g.env(), e.Param, e.Category, g.rulesFor(e.Label))
		if err != nil {
			return fmt.Errorf("entry %d: %w", g.seq.Cursor(), err)
		}
		g.enterCard(card)
		return nil

	case script.OpSlides:
		card, err := cards.NewSlideshow(g.env(), e.Param, e.Slides.DelayMs, TimerSlideshow)
		if err != nil {
			return fmt.Errorf("entry %d: %w", g.seq.Cursor(), err)
		}
		g.enterCard(card)
		return nil

	default:
		panic(fmt.Sprintf("engine: unhandled op %v", e.Op))
	}
}

func (g *Game) enterCard(c types.Card) {
	g.card = c
	g.card.Enter()
}

func (g *Game) rulesFor(label string) cards.Rules {
	if g.rules != nil {
		if r := g.rules(label); r != nil {
			return r
		}
	}
	return &cards.TargetRules{}
}

// noteLabel remembers the last labeled entry on the live profile so a
// later session can show where the player left off. Not flushed here;
// the next solve or explicit save picks it up.
func (g *Game) noteLabel(label string) {
	if g.profs == nil || label == "" {
		return
	}
	if p := g.profs.Current(); p != nil {
		p.LastLabel = label
	}
}

// env assembles the card environment against the live profile.
func (g *Game) env() *cards.Env {
	var prof *profile.Profile
	if g.profs != nil {
		prof = g.profs.Current()
	}
	return &cards.Env{
		Log:       g.log,
		Container: g.c,
		Renderer:  g.r,
		Audio:     g.audio,
		Platform:  g.clock,
		Profile:   prof,
		Pick:      g.rng.Pick,
	}
}

// Cursor returns the script cursor.
func (g *Game) Cursor() int {
	return g.seq.Cursor()
}

// Current returns the entry under the cursor.
func (g *Game) Current() script.Entry {
	return g.seq.Current()
}

// MovieRunning reports whether a reel is playing.
func (g *Game) MovieRunning() bool {
	return g.movies.Running()
}

// MovieName returns the running reel's name, or "".
func (g *Game) MovieName() string {
	return g.movies.Name()
}

// Movies exposes the reel catalog for front ends.
func (g *Game) Movies() *movie.Player {
	return g.movies
}

// Journal returns the transition journal.
func (g *Game) Journal() *events.Journal {
	return g.journal
}

// RNG exposes the variant stream for state display.
func (g *Game) RNG() *RNG {
	return g.rng
}

// Profiles returns the profile store, which may be nil.
func (g *Game) Profiles() *profile.Store {
	return g.profs
}

type sceneHolder interface {
	Scene() *scene.Scene
}

// Scene returns the active card's scene, or nil when no card with a
// scene is live (movies, slideshows, startup).
func (g *Game) Scene() *scene.Scene {
	if h, ok := g.card.(sceneHolder); ok {
		return h.Scene()
	}
	return nil
}

type dirtyTracker interface {
	Dirty() bool
	ClearDirty()
}

// Dirty reports whether the renderer holds unpresented drawing. The
// present step polls this between events; renderers without dirty
// tracking always read clean.
func (g *Game) Dirty() bool {
	if d, ok := g.r.(dirtyTracker); ok {
		return d.Dirty()
	}
	return false
}

// ClearDirty acknowledges a present.
func (g *Game) ClearDirty() {
	if d, ok := g.r.(dirtyTracker); ok {
		d.ClearDirty()
	}
}
