// Package movie plays cue-timed movie timelines out of a PF pack. A playing
// movie owns the screen: the dispatch loop routes messages here instead of
// to the active card, and a click stops playback. Cue ticks count
// milliseconds of platform time from Start.
package movie

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/host"
)

// TriggerReenter asks the engine to re-enter the current card mid-movie.
// Win movies use it to repaint the hub under the final frames.
const TriggerReenter = 0x8002

// PlotNames are the story reel names in the stock data set, in play order.
// Puzzle win movies are named per puzzle and live alongside these.
var PlotNames = []string{"BMPR", "INTR", "PLOG", "LABT", "CAV1", "FNLE"}

// Player runs at most one timeline at a time.
type Player struct {
	pack     *boltlib.PackFile
	audio    host.Audio
	clock    host.Platform
	log      zerolog.Logger
	triggers map[uint16]func()

	running  bool
	name     string
	timeline *boltlib.Timeline
	startMs  int64
	fired    int
}

// New builds a player over pack. A nil pack is allowed; Start then fails and
// Has reports false, which lets movie-free shells share the engine wiring.
func New(pack *boltlib.PackFile, audio host.Audio, clock host.Platform, log zerolog.Logger) *Player {
	return &Player{
		pack:     pack,
		audio:    audio,
		clock:    clock,
		log:      log.With().Str("sys", "movie").Logger(),
		triggers: make(map[uint16]func()),
	}
}

// OnTrigger registers fn for a cue code, replacing any earlier handler.
func (p *Player) OnTrigger(code uint16, fn func()) {
	p.triggers[code] = fn
}

// Has reports whether the pack carries a movie under name.
func (p *Player) Has(name string) bool {
	return p.pack != nil && p.pack.Has(name)
}

// Names lists the pack's movie names.
func (p *Player) Names() []string {
	if p.pack == nil {
		return nil
	}
	return p.pack.Names()
}

// Running reports whether a movie is playing.
func (p *Player) Running() bool { return p.running }

// Name is the playing movie's name, or "" when stopped.
func (p *Player) Name() string {
	if !p.running {
		return ""
	}
	return p.name
}

// Start begins playing name from tick zero, stopping any current movie
// first. The timeline's sound, if named, starts immediately.
func (p *Player) Start(name string) error {
	if p.pack == nil {
		return fmt.Errorf("start movie %q: no movie pack", name)
	}
	p.Stop()
	tl, err := p.pack.LoadTimeline(name)
	if err != nil {
		return fmt.Errorf("start movie %q: %w", name, err)
	}
	p.running = true
	p.name = name
	p.timeline = tl
	p.startMs = p.clock.Now()
	p.fired = 0
	p.log.Debug().Str("movie", name).Uint32("duration", tl.Duration).Msg("movie started")
	if tl.Sound.Valid() {
		p.audio.Play(tl.Sound)
	}
	return nil
}

// Stop halts playback unconditionally. Safe when already stopped.
func (p *Player) Stop() {
	if !p.running {
		return
	}
	p.log.Debug().Str("movie", p.name).Msg("movie stopped")
	p.running = false
}

// Tick advances playback to nowMs, firing every crossed cue's trigger in
// tick order before returning. Unknown cue codes are logged and skipped.
// Returns true when the movie reached its duration and stopped during this
// call; a Stop from inside a trigger reports true as well.
func (p *Player) Tick(nowMs int64) bool {
	if !p.running {
		return false
	}
	elapsed := nowMs - p.startMs
	if elapsed < 0 {
		elapsed = 0
	}
	for p.fired < len(p.timeline.Cues) {
		cue := p.timeline.Cues[p.fired]
		if int64(cue.Tick) > elapsed {
			break
		}
		p.fired++
		fn := p.triggers[cue.Code]
		if fn == nil {
			p.log.Warn().Str("movie", p.name).Uint32("tick", cue.Tick).
				Int("code", int(cue.Code)).Msg("unknown cue code")
			continue
		}
		fn()
		if !p.running {
			return true
		}
	}
	if elapsed >= int64(p.timeline.Duration) {
		p.Stop()
		return true
	}
	return false
}
