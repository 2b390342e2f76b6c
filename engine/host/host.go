// Package host declares the platform collaborators the engine consumes:
// audio playback and the clock/timer/pointer services of whatever shell is
// hosting a game. The engine never blocks on these; timers come back as
// ordinary timer messages through the dispatch loop.
package host

import (
	"image"

	"github.com/nathoo/boltcore/boltlib"
)

// Audio plays sound resources by id and reports their length in ticks.
type Audio interface {
	Play(sound boltlib.ResourceID)
	Duration(sound boltlib.ResourceID) int
}

// Platform supplies time, timers, and the pointer position. SetTimer
// schedules a timer message carrying id after delayMs; delivery happens
// through the shell's event loop, never by calling into the engine directly.
type Platform interface {
	Now() int64
	SetTimer(delayMs int, id int)
	MousePos() image.Point
}

// NullAudio ignores playback and reports zero durations.
type NullAudio struct{}

func (NullAudio) Play(boltlib.ResourceID)         {}
func (NullAudio) Duration(boltlib.ResourceID) int { return 0 }

// RecordingAudio remembers what was played; handy in tests.
type RecordingAudio struct {
	Played    []boltlib.ResourceID
	Durations map[boltlib.ResourceID]int
}

func (a *RecordingAudio) Play(sound boltlib.ResourceID) {
	a.Played = append(a.Played, sound)
}

func (a *RecordingAudio) Duration(sound boltlib.ResourceID) int {
	if a.Durations == nil {
		return 0
	}
	return a.Durations[sound]
}

// PendingTimer is a timer scheduled against a ManualClock.
type PendingTimer struct {
	Due int64
	ID  int
}

// ManualClock is the Platform for headless shells and tests: time advances
// only when told to, and due timers are collected by the driver and fed back
// to the engine as messages.
type ManualClock struct {
	now    int64
	mouse  image.Point
	timers []PendingTimer
}

func (c *ManualClock) Now() int64 { return c.now }

func (c *ManualClock) SetTimer(delayMs int, id int) {
	c.timers = append(c.timers, PendingTimer{Due: c.now + int64(delayMs), ID: id})
}

func (c *ManualClock) MousePos() image.Point { return c.mouse }

// SetMousePos records the pointer position reported to the engine.
func (c *ManualClock) SetMousePos(p image.Point) { c.mouse = p }

// Advance moves time forward and returns the ids of timers that came due,
// in scheduling order. Fired timers are dropped.
func (c *ManualClock) Advance(ms int64) []int {
	c.now += ms
	var due []int
	rest := c.timers[:0]
	for _, t := range c.timers {
		if t.Due <= c.now {
			due = append(due, t.ID)
		} else {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	return due
}

// Pending reports how many timers are still scheduled.
func (c *ManualClock) Pending() int { return len(c.timers) }
