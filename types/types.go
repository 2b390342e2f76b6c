// Package types defines the shared message, outcome, and card contracts for
// the BoltCore engine. Kept free of engine logic so every package can depend
// on it without cycles.
package types

import "image"

// MsgKind discriminates the messages delivered to the dispatch loop.
type MsgKind int

const (
	// MsgNone is the empty message; the pump yields when a turn ends on it.
	MsgNone MsgKind = iota
	// MsgHover reports pointer movement.
	MsgHover
	// MsgClick reports a left click.
	MsgClick
	// MsgRightClick reports a right click.
	MsgRightClick
	// MsgTimer reports an expired timer; Num carries the timer id.
	MsgTimer
	// MsgTick reports a frame tick for playback and color cycling.
	MsgTick
	// MsgDrive is the synthetic self-advance message; internal state
	// machines leave it pending to run again without new external input.
	MsgDrive
	// MsgClickButton is synthesized by a scene when a click lands on a
	// button; Num carries the button index.
	MsgClickButton
)

var msgKindNames = map[MsgKind]string{
	MsgNone:        "none",
	MsgHover:       "hover",
	MsgClick:       "click",
	MsgRightClick:  "rclick",
	MsgTimer:       "timer",
	MsgTick:        "tick",
	MsgDrive:       "drive",
	MsgClickButton: "click-button",
}

func (k MsgKind) String() string {
	if s, ok := msgKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Msg is one event routed through the dispatch loop. Pos is meaningful for
// pointer messages, Num for timers and synthesized button clicks.
type Msg struct {
	Kind MsgKind
	Pos  image.Point
	Num  int
}

// OutcomeKind discriminates what a card asks the sequencer to do next.
type OutcomeKind int

const (
	// Continue keeps the current card active.
	Continue OutcomeKind = iota
	// End finishes the card; the sequencer takes the default branch.
	End
	// Win reports a solved puzzle; the sequencer plays the win movie and
	// returns to the hub that dispatched the puzzle.
	Win
	// Return pops back to the dispatching hub without a movie.
	Return
	// EnterSub enters a sub-card through the current entry's branch table;
	// Index selects the branch.
	EnterSub
)

var outcomeKindNames = map[OutcomeKind]string{
	Continue: "continue",
	End:      "end",
	Win:      "win",
	Return:   "return",
	EnterSub: "enter-sub",
}

func (k OutcomeKind) String() string {
	if s, ok := outcomeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Outcome is a card's answer to one handled message.
type Outcome struct {
	Kind  OutcomeKind
	Index int // branch index for EnterSub
}

// Card is one interactive game state: a menu, hub, puzzle host, or
// slideshow. The sequencer constructs a card, calls Enter exactly once when
// it becomes active, forwards messages while it stays active, and drops the
// card when an outcome advances the script.
type Card interface {
	// Enter activates the card: draw its scene, start its timers.
	Enter()
	// HandleMsg processes one message and reports what happens next.
	HandleMsg(Msg) Outcome
}
