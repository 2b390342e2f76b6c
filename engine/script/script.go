// Package script holds the progression program: an immutable table of
// entries walked by a cursor. Each entry names what to put on screen (a
// card kind or a movie) and where each outcome branches. Table integrity is
// a load-time concern; once validated, a bad cursor move at runtime is a
// programming error and panics.
package script

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/profile"
	"github.com/nathoo/boltcore/types"
)

// Op selects the handler that activates an entry.
type Op int

const (
	// OpMovie plays a named movie and advances on its stop.
	OpMovie Op = iota
	// OpMenu shows a menu card built from Param.
	OpMenu
	// OpHub shows a hub card dispatching to puzzle entries.
	OpHub
	// OpPuzzle runs one puzzle card.
	OpPuzzle
	// OpFreeplay runs a hub with every puzzle open and no plot movies.
	OpFreeplay
	// OpSlides steps through a timed slide list.
	OpSlides
)

var opNames = map[Op]string{
	OpMovie:    "movie",
	OpMenu:     "menu",
	OpHub:      "hub",
	OpPuzzle:   "puzzle",
	OpFreeplay: "freeplay",
	OpSlides:   "slides",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// HubItem wires one hub-scene button to one branch slot. Category and
// Marker feed the solved-marker overlay; the solved key itself is the
// target entry's label.
type HubItem struct {
	Button   int
	Branch   int
	Category int
	Marker   boltlib.ResourceID
}

// HubSpec is the OpHub and OpFreeplay payload. Exit is the button that
// leaves the hub, -1 for none.
type HubSpec struct {
	Exit  int
	Items []HubItem
}

// SlideSpec is the OpSlides payload.
type SlideSpec struct {
	DelayMs int
}

// Entry is one step of the progression. Branches[0] is the default-next
// target taken on End; further slots are selected by EnterSub. Movie names
// the reel for OpMovie entries; WinMovie names the reel played when this
// entry's card reports Win. The remaining fields are per-op payloads:
// Buttons maps a menu button to a branch slot (slot 0 reads as End),
// Hub carries the hub wiring, Category the puzzle's difficulty category,
// and Slides the slideshow timing.
type Entry struct {
	Op       Op
	Label    string
	Param    boltlib.ResourceID
	Movie    string
	WinMovie string
	Branches []int

	Buttons  map[int]int
	Hub      *HubSpec
	Category int
	Slides   SlideSpec
}

// Table is the validated, immutable progression program.
type Table struct {
	entries []Entry
	labels  map[string]int
}

// NewTable validates entries and freezes them into a table. Every entry
// needs at least the default branch, every branch target must be in range,
// per-op payloads must be structurally sound, and non-empty labels must be
// unique. Resource existence is the loader's concern, not the table's.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("script: empty table")
	}
	labels := make(map[string]int)
	for i, e := range entries {
		where := fmt.Sprintf("entry %d", i)
		if e.Label != "" {
			where = fmt.Sprintf("entry %d (%s)", i, e.Label)
		}
		if len(e.Branches) == 0 {
			return nil, fmt.Errorf("script: %s has no branches", where)
		}
		for j, target := range e.Branches {
			if target < 0 || target >= len(entries) {
				return nil, fmt.Errorf("script: %s branch %d targets %d, table has %d entries",
					where, j, target, len(entries))
			}
		}
		if err := validatePayload(e, where); err != nil {
			return nil, err
		}
		if e.Label != "" {
			if prev, dup := labels[e.Label]; dup {
				return nil, fmt.Errorf("script: label %q on entries %d and %d", e.Label, prev, i)
			}
			labels[e.Label] = i
		}
	}
	return &Table{entries: append([]Entry(nil), entries...), labels: labels}, nil
}

func validatePayload(e Entry, where string) error {
	switch e.Op {
	case OpMovie:
		if e.Movie == "" {
			return fmt.Errorf("script: %s is a movie entry with no movie name", where)
		}
	case OpMenu:
		if len(e.Buttons) == 0 {
			return fmt.Errorf("script: %s is a menu with no button mapping", where)
		}
		for btn, slot := range e.Buttons {
			if slot < 0 || slot >= len(e.Branches) {
				return fmt.Errorf("script: %s button %d uses branch slot %d of %d",
					where, btn, slot, len(e.Branches))
			}
		}
	case OpHub, OpFreeplay:
		if e.Hub == nil {
			return fmt.Errorf("script: %s is a hub with no hub spec", where)
		}
		if e.Hub.Exit < -1 {
			return fmt.Errorf("script: %s has exit button %d", where, e.Hub.Exit)
		}
		for _, item := range e.Hub.Items {
			if item.Branch < 1 || item.Branch >= len(e.Branches) {
				return fmt.Errorf("script: %s hub item on button %d uses branch slot %d of %d",
					where, item.Button, item.Branch, len(e.Branches))
			}
			if item.Category < 0 || item.Category >= profile.NumCategories {
				return fmt.Errorf("script: %s hub item on button %d has category %d",
					where, item.Button, item.Category)
			}
		}
	case OpPuzzle:
		if e.Category < 0 || e.Category >= profile.NumCategories {
			return fmt.Errorf("script: %s has difficulty category %d", where, e.Category)
		}
	case OpSlides:
		if e.Slides.DelayMs <= 0 {
			return fmt.Errorf("script: %s has slide delay %d ms", where, e.Slides.DelayMs)
		}
	}
	return nil
}

// Len reports the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entry returns entry i.
func (t *Table) Entry(i int) Entry {
	if i < 0 || i >= len(t.entries) {
		panic(fmt.Sprintf("script: entry %d out of range (table has %d)", i, len(t.entries)))
	}
	return t.entries[i]
}

// Lookup resolves a label to its cursor.
func (t *Table) Lookup(label string) (int, bool) {
	i, ok := t.labels[label]
	return i, ok
}

// NoHub marks an unset parent-hub linkage.
const NoHub = -1

// Engine walks a table. The cursor and the parent-hub linkage are the only
// mutable pieces; the hub linkage is recorded when an entry dispatches via
// EnterSub and consumed by Win and Return, never rebuilt from the table.
type Engine struct {
	table  *Table
	log    zerolog.Logger
	cursor int
	hub    int
}

// NewEngine starts a walk at cursor 0 with no hub recorded.
func NewEngine(t *Table, log zerolog.Logger) *Engine {
	return &Engine{
		table: t,
		log:   log.With().Str("sys", "script").Logger(),
		hub:   NoHub,
	}
}

// Cursor is the current entry index.
func (e *Engine) Cursor() int { return e.cursor }

// HubCursor is the recorded parent-hub entry index, or NoHub.
func (e *Engine) HubCursor() int { return e.hub }

// Current returns the entry under the cursor.
func (e *Engine) Current() Entry { return e.table.Entry(e.cursor) }

// Apply moves the cursor per the outcome. Continue leaves it alone. End
// takes the default branch. EnterSub records the dispatching entry as the
// parent hub and takes the selected branch; an unmapped branch index
// panics. Win and Return jump to the recorded hub; with none recorded they
// panic.
func (e *Engine) Apply(o types.Outcome) {
	cur := e.Current()
	switch o.Kind {
	case types.Continue:
	case types.End:
		e.jump(cur.Branches[0])
	case types.EnterSub:
		if o.Index < 0 || o.Index >= len(cur.Branches) {
			panic(fmt.Sprintf("script: entry %d has no branch %d for enter-sub", e.cursor, o.Index))
		}
		e.hub = e.cursor
		e.jump(cur.Branches[o.Index])
	case types.Win, types.Return:
		if e.hub == NoHub {
			panic(fmt.Sprintf("script: %v at entry %d with no hub recorded", o.Kind, e.cursor))
		}
		e.jump(e.hub)
	default:
		panic(fmt.Sprintf("script: unknown outcome %v at entry %d", o.Kind, e.cursor))
	}
}

func (e *Engine) jump(target int) {
	if target < 0 || target >= e.table.Len() {
		panic(fmt.Sprintf("script: jump to %d, table has %d entries", target, e.table.Len()))
	}
	e.log.Debug().Int("from", e.cursor).Int("to", target).Msg("cursor moved")
	e.cursor = target
}
