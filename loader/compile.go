package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/profile"
	"github.com/nathoo/boltcore/engine/script"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	script  *lua.LTable
	entries []rawEntry
}

// rawEntry holds one entry body before compilation, in declaration order.
type rawEntry struct {
	label string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an integer field from a Lua table, or def if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getID reads a resource id given as a hex string ("0x0118") or a plain
// number. ok reports whether the field was present at all.
func getID(tbl *lua.LTable, key string) (id boltlib.ResourceID, ok bool, err error) {
	switch val := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return boltlib.InvalidID, false, nil
	case lua.LString:
		id, err := boltlib.ParseID(string(val))
		return id, true, err
	case lua.LNumber:
		n := uint32(val)
		if n <= 0xFFFF {
			return boltlib.ShortID(uint16(n)).Full(), true, nil
		}
		return boltlib.ResourceID(n), true, nil
	default:
		return boltlib.InvalidID, true, fmt.Errorf("%s must be a string or number", key)
	}
}

// opFields are the mutually exclusive fields selecting an entry's op.
var opFields = []struct {
	key string
	op  script.Op
}{
	{"movie", script.OpMovie},
	{"menu", script.OpMenu},
	{"hub", script.OpHub},
	{"freeplay", script.OpFreeplay},
	{"puzzle", script.OpPuzzle},
	{"slides", script.OpSlides},
}

// compile turns the collected raw entries into script entries with
// branch targets resolved from labels to cursor indices. Problems go
// into ve; the returned slice is only meaningful when ve stays clean.
func compile(coll *collector, ve *ValidationError) []script.Entry {
	if coll.script == nil {
		ve.errf("no Script{} block found")
	}
	if len(coll.entries) == 0 {
		ve.errf("no entries defined")
		return nil
	}

	// Duplicate labels break resolution; report and keep the first.
	seen := map[string]bool{}
	raws := coll.entries[:0:0]
	for _, raw := range coll.entries {
		if seen[raw.label] {
			ve.errf("duplicate entry label %q", raw.label)
			continue
		}
		seen[raw.label] = true
		raws = append(raws, raw)
	}

	// The start entry becomes cursor 0; the rest keep declaration order.
	if coll.script != nil {
		if start := getString(coll.script, "start"); start != "" {
			at := -1
			for i, raw := range raws {
				if raw.label == start {
					at = i
					break
				}
			}
			if at < 0 {
				ve.errf("start entry %q is not defined", start)
			} else if at > 0 {
				moved := raws[at]
				copy(raws[1:at+1], raws[:at])
				raws[0] = moved
			}
		}
	}

	labels := make(map[string]int, len(raws))
	for i, raw := range raws {
		labels[raw.label] = i
	}

	entries := make([]script.Entry, len(raws))
	for i, raw := range raws {
		entries[i] = compileEntry(raw, i, labels, ve)
	}
	return entries
}

func compileEntry(raw rawEntry, index int, labels map[string]int, ve *ValidationError) script.Entry {
	tbl := raw.table
	e := script.Entry{Label: raw.label, WinMovie: getString(tbl, "win_movie")}

	// Exactly one op field selects the entry kind.
	picked := -1
	for f, of := range opFields {
		if tbl.RawGetString(of.key) != lua.LNil {
			if picked >= 0 {
				ve.errf("entry %q declares both %s and %s", raw.label, opFields[picked].key, of.key)
				continue
			}
			picked = f
		}
	}
	if picked < 0 {
		ve.errf("entry %q has no operation field", raw.label)
		return e
	}
	opKey := opFields[picked].key
	e.Op = opFields[picked].op

	// Branch slot 0 is the default-next target; omitting next loops the
	// entry onto itself.
	resolve := func(target string) int {
		idx, ok := labels[target]
		if !ok {
			ve.errf("entry %q targets undefined label %q", raw.label, target)
			return index
		}
		return idx
	}
	next := index
	if n := getString(tbl, "next"); n != "" {
		next = resolve(n)
	}
	e.Branches = []int{next}

	// slotOf resolves a target label to a branch slot, reusing slots for
	// repeated targets.
	slotOf := func(target string) int {
		idx := resolve(target)
		for s, b := range e.Branches {
			if b == idx {
				return s
			}
		}
		e.Branches = append(e.Branches, idx)
		return len(e.Branches) - 1
	}

	switch e.Op {
	case script.OpMovie:
		e.Movie = getString(tbl, "movie")
		if len(e.Movie) != 4 {
			ve.errf("entry %q: movie name %q must be 4 characters", raw.label, e.Movie)
		}

	case script.OpMenu:
		e.Param = compileID(tbl, opKey, raw.label, ve)
		buttons := getTable(tbl, "buttons")
		if buttons == nil {
			ve.errf("entry %q: menu needs a buttons table", raw.label)
			break
		}
		// Assign branch slots in button order so the compiled table
		// comes out the same on every load.
		var btns []int
		targets := map[int]string{}
		buttons.ForEach(func(k, v lua.LValue) {
			btn, ok := k.(lua.LNumber)
			if !ok {
				ve.errf("entry %q: button keys must be numbers", raw.label)
				return
			}
			target, ok := v.(lua.LString)
			if !ok {
				ve.errf("entry %q: button %d target must be a label", raw.label, int(btn))
				return
			}
			btns = append(btns, int(btn))
			targets[int(btn)] = string(target)
		})
		sort.Ints(btns)
		e.Buttons = make(map[int]int, len(btns))
		for _, b := range btns {
			e.Buttons[b] = slotOf(targets[b])
		}
		if len(e.Buttons) == 0 {
			ve.errf("entry %q: menu has no buttons", raw.label)
		}

	case script.OpHub, script.OpFreeplay:
		e.Param = compileID(tbl, opKey, raw.label, ve)
		e.Hub = &script.HubSpec{Exit: getInt(tbl, "exit", -1)}
		items := getTable(tbl, "items")
		if items == nil {
			ve.errf("entry %q: hub needs an items table", raw.label)
			break
		}
		items.ForEach(func(_, v lua.LValue) {
			item, ok := v.(*lua.LTable)
			if !ok {
				ve.errf("entry %q: hub items must be tables", raw.label)
				return
			}
			e.Hub.Items = append(e.Hub.Items, compileHubItem(item, raw.label, slotOf, ve))
		})
		if len(e.Hub.Items) == 0 {
			ve.errf("entry %q: hub has no items", raw.label)
		}

	case script.OpPuzzle:
		e.Param = compileID(tbl, opKey, raw.label, ve)
		e.Category = compileCategory(tbl, raw.label, ve)

	case script.OpSlides:
		e.Param = compileID(tbl, opKey, raw.label, ve)
		e.Slides.DelayMs = getInt(tbl, "delay_ms", 0)
		if e.Slides.DelayMs <= 0 {
			ve.errf("entry %q: slides need a positive delay_ms", raw.label)
		}
	}

	return e
}

func compileID(tbl *lua.LTable, key, label string, ve *ValidationError) boltlib.ResourceID {
	id, _, err := getID(tbl, key)
	if err != nil {
		ve.errf("entry %q: %v", label, err)
	}
	return id
}

func compileHubItem(tbl *lua.LTable, label string, slotOf func(string) int, ve *ValidationError) script.HubItem {
	item := script.HubItem{Button: getInt(tbl, "button", 0)}

	target := getString(tbl, "puzzle")
	if target == "" {
		ve.errf("entry %q: hub item needs a puzzle label", label)
		item.Branch = 1
	} else {
		item.Branch = slotOf(target)
		if item.Branch == 0 {
			ve.errf("entry %q: hub item %q collides with the default branch", label, target)
			item.Branch = 1
		}
	}

	if cat := getString(tbl, "category"); cat != "" {
		c, ok := profile.CategoryByName(cat)
		if !ok {
			ve.errf("entry %q: unknown category %q", label, cat)
		} else {
			item.Category = c
		}
	}

	marker, present, err := getID(tbl, "marker")
	if err != nil {
		ve.errf("entry %q: %v", label, err)
	}
	if present {
		item.Marker = marker
	} else {
		item.Marker = boltlib.InvalidID
	}
	return item
}

func compileCategory(tbl *lua.LTable, label string, ve *ValidationError) int {
	cat := getString(tbl, "category")
	if cat == "" {
		ve.warnf("puzzle %q has no category; defaulting to %s", label, profile.CategoryName(profile.CategoryWords))
		return profile.CategoryWords
	}
	c, ok := profile.CategoryByName(cat)
	if !ok {
		ve.errf("entry %q: unknown category %q", label, cat)
		return profile.CategoryWords
	}
	return c
}
