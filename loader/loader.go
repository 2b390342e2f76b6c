// Package loader compiles the progression script from a Lua DSL into the
// immutable script table. The Lua VM is sandboxed and discarded after
// loading, so nothing of Lua survives into playback.
//
// A script source looks like:
//
//	Script { start = "intro" }
//
//	entry "intro" { movie = "INTR", next = "main_menu" }
//
//	entry "main_menu" {
//	    menu    = "0x0118",
//	    buttons = { [0] = "hub_pots", [1] = "credits" },
//	}
//
//	entry "hub_pots" {
//	    hub  = "0x0A00",
//	    exit = 1,
//	    next = "main_menu",
//	    items = {
//	        { button = 0, puzzle = "puz_word_1", category = "words", marker = "0x0630" },
//	    },
//	}
//
//	entry "puz_word_1" {
//	    puzzle    = "0x3100",
//	    category  = "words",
//	    win_movie = "WGRT",
//	    next      = "hub_pots",
//	}
//
//	entry "credits" { slides = "0x0640", delay_ms = 500, next = "main_menu" }
//
// Branch targets are labels; the compiler resolves them to cursor indices
// and builds each entry's branch table.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/boltcore/engine/script"
)

// Catalog answers whether a movie name exists in the loaded reel pack.
// A nil catalog skips movie checks.
type Catalog interface {
	Has(name string) bool
}

// Load reads all .lua files from dir, compiles them into a validated
// script table, and returns it with any validation warnings. The VM is
// closed before Load returns.
func Load(dir string, cat Catalog) (*script.Table, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading script directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	return build(coll, cat)
}

// LoadSource compiles a single in-memory script, mainly for tests and
// tooling.
func LoadSource(src string, cat Catalog) (*script.Table, []string, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	if err := L.DoString(src); err != nil {
		return nil, nil, fmt.Errorf("executing script: %w", err)
	}
	return build(coll, cat)
}

func build(coll *collector, cat Catalog) (*script.Table, []string, error) {
	ve := &ValidationError{}
	entries := compile(coll, ve)
	validate(entries, cat, ve)
	if len(ve.Errors) > 0 {
		return nil, ve.Warnings, ve
	}

	tbl, err := script.NewTable(entries)
	if err != nil {
		return nil, ve.Warnings, fmt.Errorf("script table: %w", err)
	}
	return tbl, ve.Warnings, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes filesystem and loader access from the VM.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Keep scripts deterministic.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}

// sortedLuaFiles orders script files: main.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	var mainFile string
	var others []string
	for _, f := range files {
		if f == "main.lua" {
			mainFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if mainFile != "" {
		return append([]string{mainFile}, others...)
	}
	return others
}
