package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI installs the DSL constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Script { start = "..." }
	L.SetGlobal("Script", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.script = tbl
		return 0
	}))

	// entry "label" { ... } is curried: entry("label") returns a function
	// that takes the body table.
	L.SetGlobal("entry", L.NewFunction(func(L *lua.LState) int {
		label := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.entries = append(coll.entries, rawEntry{label: label, table: tbl})
			return 0
		}))
		return 1
	}))
}
