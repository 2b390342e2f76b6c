package loader

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/profile"
	"github.com/nathoo/boltcore/engine/script"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

// compileSource runs src and compiles the collected entries without
// building a table, so error cases can be inspected directly.
func compileSource(t *testing.T, src string) ([]script.Entry, *ValidationError) {
	t.Helper()
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(src); err != nil {
		t.Fatalf("lua error: %v", err)
	}
	ve := &ValidationError{}
	entries := compile(coll, ve)
	return entries, ve
}

func TestEntry_DeclarationOrder(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		entry "first"  { movie = "AAAA" }
		entry "second" { movie = "BBBB" }
		entry "third"  { movie = "CCCC" }
	`); err != nil {
		t.Fatal(err)
	}

	if len(coll.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(coll.entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if coll.entries[i].label != want {
			t.Errorf("entry %d = %q, want %q", i, coll.entries[i].label, want)
		}
	}
}

func TestCompile_MovieEntry(t *testing.T) {
	entries, ve := compileSource(t, `
		Script { start = "intro" }
		entry "intro" { movie = "INTR", next = "menu" }
		entry "menu"  { menu = "0x0118", buttons = { [0] = "intro" } }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}

	intro := entries[0]
	if intro.Op != script.OpMovie {
		t.Errorf("Op = %s, want movie", intro.Op)
	}
	if intro.Movie != "INTR" {
		t.Errorf("Movie = %q, want INTR", intro.Movie)
	}
	if len(intro.Branches) != 1 || intro.Branches[0] != 1 {
		t.Errorf("Branches = %v, want [1]", intro.Branches)
	}
}

func TestCompile_MenuButtonSlots(t *testing.T) {
	// Buttons sharing a target share a branch slot; a button pointing
	// at the default-next target lands on slot 0.
	entries, ve := compileSource(t, `
		Script { start = "menu" }
		entry "menu" {
		    menu = "0x0118",
		    next = "credits",
		    buttons = { [0] = "hub_a", [1] = "hub_b", [2] = "hub_a", [3] = "credits" },
		}
		entry "hub_a"   { movie = "HUBA", next = "menu" }
		entry "hub_b"   { movie = "HUBB", next = "menu" }
		entry "credits" { movie = "CRED", next = "menu" }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}

	menu := entries[0]
	wantButtons := map[int]int{0: 1, 1: 2, 2: 1, 3: 0}
	for btn, slot := range wantButtons {
		if menu.Buttons[btn] != slot {
			t.Errorf("button %d slot = %d, want %d", btn, menu.Buttons[btn], slot)
		}
	}
	wantBranches := []int{3, 1, 2}
	if len(menu.Branches) != len(wantBranches) {
		t.Fatalf("Branches = %v, want %v", menu.Branches, wantBranches)
	}
	for i, b := range wantBranches {
		if menu.Branches[i] != b {
			t.Errorf("branch %d = %d, want %d", i, menu.Branches[i], b)
		}
	}
}

func TestCompile_StartReorder(t *testing.T) {
	entries, ve := compileSource(t, `
		Script { start = "menu" }
		entry "intro" { movie = "INTR", next = "menu" }
		entry "menu"  { menu = "0x0118", buttons = { [0] = "intro" } }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}

	if entries[0].Label != "menu" {
		t.Errorf("entry 0 = %q, want menu", entries[0].Label)
	}
	if entries[1].Label != "intro" {
		t.Errorf("entry 1 = %q, want intro", entries[1].Label)
	}
	// Targets resolve against the reordered layout.
	if entries[1].Branches[0] != 0 {
		t.Errorf("intro next = %d, want 0", entries[1].Branches[0])
	}
	if entries[0].Buttons[0] != 1 {
		t.Errorf("menu button 0 slot = %d, want 1", entries[0].Buttons[0])
	}
}

func TestCompile_DefaultNextLoops(t *testing.T) {
	entries, ve := compileSource(t, `
		Script { start = "credits" }
		entry "credits" { slides = "0x0640", delay_ms = 500 }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}

	credits := entries[0]
	if credits.Op != script.OpSlides {
		t.Errorf("Op = %s, want slides", credits.Op)
	}
	if credits.Slides.DelayMs != 500 {
		t.Errorf("DelayMs = %d, want 500", credits.Slides.DelayMs)
	}
	if len(credits.Branches) != 1 || credits.Branches[0] != 0 {
		t.Errorf("Branches = %v, want self-loop [0]", credits.Branches)
	}
}

func TestCompile_NumericIDs(t *testing.T) {
	entries, ve := compileSource(t, `
		Script { start = "menu" }
		entry "menu" { menu = 0x0118, buttons = { [0] = "full" } }
		entry "full" { puzzle = 0x31000001, category = "logic", next = "menu" }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}

	// Values that fit a short id are promoted to the high half.
	if entries[0].Param != 0x01180000 {
		t.Errorf("menu param = %08x, want 01180000", uint32(entries[0].Param))
	}
	if entries[1].Param != 0x31000001 {
		t.Errorf("puzzle param = %08x, want 31000001", uint32(entries[1].Param))
	}
	if entries[1].Category != profile.CategoryLogic {
		t.Errorf("category = %d, want logic", entries[1].Category)
	}
}

func TestCompile_HubDefaults(t *testing.T) {
	entries, ve := compileSource(t, `
		Script { start = "free" }
		entry "free" {
		    freeplay = "0x0200",
		    items = { { button = 2, puzzle = "tiles" } },
		}
		entry "tiles" { puzzle = "0x3200", category = "tiles", next = "free" }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}

	free := entries[0]
	if free.Op != script.OpFreeplay {
		t.Errorf("Op = %s, want freeplay", free.Op)
	}
	if free.Hub.Exit != -1 {
		t.Errorf("Exit = %d, want -1 default", free.Hub.Exit)
	}
	item := free.Hub.Items[0]
	if item.Button != 2 {
		t.Errorf("Button = %d, want 2", item.Button)
	}
	if item.Marker != boltlib.InvalidID {
		t.Errorf("Marker = %08x, want invalid", uint32(item.Marker))
	}
	if free.Branches[item.Branch] != 1 {
		t.Errorf("item branch resolves to %d, want 1", free.Branches[item.Branch])
	}
}

func TestCompile_PuzzleDefaultCategory(t *testing.T) {
	entries, ve := compileSource(t, `
		Script { start = "p" }
		entry "p" { puzzle = "0x3100" }
	`)
	if len(ve.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}
	if len(ve.Warnings) != 1 || !strings.Contains(ve.Warnings[0], "has no category") {
		t.Errorf("warnings = %v, want a default-category warning", ve.Warnings)
	}
	if entries[0].Category != profile.CategoryWords {
		t.Errorf("category = %d, want words default", entries[0].Category)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"duplicate label",
			`Script { start = "a" }
			 entry "a" { movie = "AAAA" }
			 entry "a" { movie = "BBBB" }`,
			`duplicate entry label "a"`,
		},
		{
			"undefined start",
			`Script { start = "ghost" }
			 entry "a" { movie = "AAAA" }`,
			`start entry "ghost" is not defined`,
		},
		{
			"undefined target",
			`Script { start = "a" }
			 entry "a" { movie = "AAAA", next = "ghost" }`,
			`targets undefined label "ghost"`,
		},
		{
			"no script block",
			`entry "a" { movie = "AAAA" }`,
			"no Script{} block",
		},
		{
			"no entries",
			`Script { start = "a" }`,
			"no entries defined",
		},
		{
			"two operation fields",
			`Script { start = "a" }
			 entry "a" { movie = "AAAA", menu = "0x0118" }`,
			"declares both movie and menu",
		},
		{
			"no operation field",
			`Script { start = "a" }
			 entry "a" { next = "a" }`,
			"has no operation field",
		},
		{
			"short movie name",
			`Script { start = "a" }
			 entry "a" { movie = "IN" }`,
			"must be 4 characters",
		},
		{
			"menu without buttons",
			`Script { start = "a" }
			 entry "a" { menu = "0x0118" }`,
			"menu needs a buttons table",
		},
		{
			"menu with empty buttons",
			`Script { start = "a" }
			 entry "a" { menu = "0x0118", buttons = {} }`,
			"menu has no buttons",
		},
		{
			"bad button key",
			`Script { start = "a" }
			 entry "a" { menu = "0x0118", buttons = { north = "a" } }`,
			"button keys must be numbers",
		},
		{
			"bad button target",
			`Script { start = "a" }
			 entry "a" { menu = "0x0118", buttons = { [0] = 42 } }`,
			"button 0 target must be a label",
		},
		{
			"hub without items",
			`Script { start = "a" }
			 entry "a" { hub = "0x0200" }`,
			"hub needs an items table",
		},
		{
			"hub with empty items",
			`Script { start = "a" }
			 entry "a" { hub = "0x0200", items = {} }`,
			"hub has no items",
		},
		{
			"hub item without puzzle",
			`Script { start = "a" }
			 entry "a" { hub = "0x0200", items = { { button = 0 } } }`,
			"hub item needs a puzzle label",
		},
		{
			"hub item on default branch",
			`Script { start = "h" }
			 entry "h" {
			     hub = "0x0200",
			     next = "m",
			     items = { { button = 0, puzzle = "m" } },
			 }
			 entry "m" { movie = "MMMM", next = "h" }`,
			`hub item "m" collides with the default branch`,
		},
		{
			"unknown puzzle category",
			`Script { start = "p" }
			 entry "p" { puzzle = "0x3100", category = "arcane" }`,
			`unknown category "arcane"`,
		},
		{
			"unknown item category",
			`Script { start = "h" }
			 entry "h" {
			     hub = "0x0200",
			     items = { { button = 0, puzzle = "p", category = "maths" } },
			 }
			 entry "p" { puzzle = "0x3100", category = "words", next = "h" }`,
			`unknown category "maths"`,
		},
		{
			"id with wrong type",
			`Script { start = "a" }
			 entry "a" { menu = true, buttons = { [0] = "a" } }`,
			"menu must be a string or number",
		},
		{
			"id with bad hex",
			`Script { start = "a" }
			 entry "a" { menu = "xyzzy", buttons = { [0] = "a" } }`,
			"bad resource id",
		},
		{
			"slides without delay",
			`Script { start = "s" }
			 entry "s" { slides = "0x0640" }`,
			"positive delay_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ve := compileSource(t, tt.src)
			if len(ve.Errors) == 0 {
				t.Fatal("expected compile errors, got none")
			}
			if !strings.Contains(ve.Error(), tt.want) {
				t.Errorf("errors = %q, expected %q", ve.Error(), tt.want)
			}
		})
	}
}
