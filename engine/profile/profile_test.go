package profile

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func memStore() *Store {
	return NewMemory(zerolog.Nop())
}

func TestRoundTrip(t *testing.T) {
	s := memStore()
	if err := s.Select(3); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// Modify the live profile.
	p := s.Current()
	p.Name = "Morgan"
	p.Cheat = true
	p.LastLabel = "hub_pots"
	p.MarkSolved("puz_word_1")
	p.MarkSolved("puz_mem_1")
	if err := p.SetDifficulty(CategoryLogic, 2); err != nil {
		t.Fatalf("SetDifficulty failed: %v", err)
	}

	// Save.
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Reload through another slot and back.
	if err := s.Select(0); err != nil {
		t.Fatalf("Select 0 failed: %v", err)
	}
	if err := s.Select(3); err != nil {
		t.Fatalf("reselect failed: %v", err)
	}

	// Verify.
	p2 := s.Current()
	if p2.Name != "Morgan" {
		t.Errorf("expected name 'Morgan', got %q", p2.Name)
	}
	if !p2.Cheat {
		t.Error("expected cheat flag preserved")
	}
	if p2.LastLabel != "hub_pots" {
		t.Errorf("expected last label 'hub_pots', got %q", p2.LastLabel)
	}
	if !p2.IsSolved("puz_word_1") || !p2.IsSolved("puz_mem_1") {
		t.Errorf("expected solved set preserved, got %v", p2.Solved)
	}
	if p2.IsSolved("puz_tiles_1") {
		t.Error("unexpected solved entry")
	}
	if p2.DifficultyFor(CategoryLogic) != 2 {
		t.Errorf("expected logic level 2, got %d", p2.DifficultyFor(CategoryLogic))
	}
	if p2.DifficultyFor(CategoryWords) != 1 {
		t.Errorf("expected default level 1, got %d", p2.DifficultyFor(CategoryWords))
	}
}

func TestSelect_EmptySlotIsFresh(t *testing.T) {
	s := memStore()
	if err := s.Select(7); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	p := s.Current()
	if p.Name != "" || len(p.Solved) != 0 || p.Cheat {
		t.Errorf("expected fresh profile, got %+v", p)
	}
	if s.Slot() != 7 {
		t.Errorf("expected slot 7, got %d", s.Slot())
	}
}

func TestSelect_RejectsBadSlot(t *testing.T) {
	s := memStore()
	if err := s.Select(-1); err == nil {
		t.Error("expected error for slot -1")
	}
	if err := s.Select(NumSlots); err == nil {
		t.Errorf("expected error for slot %d", NumSlots)
	}
	if s.Current() != nil {
		t.Error("failed select must not leave a profile behind")
	}
}

func TestSave_WithoutSelection(t *testing.T) {
	s := memStore()
	if err := s.Save(); err == nil {
		t.Error("expected error saving with no slot selected")
	}
}

func TestReset_ClearsSlot(t *testing.T) {
	s := memStore()
	if err := s.Select(2); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	s.Current().Name = "Wart"
	s.Current().MarkSolved("puz_word_1")
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Reset(2); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	// The live profile was replaced too.
	if s.Current().Name != "" || len(s.Current().Solved) != 0 {
		t.Errorf("expected live profile reset, got %+v", s.Current())
	}
	if err := s.Select(2); err != nil {
		t.Fatalf("reselect failed: %v", err)
	}
	if s.Current().IsSolved("puz_word_1") {
		t.Error("expected stored slot reset")
	}
}

func TestList_NamesSlots(t *testing.T) {
	s := memStore()
	for i, name := range map[int]string{1: "Morgan", 5: "Wart"} {
		if err := s.Select(i); err != nil {
			t.Fatalf("Select %d failed: %v", i, err)
		}
		s.Current().Name = name
		if err := s.Save(); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}
	names := s.List()
	if names[1] != "Morgan" || names[5] != "Wart" {
		t.Errorf("expected named slots, got %v", names)
	}
	if names[0] != "" || names[11] != "" {
		t.Errorf("expected empty slots blank, got %v", names)
	}
}

func TestSave_ProducesValidJSON(t *testing.T) {
	s := memStore()
	if err := s.Select(0); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	s.Current().Name = "Morgan"
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data := s.mem[slotProp(0)]
	if !json.Valid(data) {
		t.Fatal("stored slot is not valid JSON")
	}
	var raw map[string]any
	json.Unmarshal(data, &raw)
	if raw["name"] != "Morgan" {
		t.Errorf("expected name 'Morgan', got %v", raw["name"])
	}
}

func TestLoad_MissingOptionalFields(t *testing.T) {
	s := memStore()
	// Minimal JSON, no solved list.
	s.mem[slotProp(4)] = []byte(`{"name":"Old","difficulty":[0,1,2,1,0]}`)

	if err := s.Select(4); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	p := s.Current()
	if p.Solved == nil {
		t.Error("expected non-nil solved list")
	}
	if p.Name != "Old" {
		t.Errorf("expected name 'Old', got %q", p.Name)
	}
	if p.DifficultyFor(CategoryTiles) != 1 {
		t.Errorf("expected tiles level 1, got %d", p.DifficultyFor(CategoryTiles))
	}
}

func TestSelect_CorruptSlotSurfacesError(t *testing.T) {
	s := memStore()
	s.mem[slotProp(9)] = []byte(`{not json`)
	if err := s.Select(9); err == nil {
		t.Error("expected error for corrupt slot")
	}
}

func TestProfile_DifficultyValidation(t *testing.T) {
	p := NewProfile("x")
	if err := p.SetDifficulty(-1, 0); err == nil {
		t.Error("expected error for bad category")
	}
	if err := p.SetDifficulty(CategoryWords, MaxLevel+1); err == nil {
		t.Error("expected error for bad level")
	}
	if got := p.DifficultyFor(99); got != 0 {
		t.Errorf("expected unknown category to read 0, got %d", got)
	}
}

func TestCategoryNames(t *testing.T) {
	for cat := 0; cat < NumCategories; cat++ {
		name := CategoryName(cat)
		back, ok := CategoryByName(name)
		if !ok || back != cat {
			t.Errorf("category %d (%s) did not round-trip: %d %v", cat, name, back, ok)
		}
	}
	if _, ok := CategoryByName("juggling"); ok {
		t.Error("expected unknown category name to miss")
	}
	if CategoryName(-1) != "unknown" {
		t.Errorf("expected 'unknown', got %q", CategoryName(-1))
	}
}
