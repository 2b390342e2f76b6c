// Package profile persists player progress: per-category difficulty, the
// solved-puzzle set, and the script position, across a fixed bank of slots.
// Storage goes through the platform app-data directory when available and
// falls back to process memory when it is not; profile trouble must never
// stop play.
package profile

import (
	"encoding/json"
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
)

// NumSlots is the size of the profile bank.
const NumSlots = 12

// Puzzle difficulty categories. Every puzzle belongs to one category and
// reads its level (0..MaxLevel) from the profile.
const (
	CategoryWords = iota
	CategoryMemory
	CategoryLogic
	CategoryTiles
	CategoryPotions
	NumCategories
)

// MaxLevel is the hardest difficulty level.
const MaxLevel = 2

var categoryNames = [NumCategories]string{"words", "memory", "logic", "tiles", "potions"}

// CategoryName returns the category's script-facing name.
func CategoryName(cat int) string {
	if cat < 0 || cat >= NumCategories {
		return "unknown"
	}
	return categoryNames[cat]
}

// CategoryByName resolves a script-facing category name.
func CategoryByName(name string) (int, bool) {
	for i, n := range categoryNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Profile is one player's progress, stored as JSON.
type Profile struct {
	Name       string             `json:"name"`
	Difficulty [NumCategories]int `json:"difficulty"`
	Cheat      bool               `json:"cheat"`
	Solved     []string           `json:"solved"`
	LastLabel  string             `json:"last_label"`
}

// NewProfile starts a profile at mid difficulty with nothing solved.
func NewProfile(name string) *Profile {
	p := &Profile{Name: name, Solved: []string{}}
	for i := range p.Difficulty {
		p.Difficulty[i] = 1
	}
	return p
}

// IsSolved reports whether the puzzle labeled label has been won.
func (p *Profile) IsSolved(label string) bool {
	for _, s := range p.Solved {
		if s == label {
			return true
		}
	}
	return false
}

// MarkSolved records a win. Repeated wins stay a single entry.
func (p *Profile) MarkSolved(label string) {
	if !p.IsSolved(label) {
		p.Solved = append(p.Solved, label)
	}
}

// SetDifficulty sets one category's level.
func (p *Profile) SetDifficulty(cat, level int) error {
	if cat < 0 || cat >= NumCategories {
		return fmt.Errorf("profile: no difficulty category %d", cat)
	}
	if level < 0 || level > MaxLevel {
		return fmt.Errorf("profile: level %d out of range 0..%d", level, MaxLevel)
	}
	p.Difficulty[cat] = level
	return nil
}

// DifficultyFor reads one category's level; unknown categories read as 0.
func (p *Profile) DifficultyFor(cat int) int {
	if cat < 0 || cat >= NumCategories {
		return 0
	}
	return p.Difficulty[cat]
}

const profilesObject = "profiles"

// Store is the slot bank. At most one slot is selected at a time; Current
// hands out the live profile and Save writes it back to its slot.
type Store struct {
	m    *gdata.Manager
	log  zerolog.Logger
	mem  map[string][]byte
	cur  int
	prof *Profile
}

// Open binds the store to the per-user app-data directory. When that is
// unavailable (restricted environments), the store degrades to process
// memory with a warning; selections and saves keep working for the session.
func Open(appName string, log zerolog.Logger) *Store {
	s := newStore(log)
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		s.log.Warn().Err(err).Msg("app data unavailable, profiles stay in memory")
		return s
	}
	s.m = m
	return s
}

// NewMemory builds a store that never touches the filesystem.
func NewMemory(log zerolog.Logger) *Store {
	return newStore(log)
}

func newStore(log zerolog.Logger) *Store {
	return &Store{
		log: log.With().Str("sys", "profile").Logger(),
		mem: make(map[string][]byte),
		cur: -1,
	}
}

func slotProp(n int) string { return fmt.Sprintf("slot%02d", n) }

// Select makes slot n current, loading its profile or starting a fresh one
// for an empty slot.
func (s *Store) Select(n int) error {
	if n < 0 || n >= NumSlots {
		return fmt.Errorf("profile: no slot %d", n)
	}
	p, err := s.load(n)
	if err != nil {
		return err
	}
	if p == nil {
		p = NewProfile("")
	}
	s.cur = n
	s.prof = p
	return nil
}

// Slot is the selected slot index, or -1.
func (s *Store) Slot() int { return s.cur }

// Current is the live profile, or nil before any Select.
func (s *Store) Current() *Profile { return s.prof }

// Save writes the live profile back to its slot.
func (s *Store) Save() error {
	if s.prof == nil {
		return fmt.Errorf("profile: no slot selected")
	}
	data, err := json.MarshalIndent(s.prof, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: encode slot %d: %w", s.cur, err)
	}
	return s.store(s.cur, data)
}

// Reset overwrites slot n with a fresh profile. Resetting the selected slot
// also replaces the live profile.
func (s *Store) Reset(n int) error {
	if n < 0 || n >= NumSlots {
		return fmt.Errorf("profile: no slot %d", n)
	}
	fresh := NewProfile("")
	data, err := json.MarshalIndent(fresh, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: encode slot %d: %w", n, err)
	}
	if err := s.store(n, data); err != nil {
		return err
	}
	if n == s.cur {
		s.prof = fresh
	}
	return nil
}

// List reports each slot's profile name; empty slots (and unreadable ones)
// read as "".
func (s *Store) List() [NumSlots]string {
	var names [NumSlots]string
	for n := range names {
		p, err := s.load(n)
		if err != nil || p == nil {
			continue
		}
		names[n] = p.Name
	}
	return names
}

func (s *Store) load(n int) (*Profile, error) {
	var data []byte
	if s.m != nil {
		if !s.m.ObjectPropExists(profilesObject, slotProp(n)) {
			return nil, nil
		}
		var err error
		data, err = s.m.LoadObjectProp(profilesObject, slotProp(n))
		if err != nil {
			return nil, fmt.Errorf("profile: read slot %d: %w", n, err)
		}
	} else {
		var ok bool
		data, ok = s.mem[slotProp(n)]
		if !ok {
			return nil, nil
		}
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: decode slot %d: %w", n, err)
	}
	if p.Solved == nil {
		p.Solved = []string{}
	}
	return &p, nil
}

func (s *Store) store(n int, data []byte) error {
	if s.m != nil {
		if err := s.m.SaveObjectProp(profilesObject, slotProp(n), data); err != nil {
			return fmt.Errorf("profile: write slot %d: %w", n, err)
		}
		return nil
	}
	s.mem[slotProp(n)] = data
	return nil
}
