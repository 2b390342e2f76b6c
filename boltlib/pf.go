package boltlib

import (
	"encoding/binary"
	"fmt"
	"os"
)

// PackFile is the movie container that travels alongside the BLT file.
// Entries are keyed by four-character names ("INTR", "FNLE") instead of
// numeric ids, and each entry stores an explicit size.
//
// File layout (big-endian):
//
//	offset 0 | magic "PFPF"
//	offset 4 | u32 entry count
//	offset 8 | count × {4-byte name, u32 offset, u32 size}
//	...      | entry payloads
type PackFile struct {
	data    []byte
	entries []PackEntry
	index   map[string]int
}

// PackEntry is one named span in a pack file.
type PackEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

const (
	pfMagic        = "PFPF"
	pfHeaderSize   = 8
	pfEntrySize    = 12
	timelineHeader = 12
	cueStride      = 6
)

// OpenPack reads and parses the pack file at path.
func OpenPack(path string) (*PackFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boltlib: open pack: %w", err)
	}
	p, err := NewPack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// NewPack parses a pack file from an in-memory image. The pack keeps data;
// callers must not mutate it afterwards.
func NewPack(data []byte) (*PackFile, error) {
	if len(data) < pfHeaderSize {
		return nil, formatErr(InvalidID, "pack file too short for header (%d bytes)", len(data))
	}
	if string(data[:4]) != pfMagic {
		return nil, formatErr(InvalidID, "bad pack magic %q", data[:4])
	}
	count := binary.BigEndian.Uint32(data[4:])
	if count > maxSaneEntries {
		return nil, formatErr(InvalidID, "implausible pack entry count %d", count)
	}
	dirEnd := pfHeaderSize + int(count)*pfEntrySize
	if dirEnd > len(data) {
		return nil, formatErr(InvalidID, "pack directory truncated: need %d bytes, have %d", dirEnd, len(data))
	}

	p := &PackFile{
		data:    data,
		entries: make([]PackEntry, count),
		index:   make(map[string]int, count),
	}
	for i := range p.entries {
		rec := data[pfHeaderSize+i*pfEntrySize:]
		e := PackEntry{
			Name:   string(rec[:4]),
			Offset: binary.BigEndian.Uint32(rec[4:]),
			Size:   binary.BigEndian.Uint32(rec[8:]),
		}
		if _, dup := p.index[e.Name]; dup {
			return nil, formatErr(InvalidID, "duplicate pack entry %q", e.Name)
		}
		if int(e.Offset) < dirEnd || int(e.Offset)+int(e.Size) > len(data) {
			return nil, formatErr(InvalidID, "pack entry %q span outside file", e.Name)
		}
		p.entries[i] = e
		p.index[e.Name] = i
	}
	return p, nil
}

// Resolve looks up a pack entry by name.
func (p *PackFile) Resolve(name string) (PackEntry, bool) {
	i, ok := p.index[name]
	if !ok {
		return PackEntry{}, false
	}
	return p.entries[i], true
}

// Has reports whether the pack holds an entry with this name.
func (p *PackFile) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Names returns every entry name in file order.
func (p *PackFile) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Name
	}
	return out
}

// Cue is one timeline event: at Tick, fire trigger Code.
type Cue struct {
	Tick uint32
	Code uint16
}

// Timeline is a movie playback program: total duration in ticks, an optional
// sound resource started with playback, and the cue list in strictly
// ascending tick order.
//
// Payload layout (big-endian): {u16 cue count, u16 reserved, u32 duration
// ticks, u32 sound id} followed by count × {u32 tick, u16 code}.
type Timeline struct {
	Duration uint32
	Sound    ResourceID
	Cues     []Cue
}

// LoadTimeline decodes the named movie's timeline.
func (p *PackFile) LoadTimeline(name string) (*Timeline, error) {
	e, ok := p.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("boltlib: movie %q: %w", name, ErrNotFound)
	}
	b := p.data[e.Offset : e.Offset+e.Size]
	if len(b) < timelineHeader {
		return nil, formatErr(InvalidID, "movie %q timeline truncated (%d bytes)", name, len(b))
	}
	count := int(binary.BigEndian.Uint16(b))
	t := &Timeline{
		Duration: binary.BigEndian.Uint32(b[4:]),
		Sound:    ResourceID(binary.BigEndian.Uint32(b[8:])),
		Cues:     make([]Cue, count),
	}
	if len(b) != timelineHeader+count*cueStride {
		return nil, formatErr(InvalidID, "movie %q declares %d cues but stores %d payload bytes",
			name, count, len(b)-timelineHeader)
	}
	for i := range t.Cues {
		rec := b[timelineHeader+i*cueStride:]
		t.Cues[i] = Cue{
			Tick: binary.BigEndian.Uint32(rec),
			Code: binary.BigEndian.Uint16(rec[4:]),
		}
		if i > 0 && t.Cues[i].Tick <= t.Cues[i-1].Tick {
			return nil, formatErr(InvalidID, "movie %q cue %d out of order", name, i)
		}
		if t.Cues[i].Tick > t.Duration {
			return nil, formatErr(InvalidID, "movie %q cue %d beyond duration", name, i)
		}
	}
	return t, nil
}
