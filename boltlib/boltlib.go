// Package boltlib reads Boltlib (BLT) resource containers: big-endian files
// holding typed, offset-indexed records (images, palettes, scenes, sounds).
//
// File layout:
//
//	offset 0  | magic "BOLT"
//	offset 4  | u32 entry count
//	offset 8  | directory: count × {u32 id, u32 offset, u32 type}
//	...       | resource payloads
//
// Directory offsets are absolute and strictly ascending; a resource's size is
// the distance to the next entry's offset (the last entry runs to end of
// file). The whole file is loaded up front and decoded records borrow
// read-only sub-slices of the backing buffer, valid for the container's
// lifetime.
package boltlib

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// ErrNotFound reports an id with no directory entry. Always an authoring
// bug in the resource data, never a condition to retry.
var ErrNotFound = errors.New("resource not found")

// FormatError reports a malformed container or record: bad magic, wrong type
// tag, truncated payload, or an array whose size is not a multiple of its
// element stride.
type FormatError struct {
	ID     ResourceID
	Reason string
}

func (e *FormatError) Error() string {
	if e.ID.Valid() {
		return fmt.Sprintf("boltlib: resource %v: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("boltlib: %s", e.Reason)
}

func formatErr(id ResourceID, format string, args ...any) error {
	return &FormatError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

const (
	magic          = "BOLT"
	headerSize     = 8
	dirEntrySize   = 12
	maxSaneEntries = 1 << 20
)

// Entry is one directory record: where a resource lives and what the file
// declares it to be.
type Entry struct {
	ID     ResourceID
	Type   Type
	Offset uint32
	Size   uint32
}

// Container is a fully loaded BLT file. Read-only after New returns; safe to
// share by reference across every scene and card for the process lifetime.
type Container struct {
	data    []byte
	entries []Entry
	index   map[ResourceID]int
}

// Open reads and parses the container at path.
func Open(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boltlib: open container: %w", err)
	}
	c, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// New parses a container from an in-memory file image. The container keeps
// data; callers must not mutate it afterwards.
func New(data []byte) (*Container, error) {
	if len(data) < headerSize {
		return nil, formatErr(InvalidID, "file too short for header (%d bytes)", len(data))
	}
	if string(data[:4]) != magic {
		return nil, formatErr(InvalidID, "bad magic %q", data[:4])
	}
	count := binary.BigEndian.Uint32(data[4:])
	if count > maxSaneEntries {
		return nil, formatErr(InvalidID, "implausible entry count %d", count)
	}
	dirEnd := headerSize + int(count)*dirEntrySize
	if dirEnd > len(data) {
		return nil, formatErr(InvalidID, "directory truncated: need %d bytes, have %d", dirEnd, len(data))
	}

	c := &Container{
		data:    data,
		entries: make([]Entry, count),
		index:   make(map[ResourceID]int, count),
	}
	for i := range c.entries {
		rec := data[headerSize+i*dirEntrySize:]
		e := Entry{
			ID:     ResourceID(binary.BigEndian.Uint32(rec)),
			Offset: binary.BigEndian.Uint32(rec[4:]),
			Type:   Type(binary.BigEndian.Uint32(rec[8:])),
		}
		if !e.ID.Valid() {
			return nil, formatErr(InvalidID, "directory entry %d uses the invalid id", i)
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, formatErr(e.ID, "duplicate directory entry")
		}
		if int(e.Offset) < dirEnd || int(e.Offset) > len(data) {
			return nil, formatErr(e.ID, "offset 0x%X outside payload region", e.Offset)
		}
		if i > 0 && e.Offset < c.entries[i-1].Offset {
			return nil, formatErr(e.ID, "directory offsets not ascending")
		}
		c.entries[i] = e
		c.index[e.ID] = i
	}
	// Sizes come from the gap to the next entry.
	for i := range c.entries {
		if i+1 < len(c.entries) {
			c.entries[i].Size = c.entries[i+1].Offset - c.entries[i].Offset
		} else {
			c.entries[i].Size = uint32(len(data)) - c.entries[i].Offset
		}
	}
	return c, nil
}

// NumEntries reports the directory size.
func (c *Container) NumEntries() int { return len(c.entries) }

// Entries returns the directory in file order. Callers must not modify the
// returned slice.
func (c *Container) Entries() []Entry { return c.entries }

// Resolve looks up a directory entry by id.
func (c *Container) Resolve(id ResourceID) (Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// span returns the payload bytes for an entry.
func (c *Container) span(e Entry) []byte {
	return c.data[e.Offset : e.Offset+e.Size]
}

// typed resolves id and checks the declared type tag.
func (c *Container) typed(id ResourceID, want Type) (Entry, error) {
	e, ok := c.Resolve(id)
	if !ok {
		return Entry{}, fmt.Errorf("boltlib: resource %v: %w", id, ErrNotFound)
	}
	if e.Type != want {
		return Entry{}, formatErr(id, "type mismatch: want %v, file declares %v", want, e.Type)
	}
	return e, nil
}

// Fixed returns the payload of a fixed-layout record, validating the declared
// type tag and that the stored size matches the layout size exactly.
func (c *Container) Fixed(id ResourceID, want Type, size int) ([]byte, error) {
	e, err := c.typed(id, want)
	if err != nil {
		return nil, err
	}
	if int(e.Size) != size {
		return nil, formatErr(id, "size mismatch: layout is %d bytes, file stores %d", size, e.Size)
	}
	return c.span(e), nil
}

// Array returns the payload of an array record along with its element count.
// The declared size must be an exact multiple of stride; a remainder means
// the record does not hold whole elements and is malformed.
func (c *Container) Array(id ResourceID, want Type, stride int) ([]byte, int, error) {
	e, err := c.typed(id, want)
	if err != nil {
		return nil, 0, err
	}
	if int(e.Size)%stride != 0 {
		return nil, 0, formatErr(id, "size %d is not a multiple of element stride %d", e.Size, stride)
	}
	return c.span(e), int(e.Size) / stride, nil
}
