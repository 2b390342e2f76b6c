package boltlib

import (
	"fmt"
	"strconv"
	"strings"
)

// ResourceID identifies one record in a container directory. The high byte
// carries the directory namespace of the original authoring tool; the reader
// treats the value as opaque.
type ResourceID uint32

// InvalidID is the "no resource here" sentinel. Record fields holding it mean
// the slot is intentionally empty (a plane without an image, a scene without
// color cycles); it never resolves.
const InvalidID ResourceID = 0xFFFFFFFF

// ShortID is the compact 16-bit id form used by authoring tables. The full
// form shifts it into the high word, leaving the low word zero.
type ShortID uint16

// Full widens a short id to the canonical 32-bit form.
func (s ShortID) Full() ResourceID { return ResourceID(s) << 16 }

// Valid reports whether the id can name a real resource.
func (id ResourceID) Valid() bool { return id != InvalidID }

func (id ResourceID) String() string {
	return fmt.Sprintf("0x%08X", uint32(id))
}

// ParseID reads an id from its textual form: up to four hex digits are the
// short encoding, longer strings the full 32-bit encoding. An optional "0x"
// prefix is accepted.
func ParseID(s string) (ResourceID, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return InvalidID, fmt.Errorf("boltlib: empty resource id")
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return InvalidID, fmt.Errorf("boltlib: bad resource id %q: %w", s, err)
	}
	if len(digits) <= 4 {
		return ShortID(v).Full(), nil
	}
	return ResourceID(v), nil
}
