package boltlib

import "strconv"

// Type is the declared kind tag stored in the container directory. Decoding
// validates the tag before trusting a record's layout.
type Type uint32

const (
	TypeU8Values       Type = 1
	TypeU16Values      Type = 3
	TypeResourceList   Type = 6
	TypeSound          Type = 7
	TypeImage          Type = 8
	TypePalette        Type = 10
	TypeColorCycles    Type = 11
	TypeCycleSlot      Type = 12
	TypePlane          Type = 26
	TypeSprites        Type = 27
	TypeColors         Type = 28
	TypePaletteMods    Type = 29
	TypeButtonGraphics Type = 30
	TypeButtons        Type = 31
	TypeScene          Type = 32
	TypeMainMenu       Type = 33
)

var typeNames = map[Type]string{
	TypeU8Values:       "u8-values",
	TypeU16Values:      "u16-values",
	TypeResourceList:   "resource-list",
	TypeSound:          "sound",
	TypeImage:          "image",
	TypePalette:        "palette",
	TypeColorCycles:    "color-cycles",
	TypeCycleSlot:      "cycle-slot",
	TypePlane:          "plane",
	TypeSprites:        "sprites",
	TypeColors:         "colors",
	TypePaletteMods:    "palette-mods",
	TypeButtonGraphics: "button-graphics",
	TypeButtons:        "buttons",
	TypeScene:          "scene",
	TypeMainMenu:       "main-menu",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "type-" + strconv.FormatUint(uint64(t), 10)
}
