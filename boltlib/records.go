package boltlib

import (
	"encoding/binary"
	"image"
)

func u16at(b []byte, off int) uint16 { return binary.BigEndian.Uint16(b[off:]) }
func u32at(b []byte, off int) uint32 { return binary.BigEndian.Uint32(b[off:]) }
func i16at(b []byte, off int) int    { return int(int16(binary.BigEndian.Uint16(b[off:]))) }
func idAt(b []byte, off int) ResourceID {
	return ResourceID(binary.BigEndian.Uint32(b[off:]))
}

// SceneRec is the 0x24-byte scene record: the root of one screen's worth of
// planes, sprites, buttons, and color cycling.
type SceneRec struct {
	ForePlane   ResourceID
	BackPlane   ResourceID
	NumSprites  int
	Sprites     ResourceID
	ColorCycles ResourceID
	NumButtons  int
	Buttons     ResourceID
	Origin      image.Point
}

const sceneRecSize = 0x24

// LoadScene decodes a scene record.
func LoadScene(c *Container, id ResourceID) (SceneRec, error) {
	b, err := c.Fixed(id, TypeScene, sceneRecSize)
	if err != nil {
		return SceneRec{}, err
	}
	return SceneRec{
		ForePlane:   idAt(b, 0x00),
		BackPlane:   idAt(b, 0x04),
		NumSprites:  int(b[0x08]),
		Sprites:     idAt(b, 0x0A),
		ColorCycles: idAt(b, 0x16),
		NumButtons:  int(u16at(b, 0x1A)),
		Buttons:     idAt(b, 0x1C),
		Origin:      image.Pt(i16at(b, 0x20), i16at(b, 0x22)),
	}, nil
}

// PlaneRec is the 0x10-byte plane record: one drawing layer's image, palette,
// and hotspot bitmap. Any of the three slots may hold InvalidID.
type PlaneRec struct {
	Image    ResourceID
	Palette  ResourceID
	Hotspots ResourceID
}

const planeRecSize = 0x10

// LoadPlane decodes a plane record.
func LoadPlane(c *Container, id ResourceID) (PlaneRec, error) {
	b, err := c.Fixed(id, TypePlane, planeRecSize)
	if err != nil {
		return PlaneRec{}, err
	}
	return PlaneRec{
		Image:    idAt(b, 0x0),
		Palette:  idAt(b, 0x4),
		Hotspots: idAt(b, 0x8),
	}, nil
}

// Button hotspot kinds.
const (
	HotspotRect  = 1
	HotspotQuery = 3
)

// ButtonRec is one 0x14-byte element of a buttons array. For HotspotRect the
// Left/Right/Top/Bottom fields are screen coordinates; for HotspotQuery,
// Left and Right double as the inclusive color-class range matched against
// the plane's hotspot bitmap.
type ButtonRec struct {
	HotspotType int
	Left        int
	Right       int
	Top         int
	Bottom      int
	Plane       int
	NumGraphics int
	Graphics    ResourceID
}

const buttonRecStride = 0x14

// Rect is the button's rectangle with the exclusive max convention.
func (b ButtonRec) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// LoadButtons decodes a buttons array.
func LoadButtons(c *Container, id ResourceID) ([]ButtonRec, error) {
	b, n, err := c.Array(id, TypeButtons, buttonRecStride)
	if err != nil {
		return nil, err
	}
	out := make([]ButtonRec, n)
	for i := range out {
		e := b[i*buttonRecStride:]
		out[i] = ButtonRec{
			HotspotType: int(u16at(e, 0x0)),
			Left:        int(u16at(e, 0x2)),
			Right:       int(u16at(e, 0x4)),
			Top:         int(u16at(e, 0x6)),
			Bottom:      int(u16at(e, 0x8)),
			Plane:       int(u16at(e, 0xA)),
			NumGraphics: int(u16at(e, 0xC)),
			Graphics:    idAt(e, 0x10),
		}
	}
	return out, nil
}

// Button graphics kinds.
const (
	GraphicsPaletteMods = 1
	GraphicsSprites     = 2
)

// ButtonGraphicsRec is one 0xE-byte element of a button-graphics array: a
// hovered/idle pair of either palette-mod lists or sprite lists, depending
// on Kind.
type ButtonGraphicsRec struct {
	Kind    int
	Hovered ResourceID
	Idle    ResourceID
}

const buttonGraphicsStride = 0xE

// LoadButtonGraphics decodes a button-graphics array.
func LoadButtonGraphics(c *Container, id ResourceID) ([]ButtonGraphicsRec, error) {
	b, n, err := c.Array(id, TypeButtonGraphics, buttonGraphicsStride)
	if err != nil {
		return nil, err
	}
	out := make([]ButtonGraphicsRec, n)
	for i := range out {
		e := b[i*buttonGraphicsStride:]
		out[i] = ButtonGraphicsRec{
			Kind:    int(u16at(e, 0x0)),
			Hovered: idAt(e, 0x6),
			Idle:    idAt(e, 0xA),
		}
	}
	return out, nil
}

// SpriteRec is one 8-byte element of a sprites array: an image placed at a
// plane position.
type SpriteRec struct {
	Pos   image.Point
	Image ResourceID
}

const spriteRecStride = 8

// LoadSprites decodes a sprites array.
func LoadSprites(c *Container, id ResourceID) ([]SpriteRec, error) {
	b, n, err := c.Array(id, TypeSprites, spriteRecStride)
	if err != nil {
		return nil, err
	}
	out := make([]SpriteRec, n)
	for i := range out {
		e := b[i*spriteRecStride:]
		out[i] = SpriteRec{
			Pos:   image.Pt(i16at(e, 0), i16at(e, 2)),
			Image: idAt(e, 4),
		}
	}
	return out, nil
}

// PaletteModRec is one 6-byte element of a palette-mod array: replace Count
// palette entries starting at Index with the colors resource's triples.
type PaletteModRec struct {
	Index  int
	Count  int
	Colors ResourceID
}

const paletteModStride = 6

// LoadPaletteMods decodes a palette-mod array.
func LoadPaletteMods(c *Container, id ResourceID) ([]PaletteModRec, error) {
	b, n, err := c.Array(id, TypePaletteMods, paletteModStride)
	if err != nil {
		return nil, err
	}
	out := make([]PaletteModRec, n)
	for i := range out {
		e := b[i*paletteModStride:]
		out[i] = PaletteModRec{
			Index:  int(e[0]),
			Count:  int(e[1]),
			Colors: idAt(e, 2),
		}
	}
	return out, nil
}

// LoadColors decodes a colors resource: packed RGB triples.
func LoadColors(c *Container, id ResourceID) ([]byte, error) {
	b, _, err := c.Array(id, TypeColors, 3)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// PaletteRec is a palette resource: a 6-byte header naming the target plane
// and entry window, followed by RGB triples.
type PaletteRec struct {
	Plane int
	First int
	RGB   []byte // 3 bytes per entry, borrowed from the container
}

const paletteHeaderSize = 6

// NumColors reports how many entries the palette carries.
func (p PaletteRec) NumColors() int { return len(p.RGB) / 3 }

// LoadPalette decodes a palette resource.
func LoadPalette(c *Container, id ResourceID) (PaletteRec, error) {
	e, err := c.typed(id, TypePalette)
	if err != nil {
		return PaletteRec{}, err
	}
	b := c.span(e)
	if len(b) < paletteHeaderSize {
		return PaletteRec{}, formatErr(id, "palette header truncated (%d bytes)", len(b))
	}
	count := int(u16at(b, 4))
	if len(b) != paletteHeaderSize+3*count {
		return PaletteRec{}, formatErr(id, "palette declares %d colors but stores %d payload bytes",
			count, len(b)-paletteHeaderSize)
	}
	return PaletteRec{
		Plane: int(b[0]),
		First: int(u16at(b, 2)),
		RGB:   b[paletteHeaderSize:],
	}, nil
}

// ColorCyclesRec is the 0x18-byte color-cycles record: up to four cycle
// slots, each an id of a CycleSlotRec. A zero count or InvalidID slot is
// simply unused.
type ColorCyclesRec struct {
	NumSlots [4]int
	Slots    [4]ResourceID
}

const colorCyclesRecSize = 0x18

// LoadColorCycles decodes a color-cycles record.
func LoadColorCycles(c *Container, id ResourceID) (ColorCyclesRec, error) {
	b, err := c.Fixed(id, TypeColorCycles, colorCyclesRecSize)
	if err != nil {
		return ColorCyclesRec{}, err
	}
	var rec ColorCyclesRec
	for i := 0; i < 4; i++ {
		rec.NumSlots[i] = int(u16at(b, i*2))
		rec.Slots[i] = idAt(b, 8+i*4)
	}
	return rec, nil
}

// CycleSlotRec is a 6-byte cycle slot: rotate palette entries Start..End
// every DelayTicks ticks.
type CycleSlotRec struct {
	Start      int
	End        int
	DelayTicks int
}

const cycleSlotRecSize = 6

// LoadCycleSlot decodes a cycle-slot record.
func LoadCycleSlot(c *Container, id ResourceID) (CycleSlotRec, error) {
	b, err := c.Fixed(id, TypeCycleSlot, cycleSlotRecSize)
	if err != nil {
		return CycleSlotRec{}, err
	}
	return CycleSlotRec{
		Start:      int(u16at(b, 0)),
		End:        int(u16at(b, 2)),
		DelayTicks: int(u16at(b, 4)),
	}, nil
}

// LoadResourceList decodes a resource list: the pervasive indirection where
// entry K of the list names the actual resource for slot K.
func LoadResourceList(c *Container, id ResourceID) ([]ResourceID, error) {
	b, n, err := c.Array(id, TypeResourceList, 4)
	if err != nil {
		return nil, err
	}
	out := make([]ResourceID, n)
	for i := range out {
		out[i] = idAt(b, i*4)
	}
	return out, nil
}

// LoadU8Values decodes a u8-values resource.
func LoadU8Values(c *Container, id ResourceID) ([]byte, error) {
	b, _, err := c.Array(id, TypeU8Values, 1)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// LoadU16Values decodes a u16-values resource.
func LoadU16Values(c *Container, id ResourceID) ([]uint16, error) {
	b, n, err := c.Array(id, TypeU16Values, 2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = u16at(b, i*2)
	}
	return out, nil
}

// LoadSound returns a sound resource's raw payload; decoding is the audio
// collaborator's concern.
func LoadSound(c *Container, id ResourceID) ([]byte, error) {
	e, err := c.typed(id, TypeSound)
	if err != nil {
		return nil, err
	}
	return c.span(e), nil
}
