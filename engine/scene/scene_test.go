package scene

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/types"
)

// Commonly used fixture ids.
const (
	idScene      boltlib.ResourceID = 0x0118_0000
	idForePlane  boltlib.ResourceID = 0x0119_0000
	idSprites    boltlib.ResourceID = 0x011B_0000
	idButtons    boltlib.ResourceID = 0x011C_0000
	idForeImage  boltlib.ResourceID = 0x0130_0000
	idForePal    boltlib.ResourceID = 0x0131_0000
	idHotspots   boltlib.ResourceID = 0x0132_0000
	idSpriteImg  boltlib.ResourceID = 0x0133_0000
	idGraphics   boltlib.ResourceID = 0x0140_0000
	idHoverList  boltlib.ResourceID = 0x0141_0000
	idIdleList   boltlib.ResourceID = 0x0142_0000
	idHoverImg   boltlib.ResourceID = 0x0143_0000
	idIdleImg    boltlib.ResourceID = 0x0144_0000
	idMods       boltlib.ResourceID = 0x0150_0000
	idModColors  boltlib.ResourceID = 0x0151_0000
	idOverride   boltlib.ResourceID = 0x0160_0000
)

type resBuilder struct {
	ids      []boltlib.ResourceID
	types    []boltlib.Type
	payloads [][]byte
}

func (b *resBuilder) add(id boltlib.ResourceID, typ boltlib.Type, payload []byte) *resBuilder {
	b.ids = append(b.ids, id)
	b.types = append(b.types, typ)
	b.payloads = append(b.payloads, payload)
	return b
}

func (b *resBuilder) build(t *testing.T) *boltlib.Container {
	t.Helper()
	dirEnd := 8 + len(b.ids)*12
	data := []byte("BOLT")
	data = binary.BigEndian.AppendUint32(data, uint32(len(b.ids)))
	offset := uint32(dirEnd)
	for i := range b.ids {
		data = binary.BigEndian.AppendUint32(data, uint32(b.ids[i]))
		data = binary.BigEndian.AppendUint32(data, offset)
		data = binary.BigEndian.AppendUint32(data, uint32(b.types[i]))
		offset += uint32(len(b.payloads[i]))
	}
	for _, p := range b.payloads {
		data = append(data, p...)
	}
	c, err := boltlib.New(data)
	if err != nil {
		t.Fatalf("container build failed: %v", err)
	}
	return c
}

func sceneBytes(fore, back boltlib.ResourceID, numSprites int, sprites boltlib.ResourceID,
	numButtons int, buttons boltlib.ResourceID, ox, oy int) []byte {
	b := make([]byte, 0x24)
	binary.BigEndian.PutUint32(b[0x00:], uint32(fore))
	binary.BigEndian.PutUint32(b[0x04:], uint32(back))
	b[0x08] = byte(numSprites)
	binary.BigEndian.PutUint32(b[0x0A:], uint32(sprites))
	binary.BigEndian.PutUint32(b[0x16:], uint32(boltlib.InvalidID))
	binary.BigEndian.PutUint16(b[0x1A:], uint16(numButtons))
	binary.BigEndian.PutUint32(b[0x1C:], uint32(buttons))
	binary.BigEndian.PutUint16(b[0x20:], uint16(int16(ox)))
	binary.BigEndian.PutUint16(b[0x22:], uint16(int16(oy)))
	return b
}

func planeBytes(img, pal, hotspots boltlib.ResourceID) []byte {
	b := make([]byte, 0x10)
	binary.BigEndian.PutUint32(b[0x0:], uint32(img))
	binary.BigEndian.PutUint32(b[0x4:], uint32(pal))
	binary.BigEndian.PutUint32(b[0x8:], uint32(hotspots))
	return b
}

func buttonBytes(hotspot, l, r, tp, bt, plane, numGraphics int, graphics boltlib.ResourceID) []byte {
	b := make([]byte, 0x14)
	binary.BigEndian.PutUint16(b[0x0:], uint16(hotspot))
	binary.BigEndian.PutUint16(b[0x2:], uint16(l))
	binary.BigEndian.PutUint16(b[0x4:], uint16(r))
	binary.BigEndian.PutUint16(b[0x6:], uint16(tp))
	binary.BigEndian.PutUint16(b[0x8:], uint16(bt))
	binary.BigEndian.PutUint16(b[0xA:], uint16(plane))
	binary.BigEndian.PutUint16(b[0xC:], uint16(numGraphics))
	binary.BigEndian.PutUint32(b[0x10:], uint32(graphics))
	return b
}

func graphicsBytes(kind int, hovered, idle boltlib.ResourceID) []byte {
	b := make([]byte, 0xE)
	binary.BigEndian.PutUint16(b[0x0:], uint16(kind))
	binary.BigEndian.PutUint32(b[0x6:], uint32(hovered))
	binary.BigEndian.PutUint32(b[0xA:], uint32(idle))
	return b
}

func spriteBytes(x, y int, img boltlib.ResourceID) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint16(b[0:], uint16(int16(x)))
	binary.BigEndian.PutUint16(b[2:], uint16(int16(y)))
	binary.BigEndian.PutUint32(b[4:], uint32(img))
	return b
}

func imageBytes(w, h int, pixels []byte) []byte {
	b := make([]byte, 0x18)
	binary.BigEndian.PutUint16(b[0xA:], uint16(w))
	binary.BigEndian.PutUint16(b[0xC:], uint16(h))
	return append(b, pixels...)
}

func paletteBytes(first int, rgb []byte) []byte {
	b := make([]byte, 6)
	binary.BigEndian.PutUint16(b[2:], uint16(first))
	binary.BigEndian.PutUint16(b[4:], uint16(len(rgb)/3))
	return append(b, rgb...)
}

func load(t *testing.T, c *boltlib.Container, r gfx.Renderer) *Scene {
	t.Helper()
	s, err := Load(c, idScene, r, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

// twoButtonScene builds a scene with two overlapping rectangle buttons and
// one sprite, over a fore plane with image, palette, and hotspot bitmap.
func twoButtonScene(t *testing.T) (*Scene, *gfx.MemoryRenderer) {
	t.Helper()
	hotspotPix := make([]byte, 16*8)
	for x := 12; x < 16; x++ {
		hotspotPix[2*16+x] = 7 // class 7 block at y=2
	}
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(idForePlane, boltlib.InvalidID, 1, idSprites, 2, idButtons, 0, 0))
	b.add(idForePlane, boltlib.TypePlane, planeBytes(idForeImage, idForePal, idHotspots))
	b.add(idSprites, boltlib.TypeSprites, spriteBytes(1, 1, idSpriteImg))
	b.add(idButtons, boltlib.TypeButtons, append(
		buttonBytes(boltlib.HotspotRect, 2, 8, 2, 6, 0, 0, boltlib.InvalidID),
		buttonBytes(boltlib.HotspotRect, 4, 10, 2, 6, 0, 0, boltlib.InvalidID)...))
	b.add(idForeImage, boltlib.TypeImage, imageBytes(16, 8, bytes.Repeat([]byte{1}, 16*8)))
	b.add(idForePal, boltlib.TypePalette, paletteBytes(0, []byte{0, 0, 0, 255, 255, 255}))
	b.add(idHotspots, boltlib.TypeImage, imageBytes(16, 8, hotspotPix))
	b.add(idSpriteImg, boltlib.TypeImage, imageBytes(2, 2, []byte{9, 9, 9, 9}))
	c := b.build(t)
	r := gfx.NewMemoryRenderer(16, 8)
	return load(t, c, r), r
}

func TestLoad_CountsMatchFixture(t *testing.T) {
	s, _ := twoButtonScene(t)
	if s.NumButtons() != 2 {
		t.Errorf("expected 2 buttons, got %d", s.NumButtons())
	}
	if s.NumSprites() != 1 {
		t.Errorf("expected 1 sprite, got %d", s.NumSprites())
	}
	if s.Origin() != image.Pt(0, 0) {
		t.Errorf("expected zero origin, got %v", s.Origin())
	}
}

func TestLoad_EmptySceneIsValid(t *testing.T) {
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(boltlib.InvalidID, boltlib.InvalidID,
		0, boltlib.InvalidID, 0, boltlib.InvalidID, 0, 0))
	s := load(t, b.build(t), gfx.NewMemoryRenderer(16, 8))

	if s.NumButtons() != 0 || s.NumSprites() != 0 {
		t.Errorf("expected empty scene, got %d buttons %d sprites", s.NumButtons(), s.NumSprites())
	}
	s.Enter() // clears planes, draws nothing
	if got := s.ButtonAt(image.Pt(3, 3)); got != NoButton {
		t.Errorf("expected NoButton, got %d", got)
	}
}

func TestButtonAt_FirstDeclaredWinsOverlap(t *testing.T) {
	s, _ := twoButtonScene(t)
	// (5, 3) is inside both rectangles.
	if got := s.ButtonAt(image.Pt(5, 3)); got != 0 {
		t.Errorf("expected button 0 to win overlap, got %d", got)
	}
	// (9, 3) only inside the second.
	if got := s.ButtonAt(image.Pt(9, 3)); got != 1 {
		t.Errorf("expected button 1, got %d", got)
	}
}

func TestButtonAt_Idempotent(t *testing.T) {
	s, _ := twoButtonScene(t)
	pt := image.Pt(5, 3)
	first := s.ButtonAt(pt)
	second := s.ButtonAt(pt)
	if first != second {
		t.Errorf("hit test not stable: %d then %d", first, second)
	}
}

func TestButtonAt_MissIsSentinel(t *testing.T) {
	s, _ := twoButtonScene(t)
	if got := s.ButtonAt(image.Pt(15, 7)); got != NoButton {
		t.Errorf("expected NoButton, got %d", got)
	}
}

func TestButtonAt_QueryHotspot(t *testing.T) {
	hotspotPix := make([]byte, 16*8)
	hotspotPix[2*16+12] = 7
	hotspotPix[2*16+13] = 2
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(idForePlane, boltlib.InvalidID,
		0, boltlib.InvalidID, 1, idButtons, 0, 0))
	b.add(idForePlane, boltlib.TypePlane, planeBytes(boltlib.InvalidID, boltlib.InvalidID, idHotspots))
	b.add(idButtons, boltlib.TypeButtons,
		buttonBytes(boltlib.HotspotQuery, 5, 9, 0, 0, 0, 0, boltlib.InvalidID))
	b.add(idHotspots, boltlib.TypeImage, imageBytes(16, 8, hotspotPix))
	s := load(t, b.build(t), gfx.NewMemoryRenderer(16, 8))

	// Class 7 falls inside [5,9].
	if got := s.ButtonAt(image.Pt(12, 2)); got != 0 {
		t.Errorf("expected query hit, got %d", got)
	}
	// Class 2 falls outside.
	if got := s.ButtonAt(image.Pt(13, 2)); got != NoButton {
		t.Errorf("expected query miss, got %d", got)
	}
	// Class 0 (unpainted bitmap) misses too.
	if got := s.ButtonAt(image.Pt(0, 0)); got != NoButton {
		t.Errorf("expected miss on empty bitmap, got %d", got)
	}
}

func TestButtonAt_OriginShiftsPlaneSpace(t *testing.T) {
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(boltlib.InvalidID, boltlib.InvalidID,
		0, boltlib.InvalidID, 1, idButtons, 10, 0))
	b.add(idButtons, boltlib.TypeButtons,
		buttonBytes(boltlib.HotspotRect, 10, 20, 0, 8, 0, 0, boltlib.InvalidID))
	s := load(t, b.build(t), gfx.NewMemoryRenderer(16, 8))

	// Screen x=2 is plane x=12, inside [10,20).
	if got := s.ButtonAt(image.Pt(2, 3)); got != 0 {
		t.Errorf("expected hit through origin shift, got %d", got)
	}
	// Screen x=11 is plane x=21, outside.
	if got := s.ButtonAt(image.Pt(11, 3)); got != NoButton {
		t.Errorf("expected miss past scrolled rect, got %d", got)
	}
}

func TestHandleMsg_ClickBecomesClickButton(t *testing.T) {
	s, _ := twoButtonScene(t)

	hit := s.HandleMsg(types.Msg{Kind: types.MsgClick, Pos: image.Pt(5, 3)})
	if hit.Kind != types.MsgClickButton || hit.Num != 0 {
		t.Errorf("expected click-button 0, got %v num %d", hit.Kind, hit.Num)
	}

	miss := s.HandleMsg(types.Msg{Kind: types.MsgClick, Pos: image.Pt(15, 7)})
	if miss.Kind != types.MsgClickButton || miss.Num != NoButton {
		t.Errorf("expected click-button with NoButton, got %v num %d", miss.Kind, miss.Num)
	}

	// Non-pointer messages pass through untouched.
	timer := s.HandleMsg(types.Msg{Kind: types.MsgTimer, Num: 4})
	if timer.Kind != types.MsgTimer || timer.Num != 4 {
		t.Errorf("timer message mangled: %+v", timer)
	}
}

func TestHandleMsg_HoverTracksButton(t *testing.T) {
	s, _ := twoButtonScene(t)
	if s.Hovered() != NoButton {
		t.Fatalf("expected no hover at load, got %d", s.Hovered())
	}
	s.HandleMsg(types.Msg{Kind: types.MsgHover, Pos: image.Pt(5, 3)})
	if s.Hovered() != 0 {
		t.Errorf("expected hover on button 0, got %d", s.Hovered())
	}
	s.HandleMsg(types.Msg{Kind: types.MsgHover, Pos: image.Pt(15, 7)})
	if s.Hovered() != NoButton {
		t.Errorf("expected hover cleared, got %d", s.Hovered())
	}
}

// spriteGraphicsScene has one button whose hovered/idle graphics are 1x1
// sprites of colors 9 and 5 at (0, 0).
func spriteGraphicsScene(t *testing.T) (*Scene, *gfx.MemoryRenderer) {
	t.Helper()
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(idForePlane, boltlib.InvalidID,
		0, boltlib.InvalidID, 1, idButtons, 0, 0))
	b.add(idForePlane, boltlib.TypePlane, planeBytes(boltlib.InvalidID, boltlib.InvalidID, boltlib.InvalidID))
	b.add(idButtons, boltlib.TypeButtons,
		buttonBytes(boltlib.HotspotRect, 0, 4, 0, 4, 0, 1, idGraphics))
	b.add(idGraphics, boltlib.TypeButtonGraphics, graphicsBytes(boltlib.GraphicsSprites, idHoverList, idIdleList))
	b.add(idHoverList, boltlib.TypeSprites, spriteBytes(0, 0, idHoverImg))
	b.add(idIdleList, boltlib.TypeSprites, spriteBytes(0, 0, idIdleImg))
	b.add(idHoverImg, boltlib.TypeImage, imageBytes(1, 1, []byte{9}))
	b.add(idIdleImg, boltlib.TypeImage, imageBytes(1, 1, []byte{5}))
	c := b.build(t)
	r := gfx.NewMemoryRenderer(8, 8)
	return load(t, c, r), r
}

func TestDrawButton_HoverSwapsSprite(t *testing.T) {
	s, r := spriteGraphicsScene(t)
	s.Enter()
	if got := r.PlaneSurface(gfx.PlaneFore).At(image.Pt(0, 0)); got != 5 {
		t.Fatalf("expected idle color 5 after enter, got %d", got)
	}
	s.HandleMsg(types.Msg{Kind: types.MsgHover, Pos: image.Pt(1, 1)})
	if got := r.PlaneSurface(gfx.PlaneFore).At(image.Pt(0, 0)); got != 9 {
		t.Errorf("expected hovered color 9, got %d", got)
	}
	s.HandleMsg(types.Msg{Kind: types.MsgHover, Pos: image.Pt(6, 6)})
	if got := r.PlaneSurface(gfx.PlaneFore).At(image.Pt(0, 0)); got != 5 {
		t.Errorf("expected idle color restored, got %d", got)
	}
}

func TestEnter_AppliesPaletteModGraphics(t *testing.T) {
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(idForePlane, boltlib.InvalidID,
		0, boltlib.InvalidID, 1, idButtons, 0, 0))
	b.add(idForePlane, boltlib.TypePlane, planeBytes(boltlib.InvalidID, boltlib.InvalidID, boltlib.InvalidID))
	b.add(idButtons, boltlib.TypeButtons,
		buttonBytes(boltlib.HotspotRect, 0, 4, 0, 4, 0, 1, idGraphics))
	b.add(idGraphics, boltlib.TypeButtonGraphics, graphicsBytes(boltlib.GraphicsPaletteMods, boltlib.InvalidID, idMods))
	b.add(idMods, boltlib.TypePaletteMods, []byte{4, 2, 0x01, 0x51, 0x00, 0x00})
	b.add(idModColors, boltlib.TypeColors, []byte{11, 12, 13, 21, 22, 23})
	c := b.build(t)
	r := gfx.NewMemoryRenderer(8, 8)
	s := load(t, c, r)

	s.Enter()
	got := r.Palette(gfx.PlaneFore, 4, 2)
	want := []byte{11, 12, 13, 21, 22, 23}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("palette byte %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestSetButtonGraphicsSet_OutOfRangeIsIgnored(t *testing.T) {
	s, _ := spriteGraphicsScene(t)
	s.Enter()
	s.SetButtonGraphicsSet(0, 5) // warn, no crash
	s.SetButtonGraphicsSet(9, 0) // warn, no crash
}

func TestOverrideButtonGraphics(t *testing.T) {
	b := &resBuilder{}
	b.add(idScene, boltlib.TypeScene, sceneBytes(boltlib.InvalidID, boltlib.InvalidID,
		0, boltlib.InvalidID, 1, idButtons, 0, 0))
	b.add(idButtons, boltlib.TypeButtons,
		buttonBytes(boltlib.HotspotRect, 0, 2, 0, 2, 0, 0, boltlib.InvalidID))
	b.add(idOverride, boltlib.TypeImage, imageBytes(2, 2, []byte{3, 3, 3, 3}))
	c := b.build(t)
	r := gfx.NewMemoryRenderer(16, 8)
	s := load(t, c, r)

	if err := s.OverrideButtonGraphics(0, idOverride, image.Pt(10, 4)); err != nil {
		t.Fatalf("OverrideButtonGraphics failed: %v", err)
	}
	// Hit test now follows the override image, not the declared rect.
	if got := s.ButtonAt(image.Pt(11, 5)); got != 0 {
		t.Errorf("expected hit at override position, got %d", got)
	}
	if got := s.ButtonAt(image.Pt(1, 1)); got != NoButton {
		t.Errorf("expected declared rect to be bypassed, got %d", got)
	}
	// Override image was drawn.
	if got := r.PlaneSurface(gfx.PlaneFore).At(image.Pt(10, 4)); got != 3 {
		t.Errorf("expected override pixel drawn, got %d", got)
	}

	if err := s.OverrideButtonGraphics(7, idOverride, image.Pt(0, 0)); err == nil {
		t.Error("expected error for unknown button")
	}
}
