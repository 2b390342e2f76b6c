// Package scene decodes a scene resource into a live screen model: two
// drawing planes, sprites, buttons with hover graphics, and color cycling.
// It answers hit-test queries and redraws itself through the renderer; what
// a click on a button means is the owning card's business.
package scene

import (
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/nathoo/boltcore/boltlib"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/types"
)

// NoButton is the hit-test miss sentinel.
const NoButton = -1

// plane is one decoded drawing layer. Any slot may be absent; a plane with
// no image clears to background instead of blitting.
type plane struct {
	image    *boltlib.Image
	hotspots *boltlib.Image
	palette  boltlib.PaletteRec
	hasPal   bool
}

type graphicsSet struct {
	kind    int
	hovered boltlib.ResourceID
	idle    boltlib.ResourceID
}

type button struct {
	rec      boltlib.ButtonRec
	graphics []graphicsSet
	current  int
	override *override
}

type override struct {
	img *boltlib.Image
	pos image.Point
}

type cycle struct {
	slot boltlib.CycleSlotRec
	used bool
}

// Scene is a fully decoded scene bound to a renderer. All decoded data is
// owned by the scene and dropped with it; the container is only consulted
// again for graphics overrides.
type Scene struct {
	c        *boltlib.Container
	r        gfx.Renderer
	log      zerolog.Logger
	fore     plane
	back     plane
	sprites  []boltlib.SpriteRec
	images   map[boltlib.ResourceID]*boltlib.Image
	buttons  []button
	cycles   [4]cycle
	origin   image.Point
	hovered  int
	declared struct{ sprites, buttons int }
}

// Load decodes sceneID and everything it references.
func Load(c *boltlib.Container, sceneID boltlib.ResourceID, r gfx.Renderer, log zerolog.Logger) (*Scene, error) {
	rec, err := boltlib.LoadScene(c, sceneID)
	if err != nil {
		return nil, fmt.Errorf("load scene %v: %w", sceneID, err)
	}
	s := &Scene{
		c:       c,
		r:       r,
		log:     log.With().Str("scene", sceneID.String()).Logger(),
		images:  make(map[boltlib.ResourceID]*boltlib.Image),
		origin:  rec.Origin,
		hovered: NoButton,
	}
	s.declared.sprites = rec.NumSprites
	s.declared.buttons = rec.NumButtons

	if err := s.loadPlane(&s.fore, rec.ForePlane); err != nil {
		return nil, err
	}
	if err := s.loadPlane(&s.back, rec.BackPlane); err != nil {
		return nil, err
	}

	if rec.Sprites.Valid() {
		s.sprites, err = boltlib.LoadSprites(c, rec.Sprites)
		if err != nil {
			return nil, fmt.Errorf("load scene %v sprites: %w", sceneID, err)
		}
		if len(s.sprites) != rec.NumSprites {
			s.log.Warn().Int("declared", rec.NumSprites).Int("stored", len(s.sprites)).
				Msg("sprite count mismatch")
		}
		for _, sp := range s.sprites {
			if err := s.cacheImage(sp.Image); err != nil {
				return nil, err
			}
		}
	}

	if rec.Buttons.Valid() {
		if err := s.loadButtons(rec); err != nil {
			return nil, err
		}
	}

	if rec.ColorCycles.Valid() {
		cc, err := boltlib.LoadColorCycles(c, rec.ColorCycles)
		if err != nil {
			return nil, fmt.Errorf("load scene %v color cycles: %w", sceneID, err)
		}
		for i := 0; i < 4; i++ {
			if cc.NumSlots[i] == 0 || !cc.Slots[i].Valid() {
				continue
			}
			slot, err := boltlib.LoadCycleSlot(c, cc.Slots[i])
			if err != nil {
				return nil, fmt.Errorf("load scene %v cycle slot %d: %w", sceneID, i, err)
			}
			s.cycles[i] = cycle{slot: slot, used: true}
		}
	}
	return s, nil
}

func (s *Scene) loadPlane(dst *plane, id boltlib.ResourceID) error {
	if !id.Valid() {
		return nil
	}
	rec, err := boltlib.LoadPlane(s.c, id)
	if err != nil {
		return fmt.Errorf("load plane %v: %w", id, err)
	}
	if rec.Image.Valid() {
		if dst.image, err = boltlib.LoadImage(s.c, rec.Image); err != nil {
			return fmt.Errorf("load plane %v image: %w", id, err)
		}
	}
	if rec.Hotspots.Valid() {
		if dst.hotspots, err = boltlib.LoadImage(s.c, rec.Hotspots); err != nil {
			return fmt.Errorf("load plane %v hotspots: %w", id, err)
		}
	}
	if rec.Palette.Valid() {
		if dst.palette, err = boltlib.LoadPalette(s.c, rec.Palette); err != nil {
			return fmt.Errorf("load plane %v palette: %w", id, err)
		}
		dst.hasPal = true
	}
	return nil
}

func (s *Scene) loadButtons(rec boltlib.SceneRec) error {
	recs, err := boltlib.LoadButtons(s.c, rec.Buttons)
	if err != nil {
		return fmt.Errorf("load buttons %v: %w", rec.Buttons, err)
	}
	if len(recs) != rec.NumButtons {
		s.log.Warn().Int("declared", rec.NumButtons).Int("stored", len(recs)).
			Msg("button count mismatch")
	}
	s.buttons = make([]button, len(recs))
	for i, br := range recs {
		b := button{rec: br}
		if br.Graphics.Valid() && br.NumGraphics > 0 {
			gr, err := boltlib.LoadButtonGraphics(s.c, br.Graphics)
			if err != nil {
				return fmt.Errorf("load button %d graphics: %w", i, err)
			}
			for _, g := range gr {
				b.graphics = append(b.graphics, graphicsSet{
					kind:    g.Kind,
					hovered: g.Hovered,
					idle:    g.Idle,
				})
			}
		}
		s.buttons[i] = b
	}
	return nil
}

// cacheImage decodes an image once and remembers it by id.
func (s *Scene) cacheImage(id boltlib.ResourceID) error {
	if !id.Valid() {
		return nil
	}
	if _, ok := s.images[id]; ok {
		return nil
	}
	img, err := boltlib.LoadImage(s.c, id)
	if err != nil {
		return fmt.Errorf("load image %v: %w", id, err)
	}
	s.images[id] = img
	return nil
}

// Origin is the scene's scroll/crop offset. Screen space plus origin is
// plane space.
func (s *Scene) Origin() image.Point { return s.origin }

// NumButtons reports how many buttons the scene decoded.
func (s *Scene) NumButtons() int { return len(s.buttons) }

// NumSprites reports how many sprites the scene decoded.
func (s *Scene) NumSprites() int { return len(s.sprites) }

// Hovered reports the button currently under the pointer, or NoButton.
func (s *Scene) Hovered() int { return s.hovered }

// ButtonRect reports button i's hit rectangle in event coordinates.
// Query-class hotspots have no fixed rectangle and report zero.
func (s *Scene) ButtonRect(i int) image.Rectangle {
	if i < 0 || i >= len(s.buttons) {
		return image.Rectangle{}
	}
	b := &s.buttons[i]
	if b.override != nil {
		return b.override.img.Bounds().Add(b.override.pos).Sub(s.origin)
	}
	if b.rec.HotspotType == boltlib.HotspotRect {
		return b.rec.Rect().Sub(s.origin)
	}
	return image.Rectangle{}
}

// Enter draws the whole scene: palettes, plane images, sprites, buttons in
// idle state, and registers color cycling.
func (s *Scene) Enter() {
	s.applyPalette(gfx.PlaneFore, s.fore)
	s.applyPalette(gfx.PlaneBack, s.back)
	s.Redraw()
	for i, cy := range s.cycles {
		if cy.used {
			s.r.SetColorCycle(i, gfx.PlaneFore, cy.slot.Start, cy.slot.End, cy.slot.DelayTicks)
		}
	}
}

func (s *Scene) applyPalette(p gfx.Plane, pl plane) {
	if !pl.hasPal {
		return
	}
	s.r.SetPlanePalette(p, pl.palette.First, pl.palette.RGB)
}

// Redraw repaints plane images, sprites, and buttons without touching
// palettes or cycle registration.
func (s *Scene) Redraw() {
	s.drawPlane(gfx.PlaneBack, s.back)
	s.drawPlane(gfx.PlaneFore, s.fore)
	s.redrawSprites()
	for i := range s.buttons {
		s.drawButton(i, i == s.hovered)
	}
	s.r.MarkDirty()
}

func (s *Scene) drawPlane(p gfx.Plane, pl plane) {
	if pl.image == nil {
		s.r.ClearPlane(p)
		return
	}
	surf := s.r.PlaneSurface(p)
	surf.DrawImage(pl.image, image.Point{}.Sub(s.origin), false)
}

func (s *Scene) redrawSprites() {
	surf := s.r.PlaneSurface(gfx.PlaneFore)
	for _, sp := range s.sprites {
		img := s.images[sp.Image]
		if img == nil {
			continue
		}
		surf.DrawImage(img, sp.Pos.Sub(s.origin), true)
	}
}

// SetButtonGraphicsSet selects which graphics set draws for a button and
// repaints it. Out-of-range sets are an authoring bug worth a warning, not
// a crash.
func (s *Scene) SetButtonGraphicsSet(btn, set int) {
	if btn < 0 || btn >= len(s.buttons) {
		s.log.Warn().Int("button", btn).Msg("graphics set for unknown button")
		return
	}
	b := &s.buttons[btn]
	if set < 0 || set >= len(b.graphics) {
		s.log.Warn().Int("button", btn).Int("set", set).Msg("unknown graphics set")
		return
	}
	b.current = set
	s.drawButton(btn, btn == s.hovered)
	s.r.MarkDirty()
}

// OverrideButtonGraphics pins a button to a specific image at a plane-space
// position, bypassing its declared graphics sets for both drawing and hit
// testing. Cards use this for pieces the player has moved.
func (s *Scene) OverrideButtonGraphics(btn int, imgID boltlib.ResourceID, pos image.Point) error {
	if btn < 0 || btn >= len(s.buttons) {
		return fmt.Errorf("override graphics: no button %d", btn)
	}
	img, err := boltlib.LoadImage(s.c, imgID)
	if err != nil {
		return fmt.Errorf("override graphics for button %d: %w", btn, err)
	}
	s.buttons[btn].override = &override{img: img, pos: pos}
	s.drawButton(btn, btn == s.hovered)
	s.r.MarkDirty()
	return nil
}

// ButtonAt hit-tests a screen-space point. Buttons are tested in declared
// order and the first match wins: an override tests its image rectangle, a
// rectangle hotspot its declared rect, and a query hotspot samples the
// button's plane hotspot bitmap against the declared class range.
func (s *Scene) ButtonAt(pt image.Point) int {
	p := pt.Add(s.origin)
	for i := range s.buttons {
		b := &s.buttons[i]
		if b.override != nil {
			if p.In(b.override.img.Bounds().Add(b.override.pos)) {
				return i
			}
			continue
		}
		switch b.rec.HotspotType {
		case boltlib.HotspotRect:
			if p.In(b.rec.Rect()) {
				return i
			}
		case boltlib.HotspotQuery:
			class := int(s.hotspotClass(b.rec.Plane, p))
			if class >= b.rec.Left && class <= b.rec.Right {
				return i
			}
		}
	}
	return NoButton
}

func (s *Scene) hotspotClass(planeIdx int, p image.Point) byte {
	pl := &s.fore
	if gfx.Plane(planeIdx) == gfx.PlaneBack {
		pl = &s.back
	}
	if pl.hotspots == nil {
		return 0
	}
	return pl.hotspots.At(p)
}

// HandleMsg gives the scene first look at pointer traffic. Hover moves are
// consumed into highlight changes; a click comes back as a click-button
// message carrying the hit button (or NoButton) for the card to judge.
func (s *Scene) HandleMsg(msg types.Msg) types.Msg {
	switch msg.Kind {
	case types.MsgHover:
		s.setHovered(s.ButtonAt(msg.Pos))
		return msg
	case types.MsgClick:
		return types.Msg{Kind: types.MsgClickButton, Pos: msg.Pos, Num: s.ButtonAt(msg.Pos)}
	default:
		return msg
	}
}

func (s *Scene) setHovered(btn int) {
	if btn == s.hovered {
		return
	}
	old := s.hovered
	s.hovered = btn
	if old != NoButton {
		s.drawButton(old, false)
	}
	if btn != NoButton {
		s.drawButton(btn, true)
	}
	s.r.MarkDirty()
}

// drawButton paints one button in its hovered or idle variant. Palette-mod
// graphics rewrite palette entries on the button's plane; sprite graphics
// blit one frame.
func (s *Scene) drawButton(idx int, hovered bool) {
	b := &s.buttons[idx]
	if b.override != nil {
		surf := s.r.PlaneSurface(s.buttonPlane(b))
		surf.DrawImage(b.override.img, b.override.pos.Sub(s.origin), true)
		return
	}
	if len(b.graphics) == 0 {
		return
	}
	g := b.graphics[b.current]
	id := g.idle
	if hovered {
		id = g.hovered
	}
	if !id.Valid() {
		return
	}
	switch g.kind {
	case boltlib.GraphicsPaletteMods:
		s.applyPaletteMods(b, id)
	case boltlib.GraphicsSprites:
		s.drawGraphicsSprite(b, id)
	default:
		s.log.Warn().Int("button", idx).Int("kind", g.kind).Msg("unknown graphics kind")
	}
}

func (s *Scene) buttonPlane(b *button) gfx.Plane {
	if gfx.Plane(b.rec.Plane) == gfx.PlaneBack {
		return gfx.PlaneBack
	}
	return gfx.PlaneFore
}

func (s *Scene) applyPaletteMods(b *button, id boltlib.ResourceID) {
	mods, err := boltlib.LoadPaletteMods(s.c, id)
	if err != nil {
		s.log.Warn().Err(err).Msg("bad palette mods")
		return
	}
	for _, mod := range mods {
		colors, err := boltlib.LoadColors(s.c, mod.Colors)
		if err != nil {
			s.log.Warn().Err(err).Msg("bad mod colors")
			continue
		}
		if len(colors) > mod.Count*3 {
			colors = colors[:mod.Count*3]
		}
		s.r.SetPlanePalette(s.buttonPlane(b), mod.Index, colors)
	}
}

func (s *Scene) drawGraphicsSprite(b *button, id boltlib.ResourceID) {
	sprites, err := boltlib.LoadSprites(s.c, id)
	if err != nil {
		s.log.Warn().Err(err).Msg("bad graphics sprites")
		return
	}
	if len(sprites) == 0 {
		return
	}
	sp := sprites[0]
	if err := s.cacheImage(sp.Image); err != nil {
		s.log.Warn().Err(err).Msg("bad sprite image")
		return
	}
	img := s.images[sp.Image]
	if img == nil {
		return
	}
	surf := s.r.PlaneSurface(s.buttonPlane(b))
	surf.DrawImage(img, sp.Pos.Sub(s.origin), true)
}
