// Package gfx defines the drawing surface handed to scenes and the renderer
// contract the engine drives. Rendering itself (presenting planes to an
// actual display) is a collaborator concern; the engine only fills surfaces,
// sets palettes, and raises the dirty flag.
package gfx

import (
	"image"

	"github.com/nathoo/boltcore/boltlib"
)

// Plane selects one of the two drawing layers of a scene.
type Plane int

const (
	PlaneFore Plane = 0
	PlaneBack Plane = 1
)

func (p Plane) String() string {
	if p == PlaneFore {
		return "fore"
	}
	return "back"
}

// Renderer is the drawing collaborator. The engine calls it single-threaded;
// implementations never call back into the engine.
type Renderer interface {
	// ClearPlane resets a plane's surface to the background color.
	ClearPlane(p Plane)
	// PlaneSurface exposes a plane's pixel buffer for blitting.
	PlaneSurface(p Plane) *Surface
	// MarkDirty tells the presenter the next frame must repaint.
	MarkDirty()
	// SetPlanePalette installs count RGB triples starting at entry first.
	SetPlanePalette(p Plane, first int, rgb []byte)
	// ResetColorCycles drops any registered palette cycling.
	ResetColorCycles()
	// SetColorCycle registers one cycling window on a plane's palette.
	SetColorCycle(slot int, p Plane, start, end, delayTicks int)
	// SetFade scales overall brightness; 0 is black, 1 is full.
	SetFade(level float64)
}

// Surface is an 8-bit indexed pixel buffer.
type Surface struct {
	W, H int
	Pix  []byte
}

// NewSurface allocates a zeroed surface.
func NewSurface(w, h int) *Surface {
	return &Surface{W: w, H: h, Pix: make([]byte, w*h)}
}

// Clear fills the surface with one color.
func (s *Surface) Clear(color byte) {
	for i := range s.Pix {
		s.Pix[i] = color
	}
}

// At samples a pixel; points outside the surface read as 0.
func (s *Surface) At(p image.Point) byte {
	if p.X < 0 || p.X >= s.W || p.Y < 0 || p.Y >= s.H {
		return 0
	}
	return s.Pix[p.Y*s.W+p.X]
}

// DrawImage blits a decoded image at its own offset plus at. When
// transparent is set, color 0 pixels leave the destination untouched
// (sprite and button overlays); plane backgrounds draw opaque.
func (s *Surface) DrawImage(img *boltlib.Image, at image.Point, transparent bool) {
	src := img.Pixels()
	origin := at.Add(img.Offset)
	for y := 0; y < img.Height; y++ {
		dy := origin.Y + y
		if dy < 0 || dy >= s.H {
			continue
		}
		srcRow := src[y*img.Width : (y+1)*img.Width]
		dstRow := s.Pix[dy*s.W : (dy+1)*s.W]
		for x := 0; x < img.Width; x++ {
			dx := origin.X + x
			if dx < 0 || dx >= s.W {
				continue
			}
			c := srcRow[x]
			if transparent && c == 0 {
				continue
			}
			dstRow[dx] = c
		}
	}
}
