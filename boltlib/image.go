package boltlib

import (
	"bytes"
	"fmt"
	"image"

	"github.com/32bitkid/bitreader"
)

// Image compression kinds.
const (
	CompressionCLUT7 = 0 // raw 7-bit indexed pixels, one byte each
	CompressionRL7   = 1 // run-length encoded 7-bit pixels
)

// Image is a decoded image resource: 7-bit indexed pixels plus the blit
// offset the authoring tool baked into the header. Hotspot bitmaps are
// ordinary images whose pixels are color-class values rather than colors.
type Image struct {
	Compression int
	Offset      image.Point
	Width       int
	Height      int
	pixels      []byte
}

const imageHeaderSize = 0x18

// LoadImage decodes an image resource, decompressing RL7 payloads.
//
// The RL7 stream is a sequence of byte-aligned control units, one row at a
// time: a set flag bit means the 7-bit color repeats for the count in the
// following byte (count 0 fills the rest of the row), a clear flag bit means
// a single pixel. A run may not cross a row boundary.
func LoadImage(c *Container, id ResourceID) (*Image, error) {
	e, err := c.typed(id, TypeImage)
	if err != nil {
		return nil, err
	}
	b := c.span(e)
	if len(b) < imageHeaderSize {
		return nil, formatErr(id, "image header truncated (%d bytes)", len(b))
	}
	im := &Image{
		Compression: int(b[0]),
		Offset:      image.Pt(i16at(b, 0x6), i16at(b, 0x8)),
		Width:       int(u16at(b, 0xA)),
		Height:      int(u16at(b, 0xC)),
	}
	payload := b[imageHeaderSize:]
	size := im.Width * im.Height

	switch im.Compression {
	case CompressionCLUT7:
		if len(payload) < size {
			return nil, formatErr(id, "image pixels truncated: need %d bytes, have %d", size, len(payload))
		}
		im.pixels = payload[:size]
	case CompressionRL7:
		pixels, err := decodeRL7(payload, im.Width, im.Height)
		if err != nil {
			return nil, formatErr(id, "bad RL7 stream: %v", err)
		}
		im.pixels = pixels
	default:
		return nil, formatErr(id, "unknown image compression %d", im.Compression)
	}
	return im, nil
}

func decodeRL7(src []byte, width, height int) ([]byte, error) {
	dst := make([]byte, width*height)
	bits := bitreader.NewReader(bytes.NewReader(src))
	for y := 0; y < height; y++ {
		row := dst[y*width : (y+1)*width]
		for x := 0; x < width; {
			run, err := bits.Read1()
			if err != nil {
				return nil, err
			}
			color, err := bits.Read8(7)
			if err != nil {
				return nil, err
			}
			n := 1
			if run {
				count, err := bits.Read8(8)
				if err != nil {
					return nil, err
				}
				if count == 0 {
					n = width - x
				} else {
					n = int(count)
				}
			}
			if x+n > width {
				return nil, fmt.Errorf("run of %d pixels crosses row %d boundary", n, y)
			}
			for i := 0; i < n; i++ {
				row[x+i] = color
			}
			x += n
		}
	}
	return dst, nil
}

// Bounds is the image rectangle positioned at its blit offset.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(im.Offset.X, im.Offset.Y,
		im.Offset.X+im.Width, im.Offset.Y+im.Height)
}

// Pixels exposes the decoded rows, Width bytes per row. Callers must treat
// the slice as read-only.
func (im *Image) Pixels() []byte { return im.pixels }

// At samples the pixel under a plane-space point, honoring the blit offset.
// Points outside the image sample as class 0.
func (im *Image) At(p image.Point) byte {
	x, y := p.X-im.Offset.X, p.Y-im.Offset.Y
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		return 0
	}
	return im.pixels[y*im.Width+x]
}
