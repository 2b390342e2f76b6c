package boltlib

import (
	"encoding/binary"
	"errors"
	"image"
	"testing"
)

func imageBytes(compression, ox, oy, w, h int, payload []byte) []byte {
	b := make([]byte, imageHeaderSize)
	b[0] = byte(compression)
	binary.BigEndian.PutUint16(b[0x6:], uint16(int16(ox)))
	binary.BigEndian.PutUint16(b[0x8:], uint16(int16(oy)))
	binary.BigEndian.PutUint16(b[0xA:], uint16(w))
	binary.BigEndian.PutUint16(b[0xC:], uint16(h))
	return append(b, payload...)
}

// rl7 emits one control unit: a single pixel, or a run when count >= 0.
func rl7(color byte, count int) []byte {
	if count < 0 {
		return []byte{color & 0x7F}
	}
	return []byte{0x80 | (color & 0x7F), byte(count)}
}

func TestLoadImage_CLUT7(t *testing.T) {
	b := &containerBuilder{}
	b.add(0x0100_0000, TypeImage, imageBytes(CompressionCLUT7, 4, -2, 2, 2, []byte{1, 2, 3, 4}))
	c := b.build(t)

	im, err := LoadImage(c, 0x0100_0000)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if im.Width != 2 || im.Height != 2 {
		t.Fatalf("expected 2x2, got %dx%d", im.Width, im.Height)
	}
	if im.Offset.X != 4 || im.Offset.Y != -2 {
		t.Errorf("expected offset (4, -2), got %v", im.Offset)
	}
	if got := im.Bounds(); got != image.Rect(4, -2, 6, 0) {
		t.Errorf("bounds mismatch: %v", got)
	}

	// Offset-aware sampling.
	if got := im.At(image.Pt(4, -2)); got != 1 {
		t.Errorf("expected pixel 1 at top-left, got %d", got)
	}
	if got := im.At(image.Pt(5, -1)); got != 4 {
		t.Errorf("expected pixel 4 at bottom-right, got %d", got)
	}
	if got := im.At(image.Pt(0, 0)); got != 0 {
		t.Errorf("expected class 0 outside image, got %d", got)
	}
}

func TestLoadImage_RL7(t *testing.T) {
	// Row 0: run of three 5s then a lone 9. Row 1: fill-to-end of 2s.
	var stream []byte
	stream = append(stream, rl7(5, 3)...)
	stream = append(stream, rl7(9, -1)...)
	stream = append(stream, rl7(2, 0)...)

	b := &containerBuilder{}
	b.add(0x0100_0000, TypeImage, imageBytes(CompressionRL7, 0, 0, 4, 2, stream))
	c := b.build(t)

	im, err := LoadImage(c, 0x0100_0000)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	want := []byte{5, 5, 5, 9, 2, 2, 2, 2}
	got := im.Pixels()
	if len(got) != len(want) {
		t.Fatalf("expected %d pixels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestLoadImage_RL7RunPastRow(t *testing.T) {
	b := &containerBuilder{}
	b.add(0x0100_0000, TypeImage, imageBytes(CompressionRL7, 0, 0, 4, 1, rl7(1, 9)))
	c := b.build(t)

	_, err := LoadImage(c, 0x0100_0000)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError for oversized run, got %v", err)
	}
}

func TestLoadImage_Malformed(t *testing.T) {
	b := &containerBuilder{}
	b.add(0x0100_0000, TypeImage, imageBytes(CompressionCLUT7, 0, 0, 4, 4, []byte{1, 2}))
	b.add(0x0200_0000, TypeImage, imageBytes(7, 0, 0, 1, 1, []byte{0}))
	b.add(0x0300_0000, TypeImage, []byte{0, 1, 2})
	c := b.build(t)

	var fe *FormatError
	if _, err := LoadImage(c, 0x0100_0000); !errors.As(err, &fe) {
		t.Errorf("truncated pixels: expected FormatError, got %v", err)
	}
	if _, err := LoadImage(c, 0x0200_0000); !errors.As(err, &fe) {
		t.Errorf("unknown compression: expected FormatError, got %v", err)
	}
	if _, err := LoadImage(c, 0x0300_0000); !errors.As(err, &fe) {
		t.Errorf("short header: expected FormatError, got %v", err)
	}
}
