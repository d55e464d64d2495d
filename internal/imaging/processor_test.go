// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessPromo(t *testing.T) {
	p := NewProcessor(t.TempDir())
	data := testImage(t, 800, 600)

	result, err := p.ProcessPromo(bytes.NewReader(data), "promo1", "banner.png")
	if err != nil {
		t.Fatalf("ProcessPromo failed: %v", err)
	}

	if result.Width != 800 || result.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", result.Width, result.Height)
	}
	if result.MimeType != MimeTypePNG {
		t.Errorf("MimeType = %q, want %q", result.MimeType, MimeTypePNG)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("original not saved: %v", err)
	}

	// An 800x600 source yields both the fit and the crop variant.
	for _, name := range []string{"menu", "thumb"} {
		path, ok := result.Variants[name]
		if !ok {
			t.Errorf("missing %q variant", name)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%q variant not saved: %v", name, err)
		}
	}
}

func TestProcessPromoSmallSourceSkipsFitVariant(t *testing.T) {
	p := NewProcessor(t.TempDir())
	data := testImage(t, 100, 80)

	result, err := p.ProcessPromo(bytes.NewReader(data), "promo2", "small.png")
	if err != nil {
		t.Fatalf("ProcessPromo failed: %v", err)
	}

	if _, ok := result.Variants["menu"]; ok {
		t.Error("fit variant must be skipped for an already-small source")
	}
	if _, ok := result.Variants["thumb"]; !ok {
		t.Error("crop variant must still be produced")
	}
}

func TestProcessPromoRejectsGarbage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.ProcessPromo(bytes.NewReader([]byte("not an image")), "x", "x.png"); err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestDeleteImage(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)
	data := testImage(t, 800, 600)

	result, err := p.ProcessPromo(bytes.NewReader(data), "promo3", "banner.png")
	if err != nil {
		t.Fatalf("ProcessPromo failed: %v", err)
	}

	if err := p.DeleteImage("promo3"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	if _, err := os.Stat(result.FilePath); !os.IsNotExist(err) {
		t.Error("original still present after delete")
	}
	if _, err := os.Stat(filepath.Join(dir, "menu", "promo3")); !os.IsNotExist(err) {
		t.Error("variant dir still present after delete")
	}
}

func TestSaveImageFileRejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.saveImageFile("../escape", "x.png", []byte("data")); err == nil {
		t.Error("expected error for subdir traversal")
	}
	if _, err := p.saveImageFile("originals/ok", "..", []byte("data")); err == nil {
		t.Error("expected error for invalid filename")
	}
}

func TestIsImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	for _, mt := range []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP} {
		if !p.IsImage(mt) {
			t.Errorf("IsImage(%q) = false", mt)
		}
	}
	if p.IsImage("application/pdf") {
		t.Error("IsImage accepted a PDF")
	}
}

func TestDetectMimeType(t *testing.T) {
	p := NewProcessor(t.TempDir())
	data := testImage(t, 10, 10)

	if mt := p.DetectMimeType(data); mt != MimeTypePNG {
		t.Errorf("DetectMimeType = %q, want %q", mt, MimeTypePNG)
	}
}

func TestApplyOrientation(t *testing.T) {
	// 2x1 image: rotating 90 degrees swaps the dimensions.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))

	rotated := applyOrientation(img, 6)
	if b := rotated.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
		t.Errorf("orientation 6 bounds = %dx%d, want 1x2", b.Dx(), b.Dy())
	}

	same := applyOrientation(img, 1)
	if b := same.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("orientation 1 must not change bounds")
	}
}
