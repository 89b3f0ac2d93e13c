package vision

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTemplateMissing(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
}

func TestLoadTemplateCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := LoadTemplate(path)
	if err == nil {
		t.Fatal("Expected decode error for corrupt template")
	}
	if errors.Is(err, ErrTemplateNotFound) {
		t.Error("Corrupt file is not a missing file")
	}
}

func TestLoadTemplateRoundTrip(t *testing.T) {
	src := textureImage(12, 9, 5)
	path := writeTemplatePNG(t, t.TempDir(), "round.png", src)

	loaded, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate failed: %v", err)
	}
	if loaded.Bounds() != src.Bounds() {
		t.Fatalf("Expected bounds %v, got %v", src.Bounds(), loaded.Bounds())
	}
	if loaded.RGBAAt(3, 4) != src.RGBAAt(3, 4) {
		t.Errorf("Pixel mismatch after round trip")
	}
}

func TestLoadTemplatePicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "live.png", flatImage(4, 4, color.RGBA{R: 255, A: 255}))

	first, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate failed: %v", err)
	}

	writeTemplatePNG(t, dir, "live.png", flatImage(4, 4, color.RGBA{B: 255, A: 255}))
	second, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate after edit failed: %v", err)
	}

	if first.RGBAAt(0, 0) == second.RGBAAt(0, 0) {
		t.Error("Edited template should be re-read, not served from a cache")
	}
}

func TestToRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 6, 6))
	gray.SetGray(2, 2, color.Gray{Y: 200})

	rgba := ToRGBA(gray)
	if rgba.Bounds() != image.Rect(0, 0, 6, 6) {
		t.Fatalf("Expected origin-anchored bounds, got %v", rgba.Bounds())
	}
	if got := rgba.RGBAAt(2, 2); got.R != 200 || got.G != 200 || got.B != 200 {
		t.Errorf("Gray conversion mismatch: %v", got)
	}
}
