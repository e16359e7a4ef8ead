package knnreader

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestAnnotate(t *testing.T) {
	src := page(40, 40)
	box := image.Rect(10, 10, 20, 25)

	out := Annotate(src, []image.Rectangle{box}, BoxColor, 2)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("Bounds() = %v, want %v", out.Bounds(), src.Bounds())
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	tests := []struct {
		name string
		at   image.Point
		want color.RGBA
	}{
		{"Top edge", image.Pt(15, 9), BoxColor},
		{"Left edge", image.Pt(9, 17), BoxColor},
		{"Bottom right corner", image.Pt(20, 25), BoxColor},
		{"Interior", image.Pt(15, 17), white},
		{"Outside", image.Pt(2, 2), white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := out.RGBAAt(tt.at.X, tt.at.Y); got != tt.want {
				t.Errorf("pixel %v = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	if src.GrayAt(15, 9).Y != 255 {
		t.Error("Annotate modified its source image")
	}
}

func TestAnnotateClipsBoxes(t *testing.T) {
	out := Annotate(page(10, 10), []image.Rectangle{image.Rect(-5, -5, 30, 30)}, BoxColor, 3)
	if out.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Errorf("Bounds() = %v", out.Bounds())
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(page(8, 8), path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	if err := SavePNG(page(8, 8), filepath.Join(t.TempDir(), "missing", "out.png")); err == nil {
		t.Error("expected error for a missing directory")
	}
}
