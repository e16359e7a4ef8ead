package knnreader

import (
	"image"
	"testing"
)

func TestNewBlob(t *testing.T) {
	tests := []struct {
		name     string
		boundary []image.Point
		box      image.Rectangle
		area     float64
	}{
		{
			name:     "Rectangle",
			boundary: []image.Point{{10, 20}, {19, 20}, {19, 34}, {10, 34}},
			box:      image.Rect(10, 20, 20, 35),
			area:     126,
		},
		{
			name:     "Triangle",
			boundary: []image.Point{{0, 0}, {4, 0}, {0, 4}},
			box:      image.Rect(0, 0, 5, 5),
			area:     8,
		},
		{
			name:     "Single point",
			boundary: []image.Point{{3, 4}},
			box:      image.Rect(3, 4, 4, 5),
			area:     0,
		},
		{
			name:     "Empty",
			boundary: nil,
			box:      image.Rectangle{},
			area:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlob(tt.boundary)
			if b.Box != tt.box {
				t.Errorf("Box = %v, want %v", b.Box, tt.box)
			}
			if b.Area != tt.area {
				t.Errorf("Area = %v, want %v", b.Area, tt.area)
			}
		})
	}
}

func TestNewBlobCopiesBoundary(t *testing.T) {
	boundary := []image.Point{{0, 0}, {9, 0}, {9, 9}}
	b := NewBlob(boundary)
	boundary[0] = image.Pt(100, 100)
	if b.Boundary[0] != image.Pt(0, 0) {
		t.Error("NewBlob shares the caller's boundary slice")
	}
}

func TestValidBlob(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		blob Blob
		want bool
	}{
		{"Below minimum area", boxBlob(0, 0, 5, 5), false},   // area 16
		{"Exactly minimum area", boxBlob(0, 0, 11, 6), true}, // area 50
		{"Above minimum area", boxBlob(0, 0, 20, 30), true},  // area 551
		{"Zero area line", boxBlob(0, 0, 40, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ValidBlob(tt.blob); got != tt.want {
				t.Errorf("ValidBlob() = %v, want %v (area %v)", got, tt.want, tt.blob.Area)
			}
		})
	}
}

func TestFilterBlobs(t *testing.T) {
	cfg := DefaultConfig()
	noise := boxBlob(100, 100, 3, 3)
	a := boxBlob(0, 0, 20, 30)
	b := boxBlob(30, 0, 20, 30)

	got := cfg.FilterBlobs([]Blob{a, noise, b})
	if len(got) != 2 || got[0].Box != a.Box || got[1].Box != b.Box {
		t.Errorf("FilterBlobs() = %v, want the two large blobs in order", got)
	}

	cfg.MinContourArea = 0
	if got := cfg.FilterBlobs([]Blob{noise}); len(got) != 1 {
		t.Errorf("MinContourArea 0 should keep every blob, got %d", len(got))
	}
}
