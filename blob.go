package knnreader

import (
	"image"
	"math"
)

// Blob is one detected candidate character: the outer contour of a connected
// foreground region together with its bounding box and enclosed area.
type Blob struct {
	Boundary []image.Point
	Box      image.Rectangle
	Area     float64
}

// NewBlob derives the bounding box and area from a contour. The box is
// inclusive of the boundary pixels, so a single point yields a 1x1 box.
func NewBlob(boundary []image.Point) Blob {
	pts := make([]image.Point, len(boundary))
	copy(pts, boundary)
	return Blob{
		Boundary: pts,
		Box:      boundingBox(pts),
		Area:     polygonArea(pts),
	}
}

// X returns the left edge of the bounding box
func (b Blob) X() int { return b.Box.Min.X }

// Y returns the top edge of the bounding box
func (b Blob) Y() int { return b.Box.Min.Y }

// ValidBlob reports whether b is large enough to be a character
func (c Config) ValidBlob(b Blob) bool {
	return b.Area >= c.MinContourArea
}

// FilterBlobs keeps the valid blobs, preserving detection order
func (c Config) FilterBlobs(blobs []Blob) []Blob {
	valid := make([]Blob, 0, len(blobs))
	for _, b := range blobs {
		if c.ValidBlob(b) {
			valid = append(valid, b)
		}
	}
	return valid
}

func boundingBox(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// polygonArea is the shoelace area of a closed polygon through pixel centers.
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(float64(sum)) / 2
}
