package knnreader

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// BoxColor is the default outline color for recognized characters
var BoxColor = color.RGBA{G: 255, A: 255}

// Annotate returns a copy of src with an outline of the given thickness
// drawn around every box. Boxes are relative to src's top-left corner.
func Annotate(src image.Image, boxes []image.Rectangle, c color.Color, thickness int) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	thickness = max(thickness, 1)
	pen := image.NewUniform(c)
	for _, box := range boxes {
		r := box.Inset(-thickness / 2)
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), // top
			image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), // bottom
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), // left
			image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), // right
		}
		for _, e := range edges {
			draw.Draw(dst, e.Intersect(dst.Bounds()), pen, image.Point{}, draw.Src)
		}
	}
	return dst
}

// SavePNG writes img to filename
func SavePNG(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return f.Close()
}
