package knnreader

import (
	"errors"
	"image"
	"image/color"
	"sync"
)

// boxBlob builds a blob whose contour is the rectangle at (x, y) of size w x h.
func boxBlob(x, y, w, h int) Blob {
	return NewBlob([]image.Point{
		{x, y}, {x + w - 1, y}, {x + w - 1, y + h - 1}, {x, y + h - 1},
	})
}

// page returns a white grayscale page.
func page(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// mask returns an empty binary image.
func mask(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

func fill(img *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

const (
	glyphW = 12
	glyphH = 16
)

// drawGlyph draws one of seven distinct 12x16 connected shapes in black with
// 2px strokes. Every shape touches all four sides of its box.
func drawGlyph(img *image.Gray, x, y, kind int) {
	at := func(x0, y0, x1, y1 int) image.Rectangle {
		return image.Rect(x+x0, y+y0, x+x1, y+y1)
	}
	left := at(0, 0, 2, glyphH)
	right := at(glyphW-2, 0, glyphW, glyphH)
	top := at(0, 0, glyphW, 2)
	bottom := at(0, glyphH-2, glyphW, glyphH)
	middle := at(0, glyphH/2-1, glyphW, glyphH/2+1)
	center := at(glyphW/2-1, 0, glyphW/2+1, glyphH)

	var parts []image.Rectangle
	switch kind % 7 {
	case 0: // box
		parts = []image.Rectangle{left, right, top, bottom}
	case 1: // I
		parts = []image.Rectangle{top, center, bottom}
	case 2: // C with a hook
		parts = []image.Rectangle{left, bottom, at(glyphW-2, 0, glyphW, 4), at(0, 0, glyphW, 2)}
	case 3: // plus
		parts = []image.Rectangle{center, middle}
	case 4: // E
		parts = []image.Rectangle{left, top, middle, bottom}
	case 5: // U
		parts = []image.Rectangle{left, right, bottom}
	case 6: // H
		parts = []image.Rectangle{left, right, middle}
	}
	for _, p := range parts {
		fill(img, p, 0)
	}
}

// sequenceClassifier answers with the runes of text in call order.
type sequenceClassifier struct {
	mu    sync.Mutex
	text  []rune
	calls int
	fail  int // 1-based call that fails, 0 for never
}

var errStub = errors.New("stub classifier failure")

func (s *sequenceClassifier) Classify(image.Image) (rune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail > 0 && s.calls == s.fail {
		return 0, errStub
	}
	if len(s.text) == 0 {
		return 'x', nil
	}
	return s.text[(s.calls-1)%len(s.text)], nil
}
