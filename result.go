package knnreader

import (
	"image"
	"strings"
)

// TextChar is one recognized character and where it was found
type TextChar struct {
	Text   string          `json:"text"`
	Bounds image.Rectangle `json:"bounds"`
}

// TextWord groups characters with no word gap between them
type TextWord struct {
	Text   string          `json:"text"`
	Bounds image.Rectangle `json:"bounds"`
	Chars  []TextChar      `json:"chars"`
}

// TextLine is one recognized row of text. Text joins the words with single
// spaces.
type TextLine struct {
	Text   string          `json:"text"`
	Bounds image.Rectangle `json:"bounds"`
	Words  []TextWord      `json:"words"`
}

// Result is the recognized text of one image, lines ordered top to bottom
type Result struct {
	Lines []TextLine `json:"lines"`
}

// Strings returns the text of every line
func (r *Result) Strings() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Text
	}
	return out
}

// Text returns all lines separated by newlines
func (r *Result) Text() string {
	return strings.Join(r.Strings(), "\n")
}

// Boxes returns the bounding box of every recognized character
func (r *Result) Boxes() []image.Rectangle {
	if r == nil {
		return nil
	}
	var boxes []image.Rectangle
	for _, l := range r.Lines {
		for _, w := range l.Words {
			for _, c := range w.Chars {
				boxes = append(boxes, c.Bounds)
			}
		}
	}
	return boxes
}
