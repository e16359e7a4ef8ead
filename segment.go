package knnreader

import (
	"slices"
)

// Word is a run of blobs on one line with no word gap between them
type Word struct {
	Blobs []Blob
}

// Line is one row of text, its words ordered left to right
type Line struct {
	Words []Word
}

// Blobs returns every blob of the line in left-to-right order
func (l Line) Blobs() []Blob {
	var out []Blob
	for _, w := range l.Words {
		out = append(out, w.Blobs...)
	}
	return out
}

// Len returns the number of characters on the line
func (l Line) Len() int {
	n := 0
	for _, w := range l.Words {
		n += len(w.Blobs)
	}
	return n
}

// Segmenter reconstructs reading order from unordered character blobs.
//
// Lines and words are both split with the same rule: a gap counts as a break
// when it is within Tolerance pixels of the largest gap seen in the group.
// A single outlier far away from the text inflates that largest gap and can
// merge lines or words that are really separate.
type Segmenter struct {
	Tolerance int
}

// NewSegmenter returns a segmenter using cfg's gap tolerance
func NewSegmenter(cfg Config) Segmenter {
	return Segmenter{Tolerance: cfg.GapTolerance}
}

// Comparators used with the stable sorts below.
var (
	byTop  = func(a, b Blob) int { return a.Y() - b.Y() }
	byLeft = func(a, b Blob) int { return a.X() - b.X() }
)

// Segment orders blobs top-to-bottom into lines and left-to-right into words.
// Empty input yields no lines. The input slice is not modified.
func (s Segmenter) Segment(blobs []Blob) []Line {
	if len(blobs) == 0 {
		return nil
	}

	rows := slices.Clone(blobs)
	slices.SortStableFunc(rows, byTop)

	var lines []Line
	for _, row := range splitAtGaps(rows, Blob.Y, s.Tolerance) {
		slices.SortStableFunc(row, byLeft)

		var line Line
		for _, word := range splitAtGaps(row, Blob.X, s.Tolerance) {
			line.Words = append(line.Words, Word{Blobs: word})
		}
		lines = append(lines, line)
	}
	return lines
}

// splitAtGaps cuts a sorted slice wherever the step in pos reaches the
// largest step minus tol. The trailing group is always flushed.
func splitAtGaps(items []Blob, pos func(Blob) int, tol int) [][]Blob {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return [][]Blob{items}
	}

	// Floor at one pixel so blobs at the same coordinate always stay together.
	threshold := max(maxGap(items, pos)-tol, 1)

	var groups [][]Blob
	start := 0
	for i := 1; i < len(items); i++ {
		if gap(items[i-1], items[i], pos) >= threshold {
			groups = append(groups, items[start:i:i])
			start = i
		}
	}
	return append(groups, items[start:])
}

func maxGap(items []Blob, pos func(Blob) int) int {
	largest := 0
	for i := 1; i < len(items); i++ {
		largest = max(largest, gap(items[i-1], items[i], pos))
	}
	return largest
}

func gap(a, b Blob, pos func(Blob) int) int {
	d := pos(b) - pos(a)
	if d < 0 {
		return -d
	}
	return d
}
