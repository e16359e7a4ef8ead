package knnreader

import (
	"fmt"
	"image"
	"unicode"
)

// AddImage labels the characters found in img with the runes of text and
// appends them to the set. Characters are matched in reading order; spaces
// and line breaks in text are ignored, so text may be written the way it
// reads.
func (t *TrainingSet) AddImage(img image.Image, text string, cfg Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	cm, err := lookupCharset(cfg.LabelCharset)
	if err != nil {
		return 0, err
	}

	var labels []float32
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		label, err := runeToLabel(cm, r)
		if err != nil {
			return 0, err
		}
		labels = append(labels, label)
	}

	_, binary := Binarize(img, cfg)
	lines := NewSegmenter(cfg).Segment(cfg.FilterBlobs(DetectBlobs(binary)))

	var blobs []Blob
	for _, line := range lines {
		blobs = append(blobs, line.Blobs()...)
	}
	if len(blobs) != len(labels) {
		return 0, fmt.Errorf("%w: %d characters in text, %d blobs in image", ErrLabelMismatch, len(labels), len(blobs))
	}

	for i, b := range blobs {
		features := extractFeatures(cropRegion(binary, b.Box), cfg.ResizeWidth, cfg.ResizeHeight)
		t.Samples = append(t.Samples, features)
		t.Labels = append(t.Labels, labels[i])
	}
	return len(blobs), nil
}
