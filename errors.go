package knnreader

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBlobs is returned when an image contains no valid character blob.
	ErrNoBlobs = errors.New("no character blobs found")

	// ErrUntrained is returned by a classifier that has no samples.
	ErrUntrained = errors.New("classifier has no training samples")

	// ErrInvalidLabel is returned when a predicted label has no printable rune.
	ErrInvalidLabel = errors.New("invalid classification label")

	// ErrClassification marks a failure while classifying the blobs of a line.
	ErrClassification = errors.New("classification failed")

	// ErrLabelMismatch is returned when training text and detected blobs disagree.
	ErrLabelMismatch = errors.New("label count does not match blob count")

	// ErrDimension is returned for feature vectors of the wrong length.
	ErrDimension = errors.New("feature dimension mismatch")
)

// LineError reports which line failed to classify
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v: line %d: %v", ErrClassification, e.Line, e.Err)
}

// Unwrap exposes both ErrClassification and the classifier's own error.
func (e *LineError) Unwrap() []error {
	return []error{ErrClassification, e.Err}
}
