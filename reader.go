/*
Package knnreader reads lines of printed or handwritten characters from
scanned images.

The pipeline is pure Go:
  - grayscale, Gaussian smoothing and adaptive inverse binarization
  - outer contours of 8-connected ink regions, small ones dropped as noise
  - reading order: lines by vertical gaps, words by horizontal gaps
  - per-character k-nearest-neighbor classification on 20x30 crops

Usage:

	classifier, _ := knnreader.NewKNNClassifierFromFiles("classifications.xml", "images.xml", cfg)
	reader, _ := knnreader.NewReader(cfg, classifier)
	result, err := reader.ReadFile("numbers.png")
*/
package knnreader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Reader turns images into recognized lines of text
type Reader struct {
	cfg        Config
	classifier Classifier
	segmenter  Segmenter
	logger     *logrus.Logger
	log        *logrus.Entry
	debug      bool
	// level is the logger's level before SetDebug(true) raised it
	level logrus.Level
}

// Option configures a Reader
type Option func(*Reader)

// WithLogger routes the reader's log output through logger
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a reader. The classifier is consulted once per character.
func NewReader(cfg Config, classifier Classifier, opts ...Option) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if classifier == nil {
		return nil, errors.New("failed to create reader: nil classifier")
	}

	r := &Reader{
		cfg:        cfg,
		classifier: classifier,
		segmenter:  NewSegmenter(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logrus.New()
		r.logger.SetLevel(logrus.WarnLevel)
	}
	r.log = r.logger.WithField("component", "reader")
	return r, nil
}

// SetDebug enables debug logging and intermediate image dumps into
// Config.DebugDir. Turning it off restores the logger's previous level.
func (r *Reader) SetDebug(debug bool) {
	if debug == r.debug {
		return
	}
	r.debug = debug
	if debug {
		r.level = r.logger.GetLevel()
		r.logger.SetLevel(logrus.DebugLevel)
		return
	}
	r.logger.SetLevel(r.level)
}

// Config returns the reader's configuration
func (r *Reader) Config() Config {
	return r.cfg
}

// ReadFile reads an image file
func (r *Reader) ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return r.ReadBytes(data)
}

// ReadBytes reads an encoded image
func (r *Reader) ReadBytes(data []byte) (*Result, error) {
	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return r.ReadImage(img)
}

// ReadImage binarizes img, finds its characters and recognizes them.
// ErrNoBlobs is returned when nothing large enough to be a character is
// found. On a classification failure the returned Result holds the lines
// completed before the failing one.
func (r *Reader) ReadImage(img image.Image) (*Result, error) {
	gray, binary := Binarize(img, r.cfg)
	r.saveDebugImage(gray, "debug_01_grayscale.png")
	r.saveDebugImage(binary, "debug_02_binary.png")

	blobs := DetectBlobs(binary)
	valid := r.cfg.FilterBlobs(blobs)
	r.log.WithFields(logrus.Fields{
		"blobs": len(blobs),
		"valid": len(valid),
	}).Debug("detected character blobs")

	if len(valid) == 0 {
		return &Result{}, ErrNoBlobs
	}

	result, err := r.Recognize(binary, valid)
	if r.debug {
		r.saveDebugImage(Annotate(img, result.Boxes(), BoxColor, 2), "debug_03_annotated.png")
	}
	return result, err
}

// Recognize puts valid blobs of binary into reading order and classifies
// them. No blobs means an empty result.
func (r *Reader) Recognize(binary *image.Gray, blobs []Blob) (*Result, error) {
	lines := r.segmenter.Segment(blobs)
	r.log.WithField("lines", len(lines)).Debug("segmented blobs into lines")

	textLines, err := r.classifyLines(binary, lines)
	return &Result{Lines: textLines}, err
}

// classifyLines keeps output in line order whatever the worker count. The
// lines before the first failing one are returned with its error; lines
// after it are no longer started.
func (r *Reader) classifyLines(binary *image.Gray, lines []Line) ([]TextLine, error) {
	out := make([]TextLine, len(lines))

	if r.cfg.Workers <= 1 {
		for i, line := range lines {
			tl, err := r.classifyLine(binary, line)
			if err != nil {
				return out[:i], &LineError{Line: i, Err: err}
			}
			out[i] = tl
		}
		return out, nil
	}

	errs := make([]error, len(lines))
	var failed atomic.Int64 // lowest failing line so far
	failed.Store(int64(len(lines)))

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, line := range lines {
		if int64(i) > failed.Load() {
			break
		}
		i, line := i, line
		g.Go(func() error {
			if int64(i) > failed.Load() {
				return nil
			}
			tl, err := r.classifyLine(binary, line)
			if err != nil {
				errs[i] = &LineError{Line: i, Err: err}
				lowerTo(&failed, int64(i))
				return errs[i]
			}
			out[i] = tl
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return out, nil
	}

	first := int(failed.Load())
	return out[:first], errs[first]
}

// lowerTo sets v to n unless it already holds something smaller.
func lowerTo(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (r *Reader) classifyLine(binary *image.Gray, line Line) (TextLine, error) {
	var tl TextLine
	words := make([]string, 0, len(line.Words))

	for _, word := range line.Words {
		var tw TextWord
		var text strings.Builder
		for _, b := range word.Blobs {
			ch, err := r.classifier.Classify(cropRegion(binary, b.Box))
			if err != nil {
				return TextLine{}, fmt.Errorf("blob at (%d,%d): %w", b.X(), b.Y(), err)
			}
			text.WriteRune(ch)
			tw.Chars = append(tw.Chars, TextChar{Text: string(ch), Bounds: b.Box})
			tw.Bounds = tw.Bounds.Union(b.Box)
		}
		tw.Text = text.String()
		tl.Words = append(tl.Words, tw)
		tl.Bounds = tl.Bounds.Union(tw.Bounds)
		words = append(words, tw.Text)
	}

	tl.Text = strings.Join(words, " ")
	r.log.WithField("line", tl.Text).Debug("recognized line")
	return tl, nil
}

func (r *Reader) saveDebugImage(img image.Image, name string) {
	if !r.debug {
		return
	}
	path := filepath.Join(r.cfg.DebugDir, name)
	if err := SavePNG(img, path); err != nil {
		r.log.WithError(err).Warn("could not save debug image")
	}
}
