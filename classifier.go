package knnreader

import (
	"fmt"
	"image"
	"image/color"

	"github.com/sunshineplan/imgconv"
	"golang.org/x/text/encoding/charmap"
)

// Classifier recognizes the character in a cropped binary region
type Classifier interface {
	Classify(region image.Image) (rune, error)
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(region image.Image) (rune, error)

// Classify calls f(region)
func (f ClassifierFunc) Classify(region image.Image) (rune, error) {
	return f(region)
}

// ============================================================================
// KNN Classifier
// ============================================================================

// KNNClassifier recognizes characters with a nearest-neighbor model trained
// on flattened, fixed-size crops of binarized characters.
type KNNClassifier struct {
	model   *KNearest
	charset *charmap.Charmap
	width   int
	height  int
	k       int
}

// NewKNNClassifier creates a classifier around a trained model. The model's
// feature length must equal cfg.ResizeWidth*cfg.ResizeHeight.
func NewKNNClassifier(model *KNearest, cfg Config) (*KNNClassifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cm, err := lookupCharset(cfg.LabelCharset)
	if err != nil {
		return nil, err
	}
	if model.Len() == 0 {
		return nil, ErrUntrained
	}
	if model.Dim() != cfg.featureLen() {
		return nil, fmt.Errorf("model features have %d values, config expects %dx%d: %w",
			model.Dim(), cfg.ResizeWidth, cfg.ResizeHeight, ErrDimension)
	}
	return &KNNClassifier{
		model:   model,
		charset: cm,
		width:   cfg.ResizeWidth,
		height:  cfg.ResizeHeight,
		k:       cfg.K,
	}, nil
}

// NewKNNClassifierFromFiles loads OpenCV XML training files and trains a model
func NewKNNClassifierFromFiles(classificationsPath, imagesPath string, cfg Config) (*KNNClassifier, error) {
	set, err := LoadTrainingSet(classificationsPath, imagesPath)
	if err != nil {
		return nil, err
	}
	model := NewKNearest()
	if err := model.Train(set.Samples, set.Labels); err != nil {
		return nil, err
	}
	return NewKNNClassifier(model, cfg)
}

// Classify resizes region to the feature size and returns the predicted rune
func (c *KNNClassifier) Classify(region image.Image) (rune, error) {
	features := extractFeatures(region, c.width, c.height)
	label, err := c.model.FindNearest(features, c.k)
	if err != nil {
		return 0, err
	}
	return labelToRune(c.charset, label)
}

// extractFeatures resizes img to width x height and flattens its gray
// levels row by row.
func extractFeatures(img image.Image, width, height int) []float32 {
	resized := imgconv.Resize(img, &imgconv.ResizeOption{Width: width, Height: height})
	bounds := resized.Bounds()

	features := make([]float32, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(resized.At(x, y)).(color.Gray)
			features = append(features, float32(g.Y))
		}
	}
	return features
}

// cropRegion copies rect out of a binary image so later stages own the pixels
func cropRegion(img *image.Gray, rect image.Rectangle) *image.Gray {
	rect = rect.Intersect(img.Bounds())
	cropped := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		start := img.PixOffset(rect.Min.X, y)
		copy(cropped.Pix[(y-rect.Min.Y)*cropped.Stride:], img.Pix[start:start+rect.Dx()])
	}
	return cropped
}
