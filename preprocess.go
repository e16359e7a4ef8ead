package knnreader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/sunshineplan/imgconv"
)

// Pixel values of a binarized image. Foreground (ink) is white so that the
// cropped feature images match the training samples.
const (
	foreground = 255
	background = 0
)

// DecodeImage decodes any format imgconv understands (PNG, JPEG, GIF, BMP,
// TIFF, WEBP and the first page of a PDF)
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imgconv.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer
func DecodeImageBytes(data []byte) (image.Image, error) {
	return DecodeImage(bytes.NewReader(data))
}

// Binarize converts img to grayscale, smooths it and applies the adaptive
// inverse threshold configured in cfg. It returns the grayscale image as
// well, for debugging.
func Binarize(img image.Image, cfg Config) (gray, binary *image.Gray) {
	smoothed := imaging.Grayscale(img)
	if cfg.BlurKernel > 1 {
		smoothed = imaging.Blur(smoothed, gaussianSigma(cfg.BlurKernel))
	}
	gray = toGrayscale(smoothed)

	switch cfg.ThresholdMethod {
	case ThresholdMean:
		binary = meanThreshold(gray, cfg.BlockSize, cfg.ThresholdC)
	default:
		binary = gaussianThreshold(gray, cfg.BlockSize, cfg.ThresholdC)
	}
	return gray, binary
}

// gaussianSigma follows the usual rule for picking sigma from a kernel size.
func gaussianSigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return gray
}

// gaussianThreshold compares each pixel with a Gaussian-weighted local mean.
func gaussianThreshold(img *image.Gray, blockSize, c int) *image.Gray {
	local := toGrayscale(imaging.Blur(img, gaussianSigma(blockSize)))

	bounds := img.Bounds()
	binary := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			threshold := int(local.GrayAt(x, y).Y) - c
			binary.SetGray(x, y, thresholdPixel(int(img.GrayAt(x, y).Y), threshold))
		}
	}
	return binary
}

// meanThreshold compares each pixel with the plain mean of its block,
// using an integral image so the cost does not depend on blockSize.
func meanThreshold(img *image.Gray, blockSize, c int) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	halfBlock := blockSize / 2

	// sums[(y+1)*(width+1)+(x+1)] holds the sum of the rectangle [0,x]x[0,y].
	stride := width + 1
	sums := make([]int, stride*(height+1))
	for y := 0; y < height; y++ {
		row := 0
		for x := 0; x < width; x++ {
			row += int(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + row
		}
	}

	binary := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		y0, y1 := max(y-halfBlock, 0), min(y+halfBlock+1, height)
		for x := 0; x < width; x++ {
			x0, x1 := max(x-halfBlock, 0), min(x+halfBlock+1, width)
			sum := sums[y1*stride+x1] - sums[y0*stride+x1] - sums[y1*stride+x0] + sums[y0*stride+x0]
			count := (x1 - x0) * (y1 - y0)

			threshold := sum/count - c
			v := int(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			binary.SetGray(bounds.Min.X+x, bounds.Min.Y+y, thresholdPixel(v, threshold))
		}
	}
	return binary
}

func thresholdPixel(v, threshold int) color.Gray {
	if v > threshold {
		return color.Gray{Y: background}
	}
	return color.Gray{Y: foreground}
}
