package knnreader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
	"github.com/sunshineplan/imgconv"
	pdf2 "github.com/sunshineplan/pdf"
)

// IsPDF reports whether data is a PDF document, judged by its content
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is("application/pdf")
}

// ReadDocument reads an image or PDF file. The format is detected from the
// file content, not its name. An image yields a single Result.
func (r *Reader) ReadDocument(path string) ([]*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	if IsPDF(data) {
		return r.ReadPDF(bytes.NewReader(data))
	}

	res, err := r.ReadBytes(data)
	if res == nil {
		return nil, err
	}
	return []*Result{res}, err
}

// ReadPDFFile reads every scanned image of a PDF file
func (r *Reader) ReadPDFFile(path string) ([]*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer file.Close()

	return r.ReadPDF(file)
}

// ReadPDF reads every scanned image embedded in a PDF. When the PDF has no
// embedded images its first page is rendered instead. Images without
// characters are skipped; ErrNoBlobs is returned only if none had any.
func (r *Reader) ReadPDF(reader io.Reader) ([]*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read and validate PDF: %w", err)
	}
	r.log.WithField("pages", ctx.PageCount).Debug("validated PDF")

	images, err := r.scannedImages(data)
	if err != nil {
		return nil, err
	}

	var results []*Result
	for i, img := range images {
		log := r.log.WithFields(logrus.Fields{
			"image":  i + 1,
			"width":  img.Bounds().Dx(),
			"height": img.Bounds().Dy(),
		})

		res, err := r.ReadImage(img)
		if errors.Is(err, ErrNoBlobs) {
			log.Debug("skipping image without characters")
			continue
		}
		if err != nil {
			return append(results, res), fmt.Errorf("image %d: %w", i+1, err)
		}
		log.WithField("lines", len(res.Lines)).Debug("read embedded image")
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, ErrNoBlobs
	}
	return results, nil
}

// scannedImages returns the images embedded in a PDF. A PDF without any, or
// one whose image streams cannot be decoded, is rendered as its first page.
func (r *Reader) scannedImages(data []byte) ([]image.Image, error) {
	if embedded := r.embeddedImages(data); len(embedded) > 0 {
		return embedded, nil
	}

	r.log.Debug("no embedded images, rendering first page")
	rendered, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF page: %w", err)
	}
	return []image.Image{rendered}, nil
}

// embeddedImages yields nil when the image decoder fails or panics, which it
// does on some malformed streams.
func (r *Reader) embeddedImages(data []byte) (images []image.Image) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("panic", rec).Debug("embedded image decoder crashed")
			images = nil
		}
	}()

	images, err := pdf2.DecodeAll(bytes.NewReader(data))
	if err != nil {
		r.log.WithError(err).Debug("could not decode embedded images")
		return nil
	}
	return images
}
