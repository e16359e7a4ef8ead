package knnreader

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Node names used in the training files.
const (
	classificationsNode = "classifications"
	imagesNode          = "images"
)

// Matrix is a dense row-major matrix as stored by OpenCV's FileStorage
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// Row returns a view of row i
func (m Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

type xmlMatrix struct {
	TypeID string `xml:"type_id,attr"`
	Rows   int    `xml:"rows"`
	Cols   int    `xml:"cols"`
	Dt     string `xml:"dt"`
	Data   string `xml:"data"`
}

// ReadMatrix finds the opencv-matrix node called name in an OpenCV XML
// storage document and decodes it.
func ReadMatrix(r io.Reader, name string) (Matrix, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return Matrix{}, fmt.Errorf("matrix %q not found", name)
		}
		if err != nil {
			return Matrix{}, fmt.Errorf("failed to parse storage: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}

		var raw xmlMatrix
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return Matrix{}, fmt.Errorf("failed to decode matrix %q: %w", name, err)
		}
		return raw.matrix(name)
	}
}

func (raw xmlMatrix) matrix(name string) (Matrix, error) {
	if raw.TypeID != "" && raw.TypeID != "opencv-matrix" {
		return Matrix{}, fmt.Errorf("node %q has type %q, want opencv-matrix", name, raw.TypeID)
	}
	switch raw.Dt {
	case "f", "d", "i", "u", "s", "w", "c":
	default:
		return Matrix{}, fmt.Errorf("matrix %q has unsupported element type %q", name, raw.Dt)
	}
	if raw.Rows < 0 || raw.Cols < 0 {
		return Matrix{}, fmt.Errorf("matrix %q has negative size %dx%d", name, raw.Rows, raw.Cols)
	}

	fields := strings.Fields(raw.Data)
	if len(fields) != raw.Rows*raw.Cols {
		return Matrix{}, fmt.Errorf("matrix %q holds %d values, want %dx%d", name, len(fields), raw.Rows, raw.Cols)
	}

	data := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Matrix{}, fmt.Errorf("matrix %q value %d: %w", name, i, err)
		}
		data[i] = float32(v)
	}
	return Matrix{Rows: raw.Rows, Cols: raw.Cols, Data: data}, nil
}

// WriteStorage writes matrices as an OpenCV XML storage document, in the
// order given by names.
func WriteStorage(w io.Writer, names []string, matrices map[string]Matrix) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, `<?xml version="1.0"?>`)
	fmt.Fprintln(bw, "<opencv_storage>")
	for _, name := range names {
		m, ok := matrices[name]
		if !ok {
			return fmt.Errorf("matrix %q not provided", name)
		}
		fmt.Fprintf(bw, "<%s type_id=\"opencv-matrix\">\n", name)
		fmt.Fprintf(bw, "  <rows>%d</rows>\n  <cols>%d</cols>\n  <dt>f</dt>\n  <data>", m.Rows, m.Cols)
		for i, v := range m.Data {
			if i%8 == 0 {
				bw.WriteString("\n    ")
			} else {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatStorageFloat(v))
		}
		fmt.Fprintf(bw, "</data></%s>\n", name)
	}
	fmt.Fprintln(bw, "</opencv_storage>")
	return bw.Flush()
}

// formatStorageFloat writes integral values the way OpenCV does ("48.").
func formatStorageFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnN") {
		s += "."
	}
	return s
}

// ============================================================================
// Training set
// ============================================================================

// TrainingSet pairs flattened character images with their labels
type TrainingSet struct {
	Samples [][]float32
	Labels  []float32
}

// Len returns the number of samples
func (t *TrainingSet) Len() int {
	return len(t.Samples)
}

// LoadTrainingSet reads the classifications and images XML files. The
// classifications matrix holds one label per row of the images matrix.
func LoadTrainingSet(classificationsPath, imagesPath string) (*TrainingSet, error) {
	labels, err := readMatrixFile(classificationsPath, classificationsNode)
	if err != nil {
		return nil, err
	}
	images, err := readMatrixFile(imagesPath, imagesNode)
	if err != nil {
		return nil, err
	}

	if len(labels.Data) != images.Rows {
		return nil, fmt.Errorf("%d classifications for %d training images", len(labels.Data), images.Rows)
	}

	set := &TrainingSet{Labels: labels.Data}
	for i := 0; i < images.Rows; i++ {
		set.Samples = append(set.Samples, images.Row(i))
	}
	return set, nil
}

// Save writes the set as two OpenCV XML files
func (t *TrainingSet) Save(classificationsPath, imagesPath string) error {
	cols := 0
	if len(t.Samples) > 0 {
		cols = len(t.Samples[0])
	}
	images := Matrix{Rows: len(t.Samples), Cols: cols}
	for i, s := range t.Samples {
		if len(s) != cols {
			return fmt.Errorf("sample %d has %d values, want %d: %w", i, len(s), cols, ErrDimension)
		}
		images.Data = append(images.Data, s...)
	}
	labels := Matrix{Rows: len(t.Labels), Cols: 1, Data: t.Labels}

	if err := writeMatrixFile(classificationsPath, classificationsNode, labels); err != nil {
		return err
	}
	return writeMatrixFile(imagesPath, imagesNode, images)
}

func readMatrixFile(path, name string) (Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return Matrix{}, fmt.Errorf("failed to open training file: %w", err)
	}
	defer file.Close()

	m, err := ReadMatrix(file, name)
	if err != nil {
		return Matrix{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func writeMatrixFile(path, name string, m Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create training file: %w", err)
	}
	if err := WriteStorage(file, []string{name}, map[string]Matrix{name: m}); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
