package knnreader

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// Supported label charsets. Training labels are single bytes, so a charset
// decides which rune a byte above 0x7F stands for.
const (
	CharsetLatin1      = "iso-8859-1"
	CharsetWindows1252 = "windows-1252"
	CharsetWindows1254 = "windows-1254"
)

var charsets = map[string]*charmap.Charmap{
	CharsetLatin1:      charmap.ISO8859_1,
	CharsetWindows1252: charmap.Windows1252,
	CharsetWindows1254: charmap.Windows1254,
}

func lookupCharset(name string) (*charmap.Charmap, error) {
	cm, ok := charsets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported label charset %q", name)
	}
	return cm, nil
}

// labelToRune converts a predicted numeric label into a printable rune
func labelToRune(cm *charmap.Charmap, label float32) (rune, error) {
	code := math.Round(float64(label))
	if code < 0 || code > 255 {
		return 0, fmt.Errorf("%w: %v out of byte range", ErrInvalidLabel, label)
	}
	r := cm.DecodeByte(byte(code))
	if r == unicode.ReplacementChar || !unicode.IsGraphic(r) || unicode.IsSpace(r) {
		return 0, fmt.Errorf("%w: %v is not printable", ErrInvalidLabel, label)
	}
	return r, nil
}

// runeToLabel is the inverse used when building training data
func runeToLabel(cm *charmap.Charmap, r rune) (float32, error) {
	b, ok := cm.EncodeRune(r)
	if !ok {
		return 0, fmt.Errorf("%w: %q has no single-byte code", ErrInvalidLabel, r)
	}
	return float32(b), nil
}
