package knnreader

import (
	"errors"
	"testing"
)

func TestLabelToRune(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		label   float32
		want    rune
		wantErr bool
	}{
		{"Digit", CharsetLatin1, 48, '0', false},
		{"Letter", CharsetLatin1, 65, 'A', false},
		{"Rounded label", CharsetLatin1, 56.9, '9', false},
		{"Latin-1 upper half", CharsetLatin1, 0xC7, 'Ç', false},
		{"Windows-1254 dotted I", CharsetWindows1254, 0xDD, 'İ', false},
		{"Windows-1252 euro", CharsetWindows1252, 0x80, '€', false},
		{"Control character", CharsetLatin1, 10, 0, true},
		{"Space", CharsetLatin1, 32, 0, true},
		{"Negative", CharsetLatin1, -3, 0, true},
		{"Above byte range", CharsetLatin1, 300, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := lookupCharset(tt.charset)
			if err != nil {
				t.Fatal(err)
			}
			got, err := labelToRune(cm, tt.label)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLabel) {
					t.Errorf("labelToRune(%v) error = %v, want ErrInvalidLabel", tt.label, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("labelToRune(%v) error = %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("labelToRune(%v) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestRuneToLabel(t *testing.T) {
	cm, _ := lookupCharset(CharsetWindows1254)

	for _, r := range "09AZİŞğ" {
		label, err := runeToLabel(cm, r)
		if err != nil {
			t.Fatalf("runeToLabel(%q) error = %v", r, err)
		}
		back, err := labelToRune(cm, label)
		if err != nil || back != r {
			t.Errorf("labelToRune(runeToLabel(%q)) = %q, %v", r, back, err)
		}
	}

	if _, err := runeToLabel(cm, '漢'); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("expected ErrInvalidLabel for a rune outside the charset, got %v", err)
	}
}

func TestLookupCharset(t *testing.T) {
	if _, err := lookupCharset("ISO-8859-1"); err != nil {
		t.Errorf("charset names should be case-insensitive: %v", err)
	}
	if _, err := lookupCharset("ebcdic"); err == nil {
		t.Error("expected error for unknown charset")
	}
}
