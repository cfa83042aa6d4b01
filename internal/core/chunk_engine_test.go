// ABOUTME: Tests for ChunkEngine windowing and truncation
// ABOUTME: Verifies exact reconstruction, size bounds, overlap and rune safety

package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewChunkEngine(t *testing.T) {
	ce := NewChunkEngine()
	if ce == nil {
		t.Error("NewChunkEngine() returned nil")
	}
}

func TestWindows_Reconstructs(t *testing.T) {
	ce := NewChunkEngine()

	tests := []struct {
		name      string
		text      string
		maxChars  int
		wantCount int
	}{
		{"empty", "", 10, 0},
		{"shorter than window", "abc", 10, 1},
		{"exact multiple", strings.Repeat("a", 30), 10, 3},
		{"remainder", strings.Repeat("b", 31), 10, 4},
		{"10000 chars", strings.Repeat("x", 10000), 3000, 4},
		{"multibyte", strings.Repeat("ação ", 100), 7, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := ce.Windows(tt.text, tt.maxChars)
			if len(windows) != tt.wantCount {
				t.Fatalf("got %d windows, want %d", len(windows), tt.wantCount)
			}
			if strings.Join(windows, "") != tt.text {
				t.Error("concatenated windows do not reproduce the input")
			}
			for i, w := range windows {
				n := utf8.RuneCountInString(w)
				if n > tt.maxChars {
					t.Errorf("window %d has %d runes, max %d", i, n, tt.maxChars)
				}
				if i < len(windows)-1 && n != tt.maxChars {
					t.Errorf("non-final window %d has %d runes, want %d", i, n, tt.maxChars)
				}
			}
		})
	}
}

func TestOverlapping_EmptyText(t *testing.T) {
	ce := NewChunkEngine()
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := ce.Overlapping(text, 500, 50); err != ErrEmptyText {
			t.Errorf("Overlapping(%q) error = %v, want ErrEmptyText", text, err)
		}
	}
}

func TestOverlapping_InvalidParams(t *testing.T) {
	ce := NewChunkEngine()
	if _, err := ce.Overlapping("texto", 0, 0); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := ce.Overlapping("texto", 10, 10); err == nil {
		t.Error("expected error for overlap >= size")
	}
}

func TestOverlapping_BoundsAndCoverage(t *testing.T) {
	ce := NewChunkEngine()
	words := strings.Fields(strings.Repeat("o governo anunciou novas medidas para a educação pública ", 60))
	text := strings.Join(words, " ")

	chunks, err := ce.Overlapping(text, 500, 50)
	if err != nil {
		t.Fatalf("Overlapping() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	runes := []rune(text)
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if c.Len() > 500 {
			t.Errorf("chunk %d spans %d runes, max 500", i, c.Len())
		}
		if !strings.HasPrefix(c.ID, "chunk_") {
			t.Errorf("chunk %d ID = %q", i, c.ID)
		}
		if c.Content != strings.TrimSpace(string(runes[c.Start:c.End])) {
			t.Errorf("chunk %d content does not match its offsets", i)
		}
		if i > 0 {
			prev := chunks[i-1]
			if c.Start >= prev.End {
				t.Errorf("chunk %d starts at %d, expected overlap with previous end %d", i, c.Start, prev.End)
			}
			if c.Start <= prev.Start {
				t.Errorf("chunk %d does not advance", i)
			}
		}
	}
	if chunks[0].Start != 0 || chunks[len(chunks)-1].End != len(runes) {
		t.Error("chunks do not cover the whole text")
	}
}

func TestOverlapping_PrefersWordBoundaries(t *testing.T) {
	ce := NewChunkEngine()
	text := strings.Repeat("palavra ", 200)

	chunks, err := ce.Overlapping(text, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range chunks {
		for _, w := range strings.Fields(c.Content) {
			if w != "palavra" {
				t.Fatalf("chunk %d splits a word: %q", i, w)
			}
		}
	}
}

func TestOverlapping_NoWhitespace(t *testing.T) {
	ce := NewChunkEngine()
	text := strings.Repeat("x", 1234)

	chunks, err := ce.Overlapping(text, 500, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(chunks))
	}
	if chunks[1].Start != 450 {
		t.Errorf("second chunk starts at %d, want 450", chunks[1].Start)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"under limit", "curto", 10, "curto"},
		{"word boundary", "uma frase bem longa", 12, "uma frase"},
		{"no whitespace", "abcdefghij", 4, "abcd"},
		{"multibyte", "ação rápida agora", 11, "ação rápida"},
		{"zero means unlimited", "abc", 0, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.max); got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}
