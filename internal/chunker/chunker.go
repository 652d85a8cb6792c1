// Package chunker splits document text into overlapping passages for
// embedding and retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// boundaries lists split points in order of preference: paragraph break,
// line break, sentence end, then plain whitespace. A cut falls back to the
// next smaller unit only when the larger one is absent from the window.
var boundaries = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Splitter produces chunks of at most ChunkSize bytes where adjacent
// chunks share Overlap bytes of context across the cut. Cuts land on
// rune boundaries, so chunks of multibyte text stay valid UTF-8; the
// overlap may widen by a few bytes to reach one.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a splitter. The overlap < chunkSize invariant is
// enforced by config validation at startup; the constructor only guards
// against nonsensical zero values.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap length.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into chunks. Text no longer than the chunk size comes
// back as a single chunk; empty input yields no chunks. Concatenating the
// chunks minus their overlaps reconstructs the input exactly.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := s.cut(text, start)
		chunks = append(chunks, text[start:end])
		if end >= len(text) {
			break
		}
		next := runeBoundary(text, end-s.overlap)
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// cut returns the end offset for the chunk starting at start, preferring
// the largest boundary present in the window. The cut must land beyond the
// overlap carried from the previous chunk so the splitter always advances.
func (s *Splitter) cut(text string, start int) int {
	end := start + s.chunkSize
	if end >= len(text) {
		return len(text)
	}

	window := text[start:end]
	minCut := s.overlap + 1
	for _, sep := range boundaries {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			cut := idx + len(sep)
			if cut > minCut {
				return start + cut
			}
		}
	}
	// No usable boundary: hard cut at the size limit, backed off so the
	// cut never splits a multibyte rune.
	if b := runeBoundary(text, end); b > start {
		return b
	}
	return end
}

// runeBoundary backs i off to the nearest UTF-8 rune start at or
// before i. Callers guarantee i < len(s).
func runeBoundary(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
