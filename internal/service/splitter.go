package service

import (
	"strings"
	"unicode/utf8"
)

// SplitConfig controls recursive text splitting for transcript chunks.
type SplitConfig struct {
	ChunkSize  int
	Overlap    int
	Separators []string
	Trim       bool
}

// DefaultSplitConfig provides the defaults used for transcript ingestion.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		ChunkSize:  1000,
		Overlap:    200,
		Separators: []string{"\n\n", "\n", " ", ""},
		Trim:       true,
	}
}

// Piece is one output of the splitter. Start is the byte offset of the piece
// in the source text before trimming, so downstream timestamp resolution never
// has to search for the piece again.
type Piece struct {
	Text  string
	Start int
}

// SplitText splits text into pieces of at most ChunkSize bytes, preferring the
// coarsest separator in the priority list that shrinks a run enough, and
// falling back to finer separators and finally raw slicing. Adjacent pieces
// share roughly Overlap bytes of source text. Pieces come out in source order
// and no content is dropped.
func SplitText(text string, cfg SplitConfig) []Piece {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultSplitConfig()
	}
	if text == "" {
		return nil
	}

	seps := cfg.Separators
	if len(seps) == 0 {
		seps = []string{""}
	}

	spans := atomize(text, 0, seps, cfg.ChunkSize)
	pieces := mergeSpans(text, spans, cfg.ChunkSize, cfg.Overlap)

	if cfg.Trim {
		pieces = trimPieces(pieces)
	}
	return pieces
}

// span is a half-open [start, end) range into the source text. Atomization
// produces contiguous spans: each span starts where the previous one ended.
type span struct {
	start, end int
}

// atomize recursively breaks text into spans no longer than maxSize. A span
// keeps its trailing separator so that concatenating spans reproduces the
// source exactly. When the separator list is exhausted without an empty-string
// fallback, an oversized span is returned as-is.
func atomize(text string, base int, seps []string, maxSize int) []span {
	if len(text) <= maxSize {
		return []span{{base, base + len(text)}}
	}

	sep, rest, ok := pickSeparator(text, seps)
	if !ok {
		return []span{{base, base + len(text)}}
	}
	if sep == "" {
		return sliceSpans(text, base, maxSize)
	}

	var out []span
	start := 0
	for start < len(text) {
		end := len(text)
		if idx := strings.Index(text[start:], sep); idx >= 0 {
			end = start + idx + len(sep)
		}
		if end-start > maxSize {
			out = append(out, atomize(text[start:end], base+start, rest, maxSize)...)
		} else {
			out = append(out, span{base + start, base + end})
		}
		start = end
	}
	return out
}

// pickSeparator returns the first separator present in text and the finer
// separators after it. The empty string always matches.
func pickSeparator(text string, seps []string) (string, []string, bool) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil, true
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:], true
		}
	}
	return "", nil, false
}

// sliceSpans cuts text into maxSize slices, backing cut points up to rune
// boundaries so multi-byte characters stay intact.
func sliceSpans(text string, base int, maxSize int) []span {
	var out []span
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				end = start + maxSize
			}
		}
		out = append(out, span{base + start, base + end})
		start = end
	}
	return out
}

// mergeSpans greedily packs contiguous spans into windows of at most maxSize
// bytes, then starts each following window early enough to re-include roughly
// overlap bytes of the previous window's tail. Every emitted piece is a literal
// substring of the source.
func mergeSpans(text string, spans []span, maxSize, overlap int) []Piece {
	pieces := make([]Piece, 0, len(spans))

	i := 0
	for i < len(spans) {
		winStart := spans[i].start
		j := i
		end := spans[i].end
		for j+1 < len(spans) && spans[j+1].end-winStart <= maxSize {
			j++
			end = spans[j].end
		}

		pieces = append(pieces, Piece{Text: text[winStart:end], Start: winStart})
		if j+1 >= len(spans) {
			break
		}

		// Back the next window up over whole trailing spans totalling at most
		// overlap bytes, always keeping the new window strictly ahead of the
		// previous one.
		k := j + 1
		for k-1 > i && end-spans[k-1].start <= overlap {
			k--
		}
		i = k
	}
	return pieces
}

// trimPieces trims whitespace from each piece, adjusting Start past the
// removed prefix. A window that extended the previous one by whitespace alone
// collapses into it after trimming; such pieces are dropped so trimmed pieces
// always end strictly later than their predecessor.
func trimPieces(pieces []Piece) []Piece {
	out := pieces[:0]
	prevEnd := -1
	for _, p := range pieces {
		trimmed := strings.TrimSpace(p.Text)
		if trimmed == "" {
			continue
		}
		leading := strings.Index(p.Text, trimmed)
		if leading < 0 {
			leading = 0
		}
		start := p.Start + leading
		if start+len(trimmed) <= prevEnd {
			continue
		}
		out = append(out, Piece{Text: trimmed, Start: start})
		prevEnd = start + len(trimmed)
	}
	return out
}
