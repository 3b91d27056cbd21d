package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortTextSinglePiece(t *testing.T) {
	cfg := DefaultSplitConfig()

	pieces := SplitText("hello world", cfg)

	require.Len(t, pieces, 1)
	assert.Equal(t, "hello world", pieces[0].Text)
	assert.Equal(t, 0, pieces[0].Start)
}

func TestSplitText_EmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("", DefaultSplitConfig()))
}

func TestSplitText_RespectsMaxSize(t *testing.T) {
	text := strings.Repeat("one two three four five six seven eight nine ten ", 100)
	cfg := SplitConfig{ChunkSize: 100, Overlap: 20, Separators: []string{"\n\n", "\n", " ", ""}, Trim: true}

	pieces := SplitText(text, cfg)

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.LessOrEqual(t, len(p.Text), cfg.ChunkSize)
		assert.NotEmpty(t, p.Text)
	}
}

func TestSplitText_OffsetsPointIntoSource(t *testing.T) {
	text := "alpha beta gamma\n\ndelta epsilon zeta\n\neta theta iota kappa"
	cfg := SplitConfig{ChunkSize: 20, Overlap: 5, Separators: []string{"\n\n", "\n", " ", ""}, Trim: false}

	pieces := SplitText(text, cfg)

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		require.LessOrEqual(t, p.Start+len(p.Text), len(text))
		assert.Equal(t, text[p.Start:p.Start+len(p.Text)], p.Text)
	}
}

func TestSplitText_TrimmedOffsetsStillAnchor(t *testing.T) {
	text := "alpha beta gamma\n\ndelta epsilon zeta\n\neta theta iota kappa"
	cfg := SplitConfig{ChunkSize: 20, Overlap: 5, Separators: []string{"\n\n", "\n", " ", ""}, Trim: true}

	pieces := SplitText(text, cfg)

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.Equal(t, text[p.Start:p.Start+len(p.Text)], p.Text)
		assert.Equal(t, strings.TrimSpace(p.Text), p.Text)
	}
}

func TestSplitText_LeftToRightOrder(t *testing.T) {
	text := strings.Repeat("sentence number with several words in it. ", 80)
	cfg := SplitConfig{ChunkSize: 120, Overlap: 30, Separators: []string{" ", ""}, Trim: true}

	pieces := SplitText(text, cfg)

	require.Greater(t, len(pieces), 1)
	for i := 1; i < len(pieces); i++ {
		assert.Greater(t, pieces[i].Start, pieces[i-1].Start)
	}
}

func TestSplitText_NoContentLost(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 60)
	cfg := SplitConfig{ChunkSize: 150, Overlap: 40, Separators: []string{" ", ""}, Trim: false}

	pieces := SplitText(text, cfg)
	require.NotEmpty(t, pieces)

	// Every byte of the source is covered by at least one piece.
	assert.Equal(t, 0, pieces[0].Start)
	end := pieces[0].Start + len(pieces[0].Text)
	for _, p := range pieces[1:] {
		require.LessOrEqual(t, p.Start, end, "gap before piece at %d", p.Start)
		if p.Start+len(p.Text) > end {
			end = p.Start + len(p.Text)
		}
	}
	assert.Equal(t, len(text), end)
}

func TestSplitText_AdjacentPiecesOverlap(t *testing.T) {
	text := strings.Repeat("word ", 500)
	cfg := SplitConfig{ChunkSize: 200, Overlap: 50, Separators: []string{" ", ""}, Trim: false}

	pieces := SplitText(text, cfg)
	require.Greater(t, len(pieces), 1)

	for i := 1; i < len(pieces); i++ {
		prevEnd := pieces[i-1].Start + len(pieces[i-1].Text)
		shared := prevEnd - pieces[i].Start
		assert.Greater(t, shared, 0, "pieces %d and %d do not overlap", i-1, i)
		assert.LessOrEqual(t, shared, cfg.Overlap)
	}
}

func TestSplitText_ConsecutiveSeparatorsNoDuplicatePieces(t *testing.T) {
	// Blank-line runs atomize into whitespace-only spans; the overlap backup
	// can then open a window that trims down to exactly the previous piece.
	text := strings.Repeat("zeta eta\n\n\n\n", 30)
	cfg := SplitConfig{ChunkSize: 20, Overlap: 12, Separators: []string{"\n\n", "\n", " ", ""}, Trim: true}

	pieces := SplitText(text, cfg)
	require.Greater(t, len(pieces), 1)

	for i, p := range pieces {
		require.NotEmpty(t, p.Text)
		assert.Equal(t, text[p.Start:p.Start+len(p.Text)], p.Text)
		if i == 0 {
			continue
		}
		prev := pieces[i-1]
		assert.False(t, p.Text == prev.Text && p.Start == prev.Start,
			"pieces %d and %d are identical (%q at %d)", i-1, i, p.Text, p.Start)
		assert.Greater(t, p.Start+len(p.Text), prev.Start+len(prev.Text),
			"piece %d does not reach past piece %d", i, i-1)
	}
}

func TestSplitText_FallsBackToRawSlicing(t *testing.T) {
	// No separators present in the text at all.
	text := strings.Repeat("x", 2500)
	cfg := SplitConfig{ChunkSize: 1000, Overlap: 0, Separators: []string{"\n\n", "\n", " ", ""}, Trim: true}

	pieces := SplitText(text, cfg)

	require.Len(t, pieces, 3)
	assert.Len(t, pieces[0].Text, 1000)
	assert.Len(t, pieces[1].Text, 1000)
	assert.Len(t, pieces[2].Text, 500)
}

func TestSplitText_OversizedPieceWhenSeparatorsExhausted(t *testing.T) {
	// Without the empty-string fallback nothing can shrink the run further.
	text := strings.Repeat("y", 300)
	cfg := SplitConfig{ChunkSize: 100, Overlap: 0, Separators: []string{" "}, Trim: true}

	pieces := SplitText(text, cfg)

	require.Len(t, pieces, 1)
	assert.Equal(t, text, pieces[0].Text)
}

func TestSplitText_RawSlicingKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("é", 100) // 2 bytes each
	cfg := SplitConfig{ChunkSize: 15, Overlap: 0, Separators: []string{""}, Trim: false}

	pieces := SplitText(text, cfg)

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.True(t, strings.HasPrefix(strings.Repeat("é", 100), p.Text[:2]))
		assert.Equal(t, 0, len(p.Text)%2)
	}
}

func TestSplitText_PrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("a", 400)
	text := para + "\n\n" + para + "\n\n" + para
	cfg := SplitConfig{ChunkSize: 450, Overlap: 0, Separators: []string{"\n\n", "\n", " ", ""}, Trim: true}

	pieces := SplitText(text, cfg)

	require.Len(t, pieces, 3)
	for _, p := range pieces {
		assert.Equal(t, para, p.Text)
	}
}
