package service

import (
	"sort"
	"strings"

	"github.com/asktube/asktube/internal/domain"
)

// OffsetEntry maps a byte offset in the concatenated transcript text to the
// start time of the segment beginning there.
type OffsetEntry struct {
	Offset int
	Start  float64
}

// OffsetMap correlates positions in the concatenated transcript with source
// timestamps. Entries are in increasing offset order; the map is built once
// per chunking run and read-only afterward.
type OffsetMap []OffsetEntry

// BuildTranscriptIndex concatenates segment texts in order, separated by a
// single space, and records the offset at which each segment begins.
func BuildTranscriptIndex(segments []domain.TranscriptSegment) (string, OffsetMap) {
	var sb strings.Builder
	index := make(OffsetMap, 0, len(segments))

	for _, seg := range segments {
		index = append(index, OffsetEntry{Offset: sb.Len(), Start: seg.Start})
		sb.WriteString(seg.Text)
		sb.WriteByte(' ')
	}

	return sb.String(), index
}

// Resolve returns the start time of the last segment that begins at or before
// position. Positions before the first entry, and the empty map, resolve to 0.
func (m OffsetMap) Resolve(position int) float64 {
	idx := sort.Search(len(m), func(i int) bool {
		return m[i].Offset > position
	})
	if idx == 0 {
		return 0.0
	}
	return m[idx-1].Start
}
