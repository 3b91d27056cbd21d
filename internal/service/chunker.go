package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/asktube/asktube/internal/domain"
	"github.com/google/uuid"
)

// Chunker turns a raw timestamped transcript into an ordered sequence of
// identified chunks ready for embedding. It is stateless and safe for
// concurrent use.
type Chunker struct {
	cfg SplitConfig
}

// NewChunker creates a Chunker with the default split configuration.
func NewChunker() *Chunker {
	return &Chunker{cfg: DefaultSplitConfig()}
}

// NewChunkerWithConfig creates a Chunker with an explicit split configuration.
func NewChunkerWithConfig(cfg SplitConfig) *Chunker {
	return &Chunker{cfg: cfg}
}

// Chunk splits the transcript and anchors every chunk to the timestamp of the
// segment containing its first character. Because the splitter reports each
// piece's source offset directly, timestamps are exact and monotonically
// non-decreasing across chunk indexes. Empty input yields an empty result.
func (c *Chunker) Chunk(videoID string, segments []domain.TranscriptSegment) []domain.Chunk {
	if len(segments) == 0 {
		log.Printf("chunker: no transcript segments for video %s", videoID)
		return nil
	}

	fullText, index := BuildTranscriptIndex(segments)
	pieces := SplitText(fullText, c.cfg)
	if len(pieces) == 0 {
		log.Printf("chunker: splitter produced no pieces for video %s", videoID)
		return nil
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		start := index.Resolve(piece.Start)
		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(videoID, i),
			VideoID:    videoID,
			Text:       piece.Text,
			StartTime:  start,
			ChunkIndex: i,
			SourceURL:  watchURL(videoID, start),
			CreatedAt:  now,
		})
	}

	log.Printf("chunker: video %s: %d segments -> %d chunks", videoID, len(segments), len(chunks))
	return chunks
}

// chunkID builds an id unique within a video: the video id, the chunk's
// position, and a short random suffix.
func chunkID(videoID string, index int) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%s", videoID, index, suffix)
}

func watchURL(videoID string, start float64) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", videoID, int(math.Floor(start)))
}
