package service

import (
	"context"
	"log"
	"time"

	"github.com/asktube/asktube/internal/domain"
	"github.com/asktube/asktube/internal/telemetry"
)

const (
	// embedBatchSize is how many chunk texts go into one embedding request.
	embedBatchSize = 10

	// embedBatchPause spaces out embedding requests to stay under provider
	// rate limits.
	embedBatchPause = 100 * time.Millisecond

	// upsertBatchSize is how many chunks are written to the index per
	// statement.
	upsertBatchSize = 100
)

// TranscriptProvider resolves video URLs and fetches transcripts.
type TranscriptProvider interface {
	ExtractVideoID(url string) (string, error)
	FetchTranscript(ctx context.Context, videoID string) ([]domain.TranscriptSegment, error)
}

// DocumentEmbedder converts chunk texts into vectors using the
// document-optimized embedding mode.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore persists embedded chunks and answers existence checks.
type ChunkStore interface {
	HasVideo(ctx context.Context, videoID string) (bool, error)
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error
	DeleteVideo(ctx context.Context, videoID string) (int64, error)
}

// TranscriptArchive stores raw fetched transcripts for later reprocessing.
type TranscriptArchive interface {
	PutTranscript(ctx context.Context, videoID string, segments []domain.TranscriptSegment) error
}

// IngestResult reports what one ingestion run did.
type IngestResult struct {
	VideoID        string
	Chunks         int
	Skipped        int
	AlreadyIndexed bool
}

// IngestService runs the transcript ingestion pipeline: fetch, chunk, embed,
// upsert. Ingestion is idempotent per video; an already indexed video is a
// no-op.
type IngestService struct {
	provider TranscriptProvider
	embedder DocumentEmbedder
	store    ChunkStore
	archive  TranscriptArchive
	chunker  *Chunker
}

// NewIngestService creates an IngestService. archive may be nil.
func NewIngestService(provider TranscriptProvider, embedder DocumentEmbedder, store ChunkStore, archive TranscriptArchive) *IngestService {
	return &IngestService{
		provider: provider,
		embedder: embedder,
		store:    store,
		archive:  archive,
		chunker:  NewChunker(),
	}
}

// ProcessVideo ingests one video by URL. Embedding failures are tolerated per
// batch: a failed batch is logged and its chunks skipped, and the run only
// fails if nothing could be embedded at all.
func (s *IngestService) ProcessVideo(ctx context.Context, url string) (IngestResult, error) {
	videoID, err := s.provider.ExtractVideoID(url)
	if err != nil {
		return IngestResult{}, err
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestService.ProcessVideo", telemetry.SpanAttributes{
		VideoID:   videoID,
		Operation: "ingest",
	})
	defer span.End()

	exists, err := s.store.HasVideo(ctx, videoID)
	if err != nil {
		return IngestResult{}, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "video existence check failed", err)
	}
	if exists {
		log.Printf("ingest: video %s already indexed, skipping", videoID)
		return IngestResult{VideoID: videoID, AlreadyIndexed: true}, nil
	}

	segments, err := s.provider.FetchTranscript(ctx, videoID)
	if err != nil {
		return IngestResult{}, err
	}
	if len(segments) == 0 {
		return IngestResult{}, domain.ErrTranscriptUnavailable
	}

	if s.archive != nil {
		// Best effort; ingestion proceeds without the raw copy.
		if err := s.archive.PutTranscript(ctx, videoID, segments); err != nil {
			log.Printf("ingest: transcript archive failed for video %s: %v", videoID, err)
		}
	}

	chunks := s.chunker.Chunk(videoID, segments)
	if len(chunks) == 0 {
		return IngestResult{}, domain.ErrTranscriptUnavailable
	}

	embedded, skipped, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return IngestResult{}, err
	}

	if err := s.upsertChunks(ctx, embedded); err != nil {
		return IngestResult{}, err
	}

	log.Printf("ingest: video %s: stored %d chunks, skipped %d", videoID, len(embedded), skipped)
	return IngestResult{VideoID: videoID, Chunks: len(embedded), Skipped: skipped}, nil
}

// ReprocessVideo drops a video's stored chunks and runs ingestion again, so a
// video can be re-indexed after splitter or model changes.
func (s *IngestService) ReprocessVideo(ctx context.Context, url string) (IngestResult, error) {
	videoID, err := s.provider.ExtractVideoID(url)
	if err != nil {
		return IngestResult{}, err
	}

	removed, err := s.store.DeleteVideo(ctx, videoID)
	if err != nil {
		return IngestResult{}, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to delete existing chunks", err)
	}
	if removed > 0 {
		log.Printf("ingest: video %s: removed %d chunks before reprocessing", videoID, removed)
	}

	return s.ProcessVideo(ctx, url)
}

func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, int, error) {
	embedded := make([]domain.Chunk, 0, len(chunks))
	skipped := 0

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(embedBatchPause):
			}
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil || len(vectors) != len(batch) {
			log.Printf("ingest: embedding batch at %d failed, skipping %d chunks: %v", start, len(batch), err)
			skipped += len(batch)
			continue
		}

		for i, c := range batch {
			c.Embedding = vectors[i]
			embedded = append(embedded, c)
		}
	}

	if len(embedded) == 0 {
		return nil, 0, domain.NewDomainError(domain.ErrCodeUpstream, "failed to embed transcript")
	}
	return embedded, skipped, nil
}

func (s *IngestService) upsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(chunks))
		if err := s.store.UpsertChunks(ctx, chunks[start:end]); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to store chunks", err)
		}
	}
	return nil
}
