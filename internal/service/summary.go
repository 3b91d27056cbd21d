package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/asktube/asktube/internal/domain"
	"github.com/asktube/asktube/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const (
	// maxIndexFetch bounds how many chunks a single video summary will pull
	// from the index.
	maxIndexFetch = 10000

	// maxContextChars is the character budget for one summarization call.
	maxContextChars = 60000

	// maxChunksPerBatch caps how many chunks go into one summarization call.
	maxChunksPerBatch = 100

	// maxParallelBatches bounds concurrent batch summarization calls. Batch
	// summaries are independent; the merge step waits for all of them.
	maxParallelBatches = 4

	// sampledSourceChars is how much of a sampled chunk's text is surfaced as
	// a citation.
	sampledSourceChars = 200
)

const summaryPrompt = `You are a professional video content summarizer.

Based on the following video transcript segments, provide a comprehensive summary of the video.

Guidelines:
- Capture all main topics and key points discussed
- Organize information logically
- Use bullet points for clarity where appropriate
- Include important details, examples, and conclusions
- Be thorough but concise

--- VIDEO TRANSCRIPT ---
%s
--- END TRANSCRIPT ---

Provide a comprehensive summary:`

const combinePrompt = `You are a professional video content summarizer.

The following are summaries of different parts of a long video. Combine them into one cohesive, comprehensive summary.

Guidelines:
- Merge related topics that appear in multiple parts
- Eliminate redundancy while preserving all unique information
- Organize the final summary logically
- Maintain a natural flow

--- PARTIAL SUMMARIES ---
%s
--- END SUMMARIES ---

Provide the unified comprehensive summary:`

// Generator produces text from a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChunkLister fetches every stored chunk for a video in chronological order.
type ChunkLister interface {
	ListByVideo(ctx context.Context, videoID string, limit int) ([]domain.Chunk, error)
}

// SummaryCache stores finished whole-video summaries. Implementations may be
// no-ops; a miss is (value "", ok false).
type SummaryCache interface {
	GetSummary(ctx context.Context, videoID string) (string, bool, error)
	SetSummary(ctx context.Context, videoID, summary string) error
}

// SummaryService produces whole-video summaries. Videos whose transcripts
// exceed the single-call budget are summarized hierarchically: chronological
// batches are summarized independently, then merged by a second-stage call
// that reconciles the overlapping partial summaries.
type SummaryService struct {
	llm    Generator
	chunks ChunkLister
	cache  SummaryCache
}

// NewSummaryService creates a SummaryService. cache may be nil.
func NewSummaryService(llm Generator, chunks ChunkLister, cache SummaryCache) *SummaryService {
	return &SummaryService{llm: llm, chunks: chunks, cache: cache}
}

// Summarize generates a comprehensive summary of the whole video. The sources
// returned are not relevance-ranked (there is no query); they are five
// representative samples spread evenly across the video's chronology.
func (s *SummaryService) Summarize(ctx context.Context, videoID string) (string, []domain.Source, error) {
	ctx, span := telemetry.StartSpan(ctx, "SummaryService.Summarize", telemetry.SpanAttributes{
		VideoID:   videoID,
		Operation: "summarize",
	})
	defer span.End()

	all, err := s.chunks.ListByVideo(ctx, videoID, maxIndexFetch)
	if err != nil {
		return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "failed to fetch chunks", err)
	}
	if len(all) == 0 {
		log.Printf("summary: no chunks found for video %s", videoID)
		return "", nil, nil
	}

	sources := sampleSources(all)

	if s.cache != nil {
		if cached, ok, err := s.cache.GetSummary(ctx, videoID); err != nil {
			log.Printf("summary: cache read failed for video %s: %v", videoID, err)
		} else if ok {
			log.Printf("summary: cache hit for video %s", videoID)
			return cached, sources, nil
		}
	}

	totalChars := 0
	for _, c := range all {
		totalChars += len(c.Text)
	}
	log.Printf("summary: video %s: %d chunks, %d chars", videoID, len(all), totalChars)

	var summary string
	if totalChars <= maxContextChars && len(all) <= maxChunksPerBatch {
		summary, err = s.summarizeBatch(ctx, all)
	} else {
		summary, err = s.summarizeHierarchical(ctx, videoID, all)
	}
	if err != nil {
		return "", nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, videoID, summary); err != nil {
			log.Printf("summary: cache write failed for video %s: %v", videoID, err)
		}
	}

	return summary, sources, nil
}

func (s *SummaryService) summarizeHierarchical(ctx context.Context, videoID string, all []domain.Chunk) (string, error) {
	batches := batchChunks(all)
	log.Printf("summary: video %s: hierarchical summarization over %d batches", videoID, len(batches))

	partials := make([]string, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBatches)
	for i, batch := range batches {
		g.Go(func() error {
			partial, err := s.summarizeBatch(gctx, batch)
			if err != nil {
				return err
			}
			partials[i] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	if len(partials) == 1 {
		return partials[0], nil
	}
	return s.combine(ctx, partials)
}

func (s *SummaryService) summarizeBatch(ctx context.Context, batch []domain.Chunk) (string, error) {
	parts := make([]string, 0, len(batch))
	for _, c := range batch {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	prompt := fmt.Sprintf(summaryPrompt, strings.Join(parts, "\n\n"))

	out, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "batch summarization failed", err)
	}
	return out, nil
}

// combine reconciles independently generated, lossy partial summaries into one
// narrative. It runs whenever more than one batch was summarized.
func (s *SummaryService) combine(ctx context.Context, partials []string) (string, error) {
	labeled := make([]string, len(partials))
	for i, p := range partials {
		labeled[i] = fmt.Sprintf("Part %d:\n%s", i+1, p)
	}
	prompt := fmt.Sprintf(combinePrompt, strings.Join(labeled, "\n\n---\n\n"))

	out, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "summary merge failed", err)
	}
	return out, nil
}

// batchChunks partitions chunks chronologically: a batch accumulates until
// adding the next chunk would exceed the character budget, or the batch hits
// the count cap, whichever comes first.
func batchChunks(all []domain.Chunk) [][]domain.Chunk {
	var batches [][]domain.Chunk
	var current []domain.Chunk
	currentChars := 0

	for _, c := range all {
		if currentChars+len(c.Text) > maxContextChars && len(current) > 0 {
			batches = append(batches, current)
			current = nil
			currentChars = 0
		}

		current = append(current, c)
		currentChars += len(c.Text)

		if len(current) >= maxChunksPerBatch {
			batches = append(batches, current)
			current = nil
			currentChars = 0
		}
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// sampleSources picks five chunks spread evenly across the video: the first,
// the quartile points, and the last. Indexes are clamped and deduplicated so
// short videos yield fewer sources without repeats.
func sampleSources(all []domain.Chunk) []domain.Source {
	n := len(all)
	candidates := []int{0, n / 4, n / 2, 3 * n / 4, n - 1}

	seen := make(map[int]bool, len(candidates))
	sources := make([]domain.Source, 0, len(candidates))
	for _, idx := range candidates {
		if idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		sources = append(sources, domain.Source{
			Text:      truncateText(all[idx].Text, sampledSourceChars),
			StartTime: all[idx].StartTime,
			Score:     1.0, // placeholder, not a similarity measure
		})
	}
	return sources
}

func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut] + "..."
}
