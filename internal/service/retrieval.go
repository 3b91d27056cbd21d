package service

import (
	"context"
	"log"
	"strings"

	"github.com/asktube/asktube/internal/domain"
)

const defaultTopK = 10

// QueryEmbedder converts a search query into a vector using the
// query-optimized embedding mode.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher finds the nearest stored chunks for a single video.
type ChunkSearcher interface {
	Search(ctx context.Context, vector []float32, videoID string, topK int) ([]domain.Match, error)
}

// RetrievalService handles semantic search and context construction for
// question answering.
type RetrievalService struct {
	embedder QueryEmbedder
	searcher ChunkSearcher
	topK     int
}

// NewRetrievalService creates a RetrievalService with the default result count.
func NewRetrievalService(embedder QueryEmbedder, searcher ChunkSearcher) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		searcher: searcher,
		topK:     defaultTopK,
	}
}

// GetContext embeds the query, searches the index scoped to one video, and
// assembles the retrieved texts into a single context string plus a parallel
// citation list. An empty query or video id, and a search with no matches,
// all yield an empty context with no error; the caller distinguishes "nothing
// found" from failure by the error value alone.
func (s *RetrievalService) GetContext(ctx context.Context, query, videoID string) (string, []domain.Source, error) {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(videoID) == "" {
		log.Printf("retrieval: missing query or video id, skipping search")
		return "", nil, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "failed to embed query", err)
	}

	matches, err := s.searcher.Search(ctx, vector, videoID, s.topK)
	if err != nil {
		return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "vector search failed", err)
	}

	if len(matches) == 0 {
		log.Printf("retrieval: no matches for video %s", videoID)
		return "", nil, nil
	}

	// Matches arrive in descending similarity order; context and sources keep
	// that order.
	parts := make([]string, 0, len(matches))
	sources := make([]domain.Source, 0, len(matches))
	for _, m := range matches {
		if m.Chunk.Text == "" {
			continue
		}
		parts = append(parts, m.Chunk.Text)
		sources = append(sources, domain.Source{
			Text:      m.Chunk.Text,
			StartTime: m.Chunk.StartTime,
			Score:     m.Score,
		})
	}

	contextText := strings.Join(parts, "\n\n")
	log.Printf("retrieval: video %s: %d matches, %d context chars", videoID, len(matches), len(contextText))
	return contextText, sources, nil
}
