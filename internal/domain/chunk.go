package domain

import "time"

// Chunk is a timestamped, bounded-length span of transcript text, the unit of
// embedding and retrieval. A chunk is complete only once an embedding has been
// attached and it has been persisted; it is immutable afterward.
type Chunk struct {
	ID         string
	VideoID    string
	Text       string
	StartTime  float64
	ChunkIndex int
	SourceURL  string
	Embedding  []float32
	CreatedAt  time.Time
}

// Match is a chunk returned from a similarity search together with its score.
// Matches are ephemeral and never persisted.
type Match struct {
	Chunk Chunk
	Score float32
}

// Source is a citation reference surfaced alongside an answer or summary.
type Source struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	Score     float32 `json:"score"`
}
