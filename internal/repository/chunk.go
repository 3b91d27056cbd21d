package repository

import (
	"context"
	"time"

	"github.com/asktube/asktube/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence of embedded transcript chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// UpsertChunks inserts chunks, replacing any that already exist under the
// same id.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO transcript_chunks
				(id, video_id, chunk_index, content, start_time, source_url, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				start_time = EXCLUDED.start_time,
				source_url = EXCLUDED.source_url,
				embedding = EXCLUDED.embedding`,
			c.ID,
			c.VideoID,
			c.ChunkIndex,
			c.Text,
			c.StartTime,
			c.SourceURL,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Search returns the topK most similar chunks for one video, best first.
// Scores are cosine similarity in [-1, 1].
func (r *ChunkRepository) Search(ctx context.Context, vector []float32, videoID string, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	vec := pgvector.NewVector(vector)
	rows, err := r.db.Query(ctx,
		`SELECT id, video_id, chunk_index, content, start_time, source_url,
		        1 - (embedding <=> $1) AS score
		 FROM transcript_chunks
		 WHERE video_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, videoID, topK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		var score float64
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.VideoID, &m.Chunk.ChunkIndex, &m.Chunk.Text, &m.Chunk.StartTime, &m.Chunk.SourceURL, &score); err != nil {
			return nil, err
		}
		m.Score = float32(score)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListByVideo returns a video's chunks in playback order, embeddings omitted.
func (r *ChunkRepository) ListByVideo(ctx context.Context, videoID string, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = 10000
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, video_id, chunk_index, content, start_time, source_url, created_at
		 FROM transcript_chunks
		 WHERE video_id = $1
		 ORDER BY start_time ASC, chunk_index ASC
		 LIMIT $2`,
		videoID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.VideoID, &c.ChunkIndex, &c.Text, &c.StartTime, &c.SourceURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// HasVideo reports whether any chunks are stored for the video.
func (r *ChunkRepository) HasVideo(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transcript_chunks WHERE video_id = $1)`,
		videoID,
	).Scan(&exists)
	return exists, err
}

// DeleteVideo removes every chunk for a video so it can be reprocessed.
func (r *ChunkRepository) DeleteVideo(ctx context.Context, videoID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM transcript_chunks WHERE video_id = $1`,
		videoID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
