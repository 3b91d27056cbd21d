package domain

import "time"

// IngestJobStatus represents the status of an ingestion job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob represents an async video ingestion job
type IngestJob struct {
	ID          string
	VideoURL    string
	VideoID     string
	Status      IngestJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewIngestJob creates a pending job for a video URL
func NewIngestJob(id, videoURL, videoID string) *IngestJob {
	return &IngestJob{
		ID:        id,
		VideoURL:  videoURL,
		VideoID:   videoID,
		Status:    IngestJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}
