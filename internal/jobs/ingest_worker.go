package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/asktube/asktube/internal/domain"
	"github.com/asktube/asktube/internal/service"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// claimBatchSize is how many pending jobs one poll picks up
	claimBatchSize = 10
)

// IngestJobRepository defines the interface for ingest job persistence
type IngestJobRepository interface {
	// ClaimPending retrieves and claims pending ingest jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error)

	// UpdateStatus updates the status of an ingest job
	UpdateStatus(ctx context.Context, jobID string, status domain.IngestJobStatus, errMsg string) error

	// IncrementRetries increments the retry count and requeues the job
	IncrementRetries(ctx context.Context, jobID string) error
}

// VideoIngester runs the ingestion pipeline for one video URL
type VideoIngester interface {
	ProcessVideo(ctx context.Context, url string) (service.IngestResult, error)
}

// IngestWorker processes queued video ingestion jobs
type IngestWorker struct {
	repo     IngestJobRepository
	ingester VideoIngester
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestJobRepository, ingester VideoIngester) *IngestWorker {
	return &IngestWorker{
		repo:     repo,
		ingester: ingester,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("jobs: claimed %d pending ingest jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("jobs: failed to process job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	log.Printf("jobs: processing job %s for video %s", job.ID, job.VideoID)

	result, err := w.ingester.ProcessVideo(ctx, job.VideoURL)
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	if result.AlreadyIndexed {
		log.Printf("jobs: job %s completed, video %s was already indexed", job.ID, result.VideoID)
	} else {
		log.Printf("jobs: job %s completed, video %s: %d chunks stored, %d skipped", job.ID, result.VideoID, result.Chunks, result.Skipped)
	}
	return nil
}

// handleJobFailure handles a failed job with retry logic. Validation and
// missing-transcript failures are permanent and never retried.
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestJob, jobErr error) error {
	log.Printf("jobs: job %s failed: %v", job.ID, jobErr)

	if isPermanent(jobErr) {
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, jobErr.Error()); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("jobs: job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("jobs: job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}
	return nil
}

func isPermanent(err error) bool {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == domain.ErrCodeValidation || domainErr.Code == domain.ErrCodeNotFound
}
