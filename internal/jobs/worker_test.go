package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asktube/asktube/internal/domain"
	"github.com/asktube/asktube/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIngestJobRepository is a mock implementation of IngestJobRepository
type MockIngestJobRepository struct {
	mock.Mock
}

func (m *MockIngestJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IngestJob), args.Error(1)
}

func (m *MockIngestJobRepository) UpdateStatus(ctx context.Context, jobID string, status domain.IngestJobStatus, errMsg string) error {
	args := m.Called(ctx, jobID, status, errMsg)
	return args.Error(0)
}

func (m *MockIngestJobRepository) IncrementRetries(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockVideoIngester is a mock implementation of VideoIngester
type MockVideoIngester struct {
	mock.Mock
}

func (m *MockVideoIngester) ProcessVideo(ctx context.Context, url string) (service.IngestResult, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(service.IngestResult), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestIngestWorker_ProcessJobs_NoPendingJobs tests when there are no pending jobs
func TestIngestWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockVideoIngester)

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{}, nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngester.AssertNotCalled(t, "ProcessVideo", mock.Anything, mock.Anything)
}

// TestIngestWorker_ProcessJobs_Success tests successful job processing
func TestIngestWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockVideoIngester)

	job := &domain.IngestJob{
		ID:       "job-1",
		VideoURL: "https://youtu.be/dQw4w9WgXcQ",
		VideoID:  "dQw4w9WgXcQ",
		Status:   domain.IngestJobStatusProcessing,
	}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessVideo", mock.Anything, job.VideoURL).
		Return(service.IngestResult{VideoID: "dQw4w9WgXcQ", Chunks: 12}, nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngester.AssertExpectations(t)
}

// TestIngestWorker_ProcessJobs_FailureWithRetry tests job failure with retry
func TestIngestWorker_ProcessJobs_FailureWithRetry(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockVideoIngester)

	job := &domain.IngestJob{
		ID:       "job-1",
		VideoURL: "https://youtu.be/dQw4w9WgXcQ",
		Retries:  0,
	}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessVideo", mock.Anything, job.VideoURL).
		Return(service.IngestResult{}, errors.New("provider timeout"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusFailed, mock.Anything)
}

// TestIngestWorker_ProcessJobs_MaxRetriesExceeded tests job failure after max retries
func TestIngestWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockVideoIngester)

	job := &domain.IngestJob{
		ID:       "job-1",
		VideoURL: "https://youtu.be/dQw4w9WgXcQ",
		Retries:  2, // Already retried twice
	}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessVideo", mock.Anything, job.VideoURL).
		Return(service.IngestResult{}, errors.New("provider timeout"))
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "IncrementRetries", mock.Anything, mock.Anything)
}

// TestIngestWorker_ProcessJobs_PermanentFailureNotRetried tests that
// validation and missing-transcript failures skip the retry loop
func TestIngestWorker_ProcessJobs_PermanentFailureNotRetried(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockVideoIngester)

	job := &domain.IngestJob{
		ID:       "job-1",
		VideoURL: "https://youtu.be/dQw4w9WgXcQ",
		Retries:  0,
	}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessVideo", mock.Anything, job.VideoURL).
		Return(service.IngestResult{}, domain.ErrTranscriptUnavailable)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "IncrementRetries", mock.Anything, mock.Anything)
}

// TestIngestWorker_ProcessJobs_RepositoryError tests repository error handling
func TestIngestWorker_ProcessJobs_RepositoryError(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockVideoIngester)

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return(nil, errors.New("database error"))

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to claim pending jobs")
	mockRepo.AssertExpectations(t)
}
