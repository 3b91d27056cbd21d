package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/asktube/asktube/internal/api"
	"github.com/asktube/asktube/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLParser extracts a video id from a YouTube URL.
type URLParser interface {
	ExtractVideoID(url string) (string, error)
}

// IngestJobStore enqueues and looks up ingestion jobs.
type IngestJobStore interface {
	Create(ctx context.Context, job *domain.IngestJob) error
	GetByID(ctx context.Context, id string) (*domain.IngestJob, error)
}

type VideoHandler struct {
	parser URLParser
	jobs   IngestJobStore
}

func NewVideoHandler(parser URLParser, jobs IngestJobStore) *VideoHandler {
	return &VideoHandler{parser: parser, jobs: jobs}
}

type ProcessVideoRequest struct {
	VideoURL string `json:"url"`
}

type ProcessVideoResponse struct {
	Message string `json:"message"`
	VideoID string `json:"video_id"`
	JobID   string `json:"job_id"`
}

type JobStatusResponse struct {
	JobID   string `json:"job_id"`
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Process accepts a video URL and queues it for ingestion. The transcript
// fetch and embedding run in the background; the response only confirms the
// job was accepted.
func (h *VideoHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.VideoURL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	videoID, err := h.parser.ExtractVideoID(req.VideoURL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	job := domain.NewIngestJob(uuid.NewString(), req.VideoURL, videoID)
	if err := h.jobs.Create(r.Context(), job); err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to queue video")
		return
	}

	api.JSON(w, http.StatusAccepted, ProcessVideoResponse{
		Message: "Video processing started",
		VideoID: videoID,
		JobID:   job.ID,
	})
}

// JobStatus reports the state of a queued ingestion job.
func (h *VideoHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		api.Error(w, http.StatusBadRequest, "job id is required")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), jobID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, JobStatusResponse{
		JobID:   job.ID,
		VideoID: job.VideoID,
		Status:  string(job.Status),
		Error:   job.Error,
	})
}
