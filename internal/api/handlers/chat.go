package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/asktube/asktube/internal/api"
	"github.com/asktube/asktube/internal/domain"
)

// Answerer answers questions about an indexed video.
type Answerer interface {
	Ask(ctx context.Context, query, videoID string, history []domain.ChatMessage) (string, []domain.Source, error)
}

type ChatHandler struct {
	svc Answerer
}

func NewChatHandler(svc Answerer) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Query   string               `json:"query"`
	VideoID string               `json:"video_id"`
	History []domain.ChatMessage `json:"history,omitempty"`
}

type ChatResponse struct {
	Response string          `json:"response"`
	Sources  []domain.Source `json:"sources"`
}

// Chat answers one question about a video, citing transcript excerpts.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, sources, err := h.svc.Ask(r.Context(), req.Query, req.VideoID, req.History)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if sources == nil {
		sources = []domain.Source{}
	}
	api.JSON(w, http.StatusOK, ChatResponse{
		Response: answer,
		Sources:  sources,
	})
}
