package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/asktube/asktube/internal/domain"
	"github.com/asktube/asktube/internal/telemetry"
)

const noContextResponse = "I couldn't find relevant information in the video to answer your question. " +
	"Could you rephrase it, or ask about a different part of the video?"

const answerPrompt = `You are a helpful assistant that answers questions about a YouTube video using only the transcript excerpts below.

Guidelines:
- Answer using only the provided excerpts
- If the excerpts do not contain the answer, say so instead of guessing
- Be concise and direct
- Reference what is said in the video naturally, without quoting chunk numbers

--- TRANSCRIPT EXCERPTS ---
%s
--- END EXCERPTS ---
%s
Question: %s

Answer:`

// Classifier decides which answering strategy a question needs.
type Classifier interface {
	Classify(ctx context.Context, query string) domain.QueryIntent
}

// Summarizer produces a whole-video summary with sampled sources.
type Summarizer interface {
	Summarize(ctx context.Context, videoID string) (string, []domain.Source, error)
}

// ContextRetriever finds transcript excerpts relevant to a question.
type ContextRetriever interface {
	GetContext(ctx context.Context, query, videoID string) (string, []domain.Source, error)
}

// ChatService answers questions about indexed videos. Each question is routed
// by intent: summary requests go through the whole-video summarizer, anything
// else through retrieval-augmented generation.
type ChatService struct {
	classifier Classifier
	summarizer Summarizer
	retriever  ContextRetriever
	llm        Generator
}

func NewChatService(classifier Classifier, summarizer Summarizer, retriever ContextRetriever, llm Generator) *ChatService {
	return &ChatService{
		classifier: classifier,
		summarizer: summarizer,
		retriever:  retriever,
		llm:        llm,
	}
}

// Ask answers a question about one video. History only influences the
// retrieval path; a summary request always covers the whole video regardless
// of what came before.
func (s *ChatService) Ask(ctx context.Context, query, videoID string, history []domain.ChatMessage) (string, []domain.Source, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil, domain.ErrEmptyQuery
	}
	if strings.TrimSpace(videoID) == "" {
		return "", nil, domain.ErrMissingVideoID
	}

	intent := s.classifier.Classify(ctx, query)
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Ask", telemetry.SpanAttributes{
		VideoID:   videoID,
		Intent:    string(intent),
		Operation: "ask",
	})
	defer span.End()
	log.Printf("chat: video %s: intent %s", videoID, intent)

	if intent == domain.IntentFullVideoSummary {
		return s.answerSummary(ctx, videoID)
	}
	return s.answerSpecific(ctx, query, videoID, history)
}

func (s *ChatService) answerSummary(ctx context.Context, videoID string) (string, []domain.Source, error) {
	summary, sources, err := s.summarizer.Summarize(ctx, videoID)
	if err != nil {
		return "", nil, err
	}
	if summary == "" {
		return noContextResponse, nil, nil
	}
	return summary, sources, nil
}

func (s *ChatService) answerSpecific(ctx context.Context, query, videoID string, history []domain.ChatMessage) (string, []domain.Source, error) {
	contextText, sources, err := s.retriever.GetContext(ctx, query, videoID)
	if err != nil {
		return "", nil, err
	}
	if contextText == "" {
		return noContextResponse, nil, nil
	}

	prompt := fmt.Sprintf(answerPrompt, contextText, formatHistory(history), query)
	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "answer generation failed", err)
	}
	return answer, sources, nil
}

func formatHistory(history []domain.ChatMessage) string {
	if len(history) == 0 {
		return "\n"
	}

	var b strings.Builder
	b.WriteString("\n--- CONVERSATION SO FAR ---\n")
	for _, m := range history {
		role := "User"
		if m.Role == domain.ChatRoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	b.WriteString("--- END CONVERSATION ---\n\n")
	return b.String()
}
