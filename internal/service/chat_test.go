package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/asktube/asktube/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, query string) domain.QueryIntent {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.QueryIntent)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, videoID string) (string, []domain.Source, error) {
	args := m.Called(ctx, videoID)
	var sources []domain.Source
	if args.Get(1) != nil {
		sources = args.Get(1).([]domain.Source)
	}
	return args.String(0), sources, args.Error(2)
}

type MockContextRetriever struct {
	mock.Mock
}

func (m *MockContextRetriever) GetContext(ctx context.Context, query, videoID string) (string, []domain.Source, error) {
	args := m.Called(ctx, query, videoID)
	var sources []domain.Source
	if args.Get(1) != nil {
		sources = args.Get(1).([]domain.Source)
	}
	return args.String(0), sources, args.Error(2)
}

func newChatFixture() (*MockClassifier, *MockSummarizer, *MockContextRetriever, *MockGenerator, *ChatService) {
	classifier := new(MockClassifier)
	summarizer := new(MockSummarizer)
	retriever := new(MockContextRetriever)
	llm := new(MockGenerator)
	svc := NewChatService(classifier, summarizer, retriever, llm)
	return classifier, summarizer, retriever, llm, svc
}

func TestChat_EmptyQueryRejected(t *testing.T) {
	_, _, _, _, svc := newChatFixture()

	_, _, err := svc.Ask(context.Background(), "  ", "vid123", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestChat_MissingVideoIDRejected(t *testing.T) {
	_, _, _, _, svc := newChatFixture()

	_, _, err := svc.Ask(context.Background(), "what happened?", "", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingVideoID)
}

func TestChat_SummaryIntentRoutesToSummarizer(t *testing.T) {
	classifier, summarizer, retriever, llm, svc := newChatFixture()

	sources := []domain.Source{{Text: "sample", StartTime: 0.0, Score: 1.0}}
	classifier.On("Classify", mock.Anything, "summarize the video").Return(domain.IntentFullVideoSummary)
	summarizer.On("Summarize", mock.Anything, "vid123").Return("the full summary", sources, nil)

	answer, got, err := svc.Ask(context.Background(), "summarize the video", "vid123", nil)

	require.NoError(t, err)
	assert.Equal(t, "the full summary", answer)
	assert.Equal(t, sources, got)
	retriever.AssertNotCalled(t, "GetContext", mock.Anything, mock.Anything, mock.Anything)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestChat_SpecificIntentUsesRetrievalAndGeneration(t *testing.T) {
	classifier, summarizer, retriever, llm, svc := newChatFixture()

	sources := []domain.Source{{Text: "the speaker explains caching", StartTime: 42.0, Score: 0.9}}
	classifier.On("Classify", mock.Anything, "what about caching?").Return(domain.IntentSpecificQuery)
	retriever.On("GetContext", mock.Anything, "what about caching?", "vid123").
		Return("the speaker explains caching", sources, nil)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "the speaker explains caching") &&
			strings.Contains(p, "what about caching?")
	})).Return("Caching is covered at length.", nil)

	answer, got, err := svc.Ask(context.Background(), "what about caching?", "vid123", nil)

	require.NoError(t, err)
	assert.Equal(t, "Caching is covered at length.", answer)
	assert.Equal(t, sources, got)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestChat_HistoryIncludedInPrompt(t *testing.T) {
	classifier, _, retriever, llm, svc := newChatFixture()

	history := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "what is the video about?"},
		{Role: domain.ChatRoleAssistant, Content: "It covers distributed systems."},
	}
	classifier.On("Classify", mock.Anything, "tell me more").Return(domain.IntentSpecificQuery)
	retriever.On("GetContext", mock.Anything, "tell me more", "vid123").
		Return("relevant excerpt", []domain.Source{}, nil)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "User: what is the video about?") &&
			strings.Contains(p, "Assistant: It covers distributed systems.")
	})).Return("more detail", nil)

	answer, _, err := svc.Ask(context.Background(), "tell me more", "vid123", history)

	require.NoError(t, err)
	assert.Equal(t, "more detail", answer)
}

func TestChat_NoContextYieldsFallbackResponse(t *testing.T) {
	classifier, _, retriever, llm, svc := newChatFixture()

	classifier.On("Classify", mock.Anything, "obscure question").Return(domain.IntentSpecificQuery)
	retriever.On("GetContext", mock.Anything, "obscure question", "vid123").Return("", nil, nil)

	answer, sources, err := svc.Ask(context.Background(), "obscure question", "vid123", nil)

	require.NoError(t, err)
	assert.Equal(t, noContextResponse, answer)
	assert.Nil(t, sources)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestChat_EmptySummaryYieldsFallbackResponse(t *testing.T) {
	classifier, summarizer, _, _, svc := newChatFixture()

	classifier.On("Classify", mock.Anything, "summarize").Return(domain.IntentFullVideoSummary)
	summarizer.On("Summarize", mock.Anything, "vid123").Return("", nil, nil)

	answer, sources, err := svc.Ask(context.Background(), "summarize", "vid123", nil)

	require.NoError(t, err)
	assert.Equal(t, noContextResponse, answer)
	assert.Nil(t, sources)
}

func TestChat_RetrievalErrorPropagates(t *testing.T) {
	classifier, _, retriever, _, svc := newChatFixture()

	classifier.On("Classify", mock.Anything, "q").Return(domain.IntentSpecificQuery)
	retriever.On("GetContext", mock.Anything, "q", "vid123").
		Return("", nil, domain.NewDomainError(domain.ErrCodeUpstream, "vector search failed"))

	_, _, err := svc.Ask(context.Background(), "q", "vid123", nil)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
}

func TestChat_GenerationErrorWrapped(t *testing.T) {
	classifier, _, retriever, llm, svc := newChatFixture()

	classifier.On("Classify", mock.Anything, "q").Return(domain.IntentSpecificQuery)
	retriever.On("GetContext", mock.Anything, "q", "vid123").Return("excerpt", []domain.Source{}, nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("model unavailable"))

	_, _, err := svc.Ask(context.Background(), "q", "vid123", nil)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
}
