package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockOpenAIAPI) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func makeVector(dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = float32(i) * 0.001
	}
	return v
}

func TestClient_EmbedQuery_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: DefaultEmbeddingDimensions}

	ctx := context.Background()
	expected := makeVector(DefaultEmbeddingDimensions)
	mockAPI.On("Embed", ctx, []string{"what is the video about?"}).Return([][]float32{expected}, nil)

	vector, err := client.EmbedQuery(ctx, "what is the video about?")

	assert.NoError(t, err)
	assert.Equal(t, expected, vector)
	mockAPI.AssertExpectations(t)
}

func TestClient_EmbedQuery_AppliesPrefix(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: DefaultEmbeddingDimensions, queryPrefix: "query: "}

	ctx := context.Background()
	mockAPI.On("Embed", ctx, []string{"query: caching"}).
		Return([][]float32{makeVector(DefaultEmbeddingDimensions)}, nil)

	_, err := client.EmbedQuery(ctx, "caching")

	assert.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestClient_EmbedQuery_EmptyText(t *testing.T) {
	client := NewClient("")

	vector, err := client.EmbedQuery(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, vector)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_EmbedQuery_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: DefaultEmbeddingDimensions}

	ctx := context.Background()
	mockAPI.On("Embed", ctx, mock.Anything).Return([][]float32{makeVector(12)}, nil)

	vector, err := client.EmbedQuery(ctx, "some query")

	assert.Nil(t, vector)
	assert.Equal(t, ErrWrongDimensions, err)
}

func TestClient_EmbedDocuments_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: DefaultEmbeddingDimensions}

	ctx := context.Background()
	vectors := [][]float32{makeVector(DefaultEmbeddingDimensions), makeVector(DefaultEmbeddingDimensions)}
	mockAPI.On("Embed", ctx, []string{"first chunk", "second chunk"}).Return(vectors, nil)

	got, err := client.EmbedDocuments(ctx, []string{"first chunk", "second chunk"})

	assert.NoError(t, err)
	assert.Equal(t, vectors, got)
}

func TestClient_EmbedDocuments_EmptyBatch(t *testing.T) {
	client := NewClient("")

	got, err := client.EmbedDocuments(context.Background(), nil)

	assert.Nil(t, got)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_EmbedDocuments_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI, dimensions: DefaultEmbeddingDimensions}

	ctx := context.Background()
	mockAPI.On("Embed", ctx, mock.Anything).Return(nil, errors.New("rate limited"))

	got, err := client.EmbedDocuments(ctx, []string{"chunk"})

	assert.Nil(t, got)
	assert.ErrorContains(t, err, "failed to embed documents")
}

func TestClient_Generate_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI}

	ctx := context.Background()
	mockAPI.On("Complete", ctx, "summarize this").Return("a summary", nil)

	out, err := client.Generate(ctx, "summarize this")

	assert.NoError(t, err)
	assert.Equal(t, "a summary", out)
}

func TestClient_Generate_EmptyPrompt(t *testing.T) {
	client := NewClient("")

	out, err := client.Generate(context.Background(), "")

	assert.Empty(t, out)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_Generate_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := &Client{api: mockAPI}

	ctx := context.Background()
	mockAPI.On("Complete", ctx, mock.Anything).Return("", errors.New("model overloaded"))

	out, err := client.Generate(ctx, "prompt")

	assert.Empty(t, out)
	assert.ErrorContains(t, err, "failed to generate completion")
}
