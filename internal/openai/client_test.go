package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/brandloom-ai/brandloom/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	embedding []float32
	embedErr  error

	chatResponses []chatOutcome
	chatCalls     int
}

type chatOutcome struct {
	content string
	err     error
}

func (f *fakeAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedding, nil
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	outcome := f.chatResponses[f.chatCalls]
	f.chatCalls++
	if outcome.err != nil {
		return openai.ChatCompletionResponse{}, outcome.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: outcome.content}},
		},
	}, nil
}

func newTestClient(api CompletionAPI) (*Client, *[]time.Duration) {
	slept := &[]time.Duration{}
	c := &Client{
		api:        api,
		dimensions: 3,
		chatModel:  DefaultChatModel,
		maxRetries: 3,
		timeout:    time.Second,
		sleep:      func(d time.Duration) { *slept = append(*slept, d) },
		jitter:     func() float64 { return 0 },
	}
	return c, slept
}

func rateLimitErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"}
}

func TestGenerateEmbedding_Success(t *testing.T) {
	client, _ := newTestClient(&fakeAPI{embedding: []float32{0.1, 0.2, 0.3}})

	emb, err := client.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, emb)
}

func TestGenerateEmbedding_EmptyText(t *testing.T) {
	client, _ := newTestClient(&fakeAPI{})

	_, err := client.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestGenerateEmbedding_WrongDimensions(t *testing.T) {
	client, _ := newTestClient(&fakeAPI{embedding: []float32{0.1}})

	_, err := client.GenerateEmbedding(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestGenerate_Success(t *testing.T) {
	api := &fakeAPI{chatResponses: []chatOutcome{{content: "rewritten"}}}
	client, slept := newTestClient(api)

	out, err := client.Generate(context.Background(), "system", "user", "")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", out)
	assert.Empty(t, *slept)
}

func TestGenerate_RetriesRateLimitThenSucceeds(t *testing.T) {
	api := &fakeAPI{chatResponses: []chatOutcome{
		{err: rateLimitErr()},
		{err: rateLimitErr()},
		{content: "finally"},
	}}
	client, slept := newTestClient(api)

	out, err := client.Generate(context.Background(), "system", "user", "")
	require.NoError(t, err)
	assert.Equal(t, "finally", out)
	assert.Equal(t, 3, api.chatCalls)

	// Backoff doubles: 5s then 10s (jitter forced to zero).
	require.Len(t, *slept, 2)
	assert.Equal(t, 5*time.Second, (*slept)[0])
	assert.Equal(t, 10*time.Second, (*slept)[1])
}

func TestGenerate_ExhaustsRetryBudget(t *testing.T) {
	// Three straight rate limits with maxRetries=3: the third attempt has
	// no retry left, so the call fails even though a fourth would succeed.
	api := &fakeAPI{chatResponses: []chatOutcome{
		{err: rateLimitErr()},
		{err: rateLimitErr()},
		{err: rateLimitErr()},
		{content: "never reached"},
	}}
	client, slept := newTestClient(api)

	_, err := client.Generate(context.Background(), "system", "user", "")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeService, domainErr.Code)

	assert.Equal(t, 3, api.chatCalls)
	assert.Len(t, *slept, 2)
}

func TestGenerate_NonRateLimitNotRetried(t *testing.T) {
	api := &fakeAPI{chatResponses: []chatOutcome{
		{err: &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "boom"}},
	}}
	client, slept := newTestClient(api)

	_, err := client.Generate(context.Background(), "system", "user", "")
	require.Error(t, err)
	assert.Equal(t, 1, api.chatCalls)
	assert.Empty(t, *slept)
}

func TestGenerate_TimeoutNotRetried(t *testing.T) {
	api := &fakeAPI{chatResponses: []chatOutcome{
		{err: context.DeadlineExceeded},
	}}
	client, slept := newTestClient(api)

	_, err := client.Generate(context.Background(), "system", "user", "")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeService, domainErr.Code)
	assert.True(t, errors.Is(domainErr.Err, context.DeadlineExceeded))

	assert.Equal(t, 1, api.chatCalls)
	assert.Empty(t, *slept)
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "key"})

	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
	assert.Equal(t, DefaultChatModel, client.chatModel)
	assert.Equal(t, DefaultMaxRetries, client.maxRetries)
	assert.Equal(t, DefaultRequestTimeout, client.timeout)
}
