// Package openai wraps the OpenAI-compatible embedding and chat
// completion endpoints behind narrow interfaces the services consume.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/brandloom-ai/brandloom/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultChatModel is the generation model when none is configured
	DefaultChatModel = "gpt-4o-mini"
	// DefaultMaxRetries bounds rate-limited generation attempts
	DefaultMaxRetries = 3
	// DefaultRequestTimeout bounds a single generation call. A timeout is
	// NOT retried; only explicit rate-limit responses are.
	DefaultRequestTimeout = 120 * time.Second

	chatTemperature = 0.2
)

var (
	// ErrEmptyText is returned when text to embed is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// CompletionAPI is the slice of the upstream SDK the client depends on,
// kept narrow so tests can substitute a double.
type CompletionAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SDKAdapter implements CompletionAPI on the go-openai SDK.
type SDKAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewSDKAdapter(apiKey, baseURL string, embeddingModel openai.EmbeddingModel) *SDKAdapter {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &SDKAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  embeddingModel,
	}
}

// CreateEmbeddings calls the embeddings endpoint
func (a *SDKAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion calls the chat completions endpoint
func (a *SDKAdapter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, req)
}

// Config holds client configuration
type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	ChatModel           string
	MaxRetries          int
	RequestTimeout      time.Duration
}

// Client wraps the OpenAI-compatible API for embeddings and generation
type Client struct {
	api        CompletionAPI
	dimensions int
	chatModel  string
	maxRetries int
	timeout    time.Duration

	// sleep and jitter are swapped out in tests
	sleep  func(time.Duration)
	jitter func() float64
}

// NewClient creates a new client using defaults
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new client with explicit configuration
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		api:        NewSDKAdapter(cfg.APIKey, cfg.BaseURL, cfg.EmbeddingModel),
		dimensions: dimensions,
		chatModel:  chatModel,
		maxRetries: maxRetries,
		timeout:    timeout,
		sleep:      time.Sleep,
		jitter:     rand.Float64,
	}
}

// NewClientFromEnv creates a new client from OPENAI_API_KEY
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// retryState is one node of the generation retry state machine:
// attempting(n) -> waiting -> attempting(n+1) | done | failed.
type retryState int

const (
	stateAttempting retryState = iota
	stateWaiting
	stateDone
	stateFailed
)

// Generate issues a chat completion with the system and user prompts.
// Only rate-limit responses are retried, with exponential backoff plus
// jitter: (2^attempt * 5)s + U(0,2)s. Every other failure class,
// including a request timeout, propagates immediately. Exhausting the
// retry budget is a SERVICE_ERROR, never a sentinel value.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	if model == "" {
		model = c.chatModel
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: chatTemperature,
	}

	attempt := 0
	state := stateAttempting
	var content string
	var lastErr error

	for state == stateAttempting || state == stateWaiting {
		switch state {
		case stateAttempting:
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			resp, err := c.api.CreateChatCompletion(callCtx, req)
			cancel()

			if err == nil {
				if len(resp.Choices) == 0 {
					lastErr = errors.New("no choices returned")
					state = stateFailed
					break
				}
				content = resp.Choices[0].Message.Content
				state = stateDone
				break
			}

			lastErr = err
			if !isRateLimited(err) {
				state = stateFailed
				break
			}
			if attempt >= c.maxRetries-1 {
				state = stateFailed
				break
			}
			state = stateWaiting

		case stateWaiting:
			wait := c.backoff(attempt)
			log.Printf("generation rate limited, retrying in %.1fs (attempt %d/%d)", wait.Seconds(), attempt+1, c.maxRetries)
			c.sleep(wait)
			attempt++
			state = stateAttempting
		}
	}

	if state == stateFailed {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeService, "generation service call failed", lastErr)
	}
	return content, nil
}

// backoff computes the wait before re-attempting: 5s, 10s, 20s plus
// up to 2s of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	base := float64(int64(1)<<uint(attempt)) * 5
	jitter := c.jitter() * 2
	return time.Duration((base + jitter) * float64(time.Second))
}

// isRateLimited reports whether the error is an explicit 429 response
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
