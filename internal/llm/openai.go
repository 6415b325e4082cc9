package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/logger"
)

// Generation defaults matching the query pipeline's expectations.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// OpenAIService generates answers through the OpenAI chat completions API.
// It abstracts the provider so it can be swapped without touching the query
// pipeline.
type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIService creates a chat completion client. The timeout bounds
// every generation call, streaming included.
func NewOpenAIService(apiKey, model string, timeout time.Duration) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", core.ErrInvalidInput)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIService{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}, nil
}

// Generate returns the completion for a single-prompt request.
func (s *OpenAIService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", core.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", core.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream streams the completion, invoking fn once per text delta.
// A non-nil error from fn aborts the stream and is returned as-is.
func (s *OpenAIService) GenerateStream(ctx context.Context, prompt string, fn func(delta string) error) error {
	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: chat completion stream: %v", core.ErrUpstream, err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: chat completion stream: %v", core.ErrUpstream, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := fn(delta); err != nil {
			logger.Debug("Stream consumer aborted: %v", err)
			return err
		}
	}
}

// ModelName returns the configured chat model.
func (s *OpenAIService) ModelName() string { return s.model }
