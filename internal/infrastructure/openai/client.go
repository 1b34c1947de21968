package openai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/solarchat/backend/internal/domain"
)

const (
	defaultEmbeddingModel = "text-embedding-3-large"
	requestTimeout        = 60 * time.Second
)

// Client talks to the OpenAI API for chat completions and embeddings.
// The completion model is chosen per request; the embedding model has to
// match the one the product index was built with.
type Client struct {
	api            sdk.Client
	embeddingModel string
}

// NewClient creates a new OpenAI client. baseURL is optional and points
// the client at an API-compatible server when set.
func NewClient(apiKey, baseURL, embeddingModel string) *Client {
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(requestTimeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		api:            sdk.NewClient(opts...),
		embeddingModel: embeddingModel,
	}
}

// Complete runs one chat completion and returns the assistant's text.
// Transient failures are retried up to 3 times.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, sdk.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleAssistant:
			messages = append(messages, sdk.AssistantMessage(msg.Content))
		case domain.RoleSystem:
			messages = append(messages, sdk.SystemMessage(msg.Content))
		default:
			messages = append(messages, sdk.UserMessage(msg.Content))
		}
	}

	params := sdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		// the gpt-5 family rejects max_tokens
		if strings.Contains(strings.ToLower(req.Model), "gpt-5") {
			params.MaxCompletionTokens = sdk.Int(int64(req.MaxTokens))
		} else {
			params.MaxTokens = sdk.Int(int64(req.MaxTokens))
		}
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			log.Printf("[LLM] completion error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("chat completion: %w", err)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("chat completion returned no choices")
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", lastErr
}

// Embed returns the embedding vector for one text
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.api.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Model: sdk.EmbeddingModel(c.embeddingModel),
		Input: sdk.EmbeddingNewParamsInputUnion{
			OfString: sdk.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return resp.Data[0].Embedding, nil
}
