package integrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient generates artifacts with the OpenAI chat completion API
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI generator. An empty baseURL uses the
// public API.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// Name identifies the generator in logs and metrics
func (c *OpenAIClient) Name() string { return "openai" }

// Generate drafts the artifact body
func (c *OpenAIClient) Generate(ctx context.Context, req artifact.Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		MaxTokens:   2048,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}
