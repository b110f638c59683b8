package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"taskhive/pkg/config"
)

// Client is the upstream language-model interface. Implementations may fail;
// the service layer degrades to local fallbacks on any error.
type Client interface {
	SuggestCategory(ctx context.Context, title string, previous []string) (string, error)
	GenerateDescription(ctx context.Context, title, summary string) (string, error)
}

type openAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient builds the chat-completions client. Returns nil when no API
// key is configured; callers must treat a nil client as "fallback only".
func NewOpenAIClient(cfg config.AIConfig) Client {
	if cfg.APIKey == "" {
		return nil
	}
	return &openAIClient{
		client:    openai.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *openAIClient) SuggestCategory(ctx context.Context, title string, previous []string) (string, error) {
	prompt := fmt.Sprintf(
		"Suggest a single category for the task %q. Reply with one word only. Categories used before: %s",
		title, strings.Join(previous, ", "))

	reply, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *openAIClient) GenerateDescription(ctx context.Context, title, summary string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short actionable task description (2-3 sentences) for the task %q. Context: %s",
		title, summary)

	reply, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *openAIClient) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
