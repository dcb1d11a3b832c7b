// Package openai adapts the OpenAI chat completion API to generation.Completer.
package openai

import (
	"context"
	"errors"
	"fmt"

	"study-platform/internal/generation"

	goopenai "github.com/sashabaranov/go-openai"
)

var ErrNotConfigured = errors.New("openai: API key not configured")

type Client struct {
	api *goopenai.Client
}

// NewClient returns nil when apiKey is empty; a nil *Client reports ErrNotConfigured.
func NewClient(apiKey, baseURL string) *Client {
	if apiKey == "" {
		return nil
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg)}
}

func (c *Client) Complete(ctx context.Context, req generation.Request) (generation.Completion, error) {
	if c == nil || c.api == nil {
		return generation.Completion{}, ErrNotConfigured
	}

	chat := goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		chat.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chat)
	if err != nil {
		return generation.Completion{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return generation.Completion{}, errors.New("openai: empty response")
	}

	return generation.Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: generation.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

var _ generation.Completer = (*Client)(nil)
