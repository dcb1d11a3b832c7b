package generation

import (
	"context"
	"fmt"
	"strings"

	"study-platform/internal/domain/users"
)

const (
	chatSystemPrompt = "You are an AI tutor."
	chatMaxTokens    = 800
)

type ChatReply struct {
	Reply      string `json:"reply"`
	TokensUsed int    `json:"tokens_used"`
}

// Chat answers a student question about an essay prompt.
func (g *Gateway) Chat(ctx context.Context, userID uint, message, essayPrompt string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyPrompt
	}

	user, err := users.FindByID(g.db, userID)
	if err != nil {
		return nil, err
	}
	if user.AICredits < ChatMinimumCredits {
		return nil, ErrInsufficientCredits
	}

	out, err := g.complete(ctx, userID, Request{
		Model:       g.opts.Model,
		System:      chatSystemPrompt,
		User:        fmt.Sprintf("Student asked: %s\nEssay prompt: %s", message, essayPrompt),
		MaxTokens:   chatMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &ChatReply{Reply: strings.TrimSpace(out.Content), TokensUsed: out.Usage.TotalTokens}, nil
}
