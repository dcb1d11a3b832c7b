package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"study-platform/internal/domain/progress"
)

const insightsSystemPrompt = "You are a helpful assistant that provides insights based on user performance data."

type Insights struct {
	Text       string `json:"insights"`
	TokensUsed int    `json:"tokens_used"`
}

func insightsPrompt(practice []progress.PracticePoint, writing []progress.WritingPoint) (string, error) {
	pj, err := json.Marshal(practice)
	if err != nil {
		return "", err
	}
	wj, err := json.Marshal(writing)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Analyze this student's recent performance and give short, actionable study advice.\n"+
		"Practice test results (score out of 100, date): %s\n"+
		"Writing results (score, essay length in characters, date): %s\n"+
		"Point out strengths, weaknesses and trends, then suggest what to focus on next.", pj, wj), nil
}

// Insights summarizes recent performance as plain-text advice.
func (g *Gateway) Insights(ctx context.Context, userID uint) (*Insights, error) {
	practice, writing, err := progress.RecentResults(g.db, userID)
	if err != nil {
		return nil, err
	}
	if len(practice) == 0 && len(writing) == 0 {
		return &Insights{Text: "Complete a practice test or writing task to get personalized insights."}, nil
	}

	prompt, err := insightsPrompt(practice, writing)
	if err != nil {
		return nil, err
	}
	out, err := g.complete(ctx, userID, Request{
		Model:       g.opts.Model,
		System:      insightsSystemPrompt,
		User:        prompt,
		MaxTokens:   chatMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &Insights{Text: strings.TrimSpace(out.Content), TokensUsed: out.Usage.TotalTokens}, nil
}
