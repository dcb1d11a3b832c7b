package generation

import (
	"context"
	"log"
	"strings"

	"study-platform/internal/domain/study"
)

const (
	essaySystemPrompt   = "You are an essay marker."
	essayFallbackReply  = "AI failed to provide feedback."
	essayMaxTokens      = 1500
	essayTemperature    = 0.3
	defaultGradingLevel = "standard"
)

// GradeEssay scores content against the task prompt. Any failure yields a zero
// score with a fixed feedback message.
func (g *Gateway) GradeEssay(ctx context.Context, userID uint, task study.WritingTask, content string) (int, string) {
	level := task.GradingLevel
	if strings.TrimSpace(level) == "" {
		level = defaultGradingLevel
	}

	out, err := g.complete(ctx, userID, Request{
		Model:       g.opts.GradingModel,
		System:      essaySystemPrompt,
		User:        gradingPrompt(task.Prompt, level, content),
		JSON:        true,
		MaxTokens:   essayMaxTokens,
		Temperature: essayTemperature,
	})
	if err != nil {
		log.Printf("[generation] grade essay failed task=%s err=%v", task.ID, err)
		return 0, essayFallbackReply
	}

	var verdict essayVerdict
	if err := decodeLenient(out.Content, &verdict); err != nil {
		log.Printf("[generation] grade essay failed task=%s err=%v", task.ID, err)
		return 0, essayFallbackReply
	}
	feedback := strings.TrimSpace(verdict.Feedback)
	if feedback == "" {
		feedback = essayFallbackReply
	}
	return min(max(int(verdict.Score), 0), 100), feedback
}

var _ study.EssayGrader = (*Gateway)(nil)
