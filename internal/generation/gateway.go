// Package generation turns prompts into stored study content through a
// completion service and meters each call against the user's AI credits.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"study-platform/internal/domain/users"

	"gorm.io/gorm"
)

const (
	defaultMaxTokens   = 3000
	defaultTemperature = 0.7
	defaultAmount      = 10

	// ChatMinimumCredits is the balance required before a tutor chat call is made.
	ChatMinimumCredits = 1000
)

type Options struct {
	Model        string
	GradingModel string
}

type Gateway struct {
	db   *gorm.DB
	ai   Completer
	opts Options
}

func NewGateway(db *gorm.DB, ai Completer, opts Options) *Gateway {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.GradingModel == "" {
		opts.GradingModel = "gpt-4o"
	}
	return &Gateway{db: db, ai: ai, opts: opts}
}

type GenerateRequest struct {
	Kind       string
	Prompt     string
	Amount     int
	Difficulty string
	Duration   int
	FileText   string
}

// Result holds whichever activity was generated.
type Result struct {
	Kind         string           `json:"type"`
	PracticeTest *practiceTestRef `json:"practice_test,omitempty"`
	FlashcardSet *flashcardSetRef `json:"flashcard_set,omitempty"`
	TokensUsed   int              `json:"tokens_used"`
}

type practiceTestRef struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

type flashcardSetRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CardCount int    `json:"card_count"`
}

// complete runs one completion and debits the tokens it used. The debit happens
// whenever the service answered, even if the caller later rejects the content.
func (g *Gateway) complete(ctx context.Context, userID uint, req Request) (Completion, error) {
	out, err := g.ai.Complete(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := users.DebitCredits(g.db, userID, out.Usage.TotalTokens); err != nil {
		log.Printf("[generation] debit failed user=%d tokens=%d err=%v", userID, out.Usage.TotalTokens, err)
	}
	return out, nil
}

// Generate asks for a practice test or flashcard set and stores what comes back.
func (g *Gateway) Generate(ctx context.Context, userID uint, in GenerateRequest) (*Result, error) {
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	if !validKind(in.Kind) {
		return nil, ErrUnsupportedKind
	}
	if strings.TrimSpace(in.Prompt) == "" && strings.TrimSpace(in.FileText) == "" {
		return nil, ErrEmptyPrompt
	}
	if in.Amount <= 0 {
		in.Amount = defaultAmount
	}
	if strings.TrimSpace(in.Difficulty) == "" {
		in.Difficulty = defaultDifficulty
	}

	out, err := g.complete(ctx, userID, Request{
		Model:       g.opts.Model,
		System:      generationSystemPrompt,
		User:        BuildPrompt(in.Kind, in.Prompt, in.Amount, in.Difficulty, in.FileText),
		JSON:        true,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, err
	}

	act, err := parseActivity(out.Content)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: in.Kind, TokensUsed: out.Usage.TotalTokens}
	switch in.Kind {
	case KindPracticeTest:
		test, err := savePracticeTest(g.db, act, userID, in.Duration)
		if err != nil {
			return nil, err
		}
		res.PracticeTest = &practiceTestRef{ID: test.ID, Title: test.Title, QuestionCount: len(test.Questions)}
	case KindFlashcards:
		set, err := saveFlashcardSet(g.db, act, userID, in.Duration)
		if err != nil {
			return nil, err
		}
		res.FlashcardSet = &flashcardSetRef{ID: set.ID, Title: set.Title, CardCount: len(set.Flashcards)}
	}
	return res, nil
}

// IsClientError reports whether err should be shown to the caller as a bad request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedKind) || errors.Is(err, ErrEmptyPrompt)
}
