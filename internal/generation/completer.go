package generation

import "context"

// Request is one chat completion with a system and a user message.
type Request struct {
	Model       string
	System      string
	User        string
	JSON        bool
	MaxTokens   int
	Temperature float32
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Completion struct {
	Content string
	Usage   Usage
}

// Completer is the text-completion service.
type Completer interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}
