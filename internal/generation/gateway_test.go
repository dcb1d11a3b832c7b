package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"study-platform/internal/domain/study"
	"study-platform/internal/domain/users"
	"study-platform/internal/testdb"

	"gorm.io/gorm"
)

type fakeCompleter struct {
	content string
	tokens  int
	err     error
	calls   []Request
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (Completion, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return Completion{}, f.err
	}
	return Completion{Content: f.content, Usage: Usage{TotalTokens: f.tokens}}, nil
}

func setup(t *testing.T, ai Completer) (*Gateway, *gorm.DB, users.User) {
	t.Helper()
	db := testdb.New(t, append([]any{&users.User{}}, study.Models()...)...)
	u := users.User{Email: "student@example.com"}
	if err := users.Create(db, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewGateway(db, ai, Options{}), db, u
}

func credits(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	u, err := users.FindByID(db, id)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	return u.AICredits
}

const generatedTest = "```json\n" + `{
  "PracticeTest": {
    "title": "Cells",
    "subject": "Biology",
    "duration": "20",
    "difficulty": "Easy",
    "questions": [
      {"text": "Powerhouse of the cell?", "question_type": "mcq", "answer": "Mitochondria",
       "options": [{"text": "Nucleus", "is_correct": false}, {"text": "Mitochondria", "is_correct": "true"},]},
      {"text": "Cells contain DNA", "question_type": "tf", "answer": "true",
       "options": [{"text": "ignored", "is_correct": true}]},
    ]
  }
}` + "\n```"

func TestGeneratePracticeTestPersistsAndDebits(t *testing.T) {
	ai := &fakeCompleter{content: generatedTest, tokens: 420}
	g, db, u := setup(t, ai)

	res, err := g.Generate(context.Background(), u.ID, GenerateRequest{Kind: KindPracticeTest, Prompt: "cell biology", Amount: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.PracticeTest == nil || res.PracticeTest.QuestionCount != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := credits(t, db, u.ID); got != users.DefaultCredits-420 {
		t.Fatalf("credits = %d, want %d", got, users.DefaultCredits-420)
	}

	test, err := study.GetPracticeTest(db, res.PracticeTest.ID, u.ID)
	if err != nil {
		t.Fatalf("GetPracticeTest: %v", err)
	}
	if test.Duration != 20 || test.Difficulty != "Easy" || !test.IsPublic {
		t.Fatalf("unexpected activity fields: %+v", test.Activity)
	}
	if len(test.Questions[0].Options) != 2 || !test.Questions[0].Options[1].IsCorrect {
		t.Fatalf("mcq options not stored: %+v", test.Questions[0].Options)
	}
	if len(test.Questions[1].Options) != 0 {
		t.Fatalf("tf question should not keep options: %+v", test.Questions[1].Options)
	}
	if !ai.calls[0].JSON || !strings.Contains(ai.calls[0].User, "exactly 2 questions") {
		t.Fatalf("unexpected request: %+v", ai.calls[0])
	}
}

func TestGenerateFlashcardsDefaults(t *testing.T) {
	ai := &fakeCompleter{content: `{"flashcards": [{"front": "H2O", "back": "Water"}, {"front": "NaCl", "back": "Salt"}]}`, tokens: 10}
	g, db, u := setup(t, ai)

	res, err := g.Generate(context.Background(), u.ID, GenerateRequest{Kind: KindFlashcards, Prompt: "chemistry", Duration: 15})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	set, err := study.GetFlashcardSet(db, res.FlashcardSet.ID, u.ID)
	if err != nil {
		t.Fatalf("GetFlashcardSet: %v", err)
	}
	if set.Title != "Untitled Flashcards" || set.Subject != study.DefaultSubject || set.Duration != 15 || set.Difficulty != "Medium" {
		t.Fatalf("defaults not applied: %+v", set.Activity)
	}
	if len(set.Flashcards) != 2 || set.Flashcards[1].Back != "Salt" {
		t.Fatalf("cards not stored: %+v", set.Flashcards)
	}
}

func TestGenerateParseFailureStillDebits(t *testing.T) {
	ai := &fakeCompleter{content: "Sure! Here are your questions.", tokens: 300}
	g, db, u := setup(t, ai)

	_, err := g.Generate(context.Background(), u.ID, GenerateRequest{Kind: KindPracticeTest, Prompt: "x"})
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if got := credits(t, db, u.ID); got != users.DefaultCredits-300 {
		t.Fatalf("credits = %d, want debit on parse failure", got)
	}
	var n int64
	db.Model(&study.PracticeTest{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no partial save, found %d tests", n)
	}
}

func TestGenerateUpstreamErrorDoesNotDebit(t *testing.T) {
	ai := &fakeCompleter{err: errors.New("503")}
	g, db, u := setup(t, ai)

	_, err := g.Generate(context.Background(), u.ID, GenerateRequest{Kind: KindFlashcards, Prompt: "x"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if got := credits(t, db, u.ID); got != users.DefaultCredits {
		t.Fatalf("credits = %d, want unchanged", got)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	g, _, u := setup(t, &fakeCompleter{})

	if _, err := g.Generate(context.Background(), u.ID, GenerateRequest{Kind: "quiz", Prompt: "x"}); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
	if _, err := g.Generate(context.Background(), u.ID, GenerateRequest{Kind: KindFlashcards}); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if !IsClientError(ErrEmptyPrompt) || IsClientError(ErrParse) {
		t.Fatal("IsClientError misclassified")
	}
}

func TestGradeEssay(t *testing.T) {
	task := study.WritingTask{Prompt: "Describe photosynthesis", GradingLevel: "strict"}

	ai := &fakeCompleter{content: `{"score": 130, "feedback": "Clear structure."}`, tokens: 50}
	g, db, u := setup(t, ai)
	score, feedback := g.GradeEssay(context.Background(), u.ID, task, "Plants make sugar.")
	if score != 100 || feedback != "Clear structure." {
		t.Fatalf("got %d %q", score, feedback)
	}
	if ai.calls[0].Model != "gpt-4o" || !strings.Contains(ai.calls[0].User, "strict") {
		t.Fatalf("unexpected request: %+v", ai.calls[0])
	}
	if got := credits(t, db, u.ID); got != users.DefaultCredits-50 {
		t.Fatalf("credits = %d", got)
	}

	ai.content = "no json here"
	score, feedback = g.GradeEssay(context.Background(), u.ID, task, "Plants make sugar.")
	if score != 0 || feedback != essayFallbackReply {
		t.Fatalf("expected fallback, got %d %q", score, feedback)
	}

	ai.content = `{"score": -5, "feedback": "Off topic."}`
	score, feedback = g.GradeEssay(context.Background(), u.ID, task, "Plants make sugar.")
	if score != 0 || feedback != "Off topic." {
		t.Fatalf("negative score not clamped: %d %q", score, feedback)
	}

	ai.err = errors.New("timeout")
	score, feedback = g.GradeEssay(context.Background(), u.ID, task, "Plants make sugar.")
	if score != 0 || feedback != essayFallbackReply {
		t.Fatalf("expected fallback on upstream error, got %d %q", score, feedback)
	}
}

func TestChatRequiresCredits(t *testing.T) {
	ai := &fakeCompleter{content: "Start with a thesis.", tokens: 25}
	g, db, u := setup(t, ai)

	reply, err := g.Chat(context.Background(), u.ID, "How do I begin?", "Climate change")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Reply != "Start with a thesis." {
		t.Fatalf("reply = %q", reply.Reply)
	}
	if !strings.Contains(ai.calls[0].User, "Essay prompt: Climate change") {
		t.Fatalf("prompt = %q", ai.calls[0].User)
	}

	db.Model(&users.User{}).Where("id = ?", u.ID).Update("ai_credits", ChatMinimumCredits-1)
	if _, err := g.Chat(context.Background(), u.ID, "again", ""); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(ai.calls) != 1 {
		t.Fatalf("completion called %d times", len(ai.calls))
	}
}

func TestInsightsWithoutResultsSkipsCompletion(t *testing.T) {
	ai := &fakeCompleter{content: "unused"}
	g, _, u := setup(t, ai)

	out, err := g.Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if out.Text == "" || len(ai.calls) != 0 {
		t.Fatalf("unexpected insights %+v calls=%d", out, len(ai.calls))
	}
}

func TestInsightsSummarizesResults(t *testing.T) {
	ai := &fakeCompleter{content: " Focus on essays. ", tokens: 5}
	g, db, u := setup(t, ai)
	pt := study.PracticeTest{Activity: study.Activity{OwnerID: u.ID, Title: "T"}}
	if err := db.Create(&pt).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Omit("PracticeTest").Create(&study.PracticeTestResult{OwnerID: u.ID, PracticeTestID: pt.ID, Score: 64}).Error; err != nil {
		t.Fatal(err)
	}

	out, err := g.Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if out.Text != "Focus on essays." {
		t.Fatalf("text = %q", out.Text)
	}
	if ai.calls[0].JSON || !strings.Contains(ai.calls[0].User, `"score":64`) {
		t.Fatalf("unexpected request: %+v", ai.calls[0])
	}
}
