package generation

import (
	"fmt"
	"strings"

	"study-platform/internal/domain/study"

	"gorm.io/gorm"
)

const defaultDifficulty = "Medium"

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func activityFrom(g generatedActivity, ownerID uint, duration int, title string) study.Activity {
	if g.Duration > 0 {
		duration = int(g.Duration)
	}
	if duration <= 0 {
		duration = study.DefaultDuration
	}
	public := true
	if g.IsPublic != nil {
		public = bool(*g.IsPublic)
	}
	return study.Activity{
		OwnerID:     ownerID,
		Title:       orDefault(g.Title, title),
		Description: strings.TrimSpace(g.Description),
		Subject:     orDefault(g.Subject, study.DefaultSubject),
		Duration:    duration,
		IsPublic:    public,
		Difficulty:  orDefault(g.Difficulty, defaultDifficulty),
	}
}

func normalizeQuestionType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case study.QuestionText:
		return study.QuestionText
	case study.QuestionTF:
		return study.QuestionTF
	default:
		return study.QuestionMCQ
	}
}

// savePracticeTest stores the test with its questions and options in one transaction.
func savePracticeTest(db *gorm.DB, g generatedActivity, ownerID uint, duration int) (*study.PracticeTest, error) {
	test := study.PracticeTest{Activity: activityFrom(g, ownerID, duration, "Untitled Test")}
	for i, gq := range g.Questions {
		if strings.TrimSpace(gq.Text) == "" {
			continue
		}
		q := study.Question{
			Text:         strings.TrimSpace(gq.Text),
			QuestionType: normalizeQuestionType(gq.QuestionType),
			Subject:      orDefault(gq.Subject, test.Subject),
			Answer:       strings.TrimSpace(gq.Answer),
			Explanation:  strings.TrimSpace(gq.Explanation),
			Position:     i,
		}
		if q.QuestionType == study.QuestionMCQ {
			for j, o := range gq.Options {
				q.Options = append(q.Options, study.Option{
					Text:      strings.TrimSpace(o.Text),
					IsCorrect: bool(o.IsCorrect),
					Position:  j,
				})
			}
		}
		test.Questions = append(test.Questions, q)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&test).Error
	}); err != nil {
		return nil, fmt.Errorf("save practice test: %w", err)
	}
	return &test, nil
}

func saveFlashcardSet(db *gorm.DB, g generatedActivity, ownerID uint, duration int) (*study.FlashcardSet, error) {
	set := study.FlashcardSet{Activity: activityFrom(g, ownerID, duration, "Untitled Flashcards")}
	for i, c := range g.Flashcards {
		front, back := strings.TrimSpace(c.Front), strings.TrimSpace(c.Back)
		if front == "" && back == "" {
			continue
		}
		set.Flashcards = append(set.Flashcards, study.Flashcard{Front: front, Back: back, Position: i})
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&set).Error
	}); err != nil {
		return nil, fmt.Errorf("save flashcard set: %w", err)
	}
	return &set, nil
}
