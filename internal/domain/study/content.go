package study

import (
	"context"
	"fmt"
	"strings"

	"study-platform/database"
	"study-platform/internal/domain/users"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = database.ErrNotFound

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func ListPracticeTests(db *gorm.DB, ownerID uint) ([]PracticeTest, error) {
	return database.ListOwned[PracticeTest](db, ownerID)
}

// GetPracticeTest loads an owned test with questions and options in order.
func GetPracticeTest(db *gorm.DB, id string, ownerID uint) (*PracticeTest, error) {
	q := db.Preload("Questions", byPosition).Preload("Questions.Options", byPosition)
	return database.FindOwned[PracticeTest](q, id, ownerID)
}

func DeletePracticeTest(db *gorm.DB, id string, ownerID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		t, err := database.FindOwned[PracticeTest](tx.Preload("Questions"), id, ownerID)
		if err != nil {
			return err
		}
		qids := make([]string, 0, len(t.Questions))
		for _, q := range t.Questions {
			qids = append(qids, q.ID)
		}
		if len(qids) > 0 {
			if err := tx.Where("question_id IN ?", qids).Delete(&Option{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("practice_test_id = ?", id).Delete(&Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("practice_test_id = ?", id).Delete(&PracticeTestResult{}).Error; err != nil {
			return err
		}
		return database.DeleteOwned[PracticeTest](tx, id, ownerID)
	})
}

func ListWritingTasks(db *gorm.DB, ownerID uint) ([]WritingTask, error) {
	return database.ListOwned[WritingTask](db, ownerID)
}

func GetWritingTask(db *gorm.DB, id string, ownerID uint) (*WritingTask, error) {
	return database.FindOwned[WritingTask](db, id, ownerID)
}

// CreateWritingTask fills defaults and stores a manually authored task.
func CreateWritingTask(db *gorm.DB, t *WritingTask) error {
	t.Title = strings.TrimSpace(t.Title)
	t.Prompt = strings.TrimSpace(t.Prompt)
	if t.Title == "" || t.Prompt == "" {
		return fmt.Errorf("%w: title and prompt are required", ErrInvalid)
	}
	if t.Subject == "" {
		t.Subject = DefaultSubject
	}
	if t.Duration <= 0 {
		t.Duration = DefaultDuration
	}
	return db.Create(t).Error
}

func DeleteWritingTask(db *gorm.DB, id string, ownerID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := database.FindOwned[WritingTask](tx, id, ownerID); err != nil {
			return err
		}
		if err := tx.Where("writing_task_id = ?", id).Delete(&WritingTaskResult{}).Error; err != nil {
			return err
		}
		return database.DeleteOwned[WritingTask](tx, id, ownerID)
	})
}

func GetWritingResult(db *gorm.DB, id string, ownerID uint) (*WritingTaskResult, error) {
	return database.FindOwned[WritingTaskResult](db.Preload("WritingTask"), id, ownerID)
}

func ListFlashcardSets(db *gorm.DB, ownerID uint) ([]FlashcardSet, error) {
	return database.ListOwned[FlashcardSet](db, ownerID)
}

func GetFlashcardSet(db *gorm.DB, id string, ownerID uint) (*FlashcardSet, error) {
	return database.FindOwned[FlashcardSet](db.Preload("Flashcards", byPosition), id, ownerID)
}

func DeleteFlashcardSet(db *gorm.DB, id string, ownerID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := database.FindOwned[FlashcardSet](tx, id, ownerID); err != nil {
			return err
		}
		if err := tx.Where("flashcard_set_id = ?", id).Delete(&FlashcardSetProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("flashcard_set_id = ?", id).Delete(&Flashcard{}).Error; err != nil {
			return err
		}
		return database.DeleteOwned[FlashcardSet](tx, id, ownerID)
	})
}

type TestSubmission struct {
	Grade
	ResultID string `json:"result_id"`
	Points   int    `json:"points"`
}

// SubmitPracticeTest grades answers, stores the result and awards points in one transaction.
func SubmitPracticeTest(db *gorm.DB, ownerID uint, testID string, answers map[string]string) (*TestSubmission, error) {
	t, err := GetPracticeTest(db, testID, ownerID)
	if err != nil {
		return nil, err
	}

	grade := GradeTest(*t, answers)
	points := CalculatePoints(t.ScoringProfile(), grade.Score)
	result := PracticeTestResult{OwnerID: ownerID, PracticeTestID: t.ID, Score: float64(grade.Score)}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&result).Error; err != nil {
			return err
		}
		return users.AddPoints(tx, ownerID, points)
	})
	if err != nil {
		return nil, fmt.Errorf("save test result: %w", err)
	}

	return &TestSubmission{Grade: grade, ResultID: result.ID, Points: points}, nil
}

// EssayGrader scores an essay between 0 and 100. It does not fail; problems become feedback.
type EssayGrader interface {
	GradeEssay(ctx context.Context, userID uint, task WritingTask, content string) (int, string)
}

type EssaySubmission struct {
	Result WritingTaskResult `json:"result"`
	Points int               `json:"points"`
}

func SubmitEssay(ctx context.Context, db *gorm.DB, grader EssayGrader, ownerID uint, taskID, content string) (*EssaySubmission, error) {
	task, err := GetWritingTask(db, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: essay content is empty", ErrInvalid)
	}

	score, feedback := grader.GradeEssay(ctx, ownerID, *task, content)
	score = min(max(score, 0), 100)
	points := CalculatePoints(task.ScoringProfile(), score)

	result := WritingTaskResult{
		OwnerID:       ownerID,
		WritingTaskID: task.ID,
		Content:       content,
		Feedback:      feedback,
		Score:         float64(score),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&result).Error; err != nil {
			return err
		}
		return users.AddPoints(tx, ownerID, points)
	})
	if err != nil {
		return nil, fmt.Errorf("save essay result: %w", err)
	}
	result.WritingTask = *task
	return &EssaySubmission{Result: result, Points: points}, nil
}
