package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	QuestionMCQ  = "mcq"
	QuestionText = "text"
	QuestionTF   = "tf"

	DefaultDuration = 30
	DefaultSubject  = "General"
)

// Activity holds the fields shared by tests, writing tasks and flashcard sets.
type Activity struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"type:varchar(100);default:'General'" json:"subject"`
	Duration    int       `gorm:"default:30" json:"duration"` // minutes
	IsPublic    bool      `json:"is_public"`
	Difficulty  string    `gorm:"type:varchar(50)" json:"difficulty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

type PracticeTest struct {
	Activity
	Questions []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (t *PracticeTest) BeforeCreate(*gorm.DB) error { newID(&t.ID); return nil }

type Question struct {
	ID             string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	PracticeTestID string   `gorm:"type:varchar(36);not null;index" json:"practice_test_id"`
	Text           string   `gorm:"type:text;not null" json:"text"`
	QuestionType   string   `gorm:"type:varchar(10);default:'mcq'" json:"question_type"`
	Subject        string   `gorm:"type:varchar(100)" json:"subject"`
	Answer         string   `gorm:"type:varchar(200)" json:"answer,omitempty"`
	Explanation    string   `gorm:"type:text" json:"explanation,omitempty"`
	Position       int      `json:"position"`
	Options        []Option `gorm:"constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (q *Question) BeforeCreate(*gorm.DB) error { newID(&q.ID); return nil }

type Option struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	QuestionID string `gorm:"type:varchar(36);not null;index" json:"question_id"`
	Text       string `gorm:"type:varchar(200);not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"is_correct"`
	Position   int    `json:"position"`
}

func (o *Option) BeforeCreate(*gorm.DB) error { newID(&o.ID); return nil }

type WritingTask struct {
	Activity
	Prompt       string `gorm:"type:text;not null" json:"prompt"`
	GradingLevel string `gorm:"type:varchar(50)" json:"grading_level"`
	MinWordCount int    `gorm:"default:250" json:"min_word_count"`
	MaxWordCount int    `gorm:"default:1000" json:"max_word_count"`
}

func (t *WritingTask) BeforeCreate(*gorm.DB) error { newID(&t.ID); return nil }

type FlashcardSet struct {
	Activity
	Flashcards []Flashcard `gorm:"constraint:OnDelete:CASCADE" json:"flashcards,omitempty"`
}

func (s *FlashcardSet) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

type Flashcard struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`
	FlashcardSetID string `gorm:"type:varchar(36);not null;index" json:"flashcard_set_id"`
	Front          string `gorm:"type:text;not null" json:"front"`
	Back           string `gorm:"type:text;not null" json:"back"`
	Position       int    `json:"position"`
}

func (f *Flashcard) BeforeCreate(*gorm.DB) error { newID(&f.ID); return nil }

// Results are write-once.

type PracticeTestResult struct {
	ID             string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID        uint         `gorm:"not null;index" json:"owner_id"`
	PracticeTestID string       `gorm:"type:varchar(36);not null;index" json:"practice_test_id"`
	PracticeTest   PracticeTest `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Score          float64      `json:"score"`
	TakenAt        time.Time    `gorm:"autoCreateTime;index" json:"taken_at"`
}

func (r *PracticeTestResult) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }

type WritingTaskResult struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID       uint        `gorm:"not null;index" json:"owner_id"`
	WritingTaskID string      `gorm:"type:varchar(36);not null;index" json:"writing_task_id"`
	WritingTask   WritingTask `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Content       string      `gorm:"type:text" json:"content"`
	Feedback      string      `gorm:"type:text" json:"feedback"`
	Score         float64     `json:"score"`
	TakenAt       time.Time   `gorm:"autoCreateTime;index" json:"taken_at"`
}

func (r *WritingTaskResult) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }

// FlashcardSetProgress is a running session counter, deleted when the session completes.
type FlashcardSetProgress struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OwnerID        uint         `gorm:"not null;uniqueIndex:idx_flashcard_progress_owner_set" json:"owner_id"`
	FlashcardSetID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_flashcard_progress_owner_set" json:"flashcard_set_id"`
	FlashcardSet   FlashcardSet `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CurrentIndex   int          `gorm:"not null;default:0" json:"current_index"`
	Known          int          `gorm:"not null;default:0" json:"known"`
	NotKnown       int          `gorm:"not null;default:0" json:"not_known"`
	Completed      bool         `gorm:"not null;default:false" json:"completed"`
	LastReviewed   time.Time    `gorm:"autoUpdateTime;index" json:"last_reviewed"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{
		&PracticeTest{}, &Question{}, &Option{},
		&WritingTask{}, &WritingTaskResult{},
		&PracticeTestResult{},
		&FlashcardSet{}, &Flashcard{}, &FlashcardSetProgress{},
	}
}
