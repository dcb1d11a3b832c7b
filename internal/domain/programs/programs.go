// Package programs holds multi-week study plans built from existing study content.
package programs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"study-platform/database"
	"study-platform/internal/domain/study"

	"gorm.io/gorm"
)

// Activity kinds a week can link to.
const (
	KindPracticeTest = "practice_test"
	KindFlashcardSet = "flashcard_set"
	KindWritingTask  = "writing_task"
)

var ErrInvalid = errors.New("invalid program")

type Program struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"type:varchar(100);not null;default:'General'" json:"subject"`
	Icon        string    `gorm:"type:varchar(100)" json:"icon"`
	Weeks       []Week    `gorm:"constraint:OnDelete:CASCADE" json:"weeks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Duration is the number of weeks. Filled on read.
	Duration int `gorm:"-" json:"duration"`
}

type Week struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ProgramID  uint       `gorm:"not null;uniqueIndex:idx_program_week" json:"program_id"`
	WeekNumber int        `gorm:"not null;uniqueIndex:idx_program_week" json:"week_number"`
	Title      string     `gorm:"type:varchar(100)" json:"title"`
	Notes      string     `gorm:"type:text" json:"notes"`
	Tips       string     `gorm:"type:text" json:"tips"`
	Activities []Activity `gorm:"constraint:OnDelete:CASCADE" json:"activities"`
}

// Activity links a week to a practice test, flashcard set or writing task.
type Activity struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	WeekID    uint   `gorm:"not null;index" json:"week_id"`
	Kind      string `gorm:"type:varchar(20);not null" json:"kind"`
	ContentID string `gorm:"type:varchar(36);not null" json:"content_id"`
}

func (Activity) TableName() string { return "program_activities" }

func (Week) TableName() string { return "program_weeks" }

func Models() []any {
	return []any{&Program{}, &Week{}, &Activity{}}
}

// List returns every program with its duration, without week details.
func List(db *gorm.DB) ([]Program, error) {
	var out []Program
	if err := db.Order("title ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	type weekCount struct {
		ProgramID uint
		N         int
	}
	var counts []weekCount
	err := db.Model(&Week{}).Select("program_id, COUNT(*) AS n").Group("program_id").Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byProgram := make(map[uint]int, len(counts))
	for _, c := range counts {
		byProgram[c.ProgramID] = c.N
	}
	for i := range out {
		out[i].Duration = byProgram[out[i].ID]
	}
	return out, nil
}

// Get loads a program with its weeks in order and their activities.
func Get(db *gorm.DB, id uint) (*Program, error) {
	var p Program
	err := db.Preload("Weeks", func(tx *gorm.DB) *gorm.DB { return tx.Order("week_number ASC") }).
		Preload("Weeks.Activities", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Duration = len(p.Weeks)
	return &p, nil
}

// Create validates and stores a program with its weeks and activities.
// Week numbers must be positive and unique, and every activity must point at
// existing content of its kind.
func Create(db *gorm.DB, p *Program) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if strings.TrimSpace(p.Subject) == "" {
		p.Subject = study.DefaultSubject
	}

	seen := make(map[int]bool, len(p.Weeks))
	for _, w := range p.Weeks {
		if w.WeekNumber <= 0 {
			return fmt.Errorf("%w: week numbers start at 1", ErrInvalid)
		}
		if seen[w.WeekNumber] {
			return fmt.Errorf("%w: week %d appears twice", ErrInvalid, w.WeekNumber)
		}
		seen[w.WeekNumber] = true
		for _, a := range w.Activities {
			if err := checkContent(db, a); err != nil {
				return err
			}
		}
	}

	if err := db.Create(p).Error; err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	p.Duration = len(p.Weeks)
	return nil
}

func Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var weekIDs []uint
		if err := tx.Model(&Week{}).Where("program_id = ?", id).Pluck("id", &weekIDs).Error; err != nil {
			return err
		}
		if len(weekIDs) > 0 {
			if err := tx.Where("week_id IN ?", weekIDs).Delete(&Activity{}).Error; err != nil {
				return err
			}
			if err := tx.Where("program_id = ?", id).Delete(&Week{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&Program{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return nil
	})
}

func checkContent(db *gorm.DB, a Activity) error {
	var model any
	switch a.Kind {
	case KindPracticeTest:
		model = &study.PracticeTest{}
	case KindFlashcardSet:
		model = &study.FlashcardSet{}
	case KindWritingTask:
		model = &study.WritingTask{}
	default:
		return fmt.Errorf("%w: unknown activity kind %q", ErrInvalid, a.Kind)
	}
	var n int64
	if err := db.Model(model).Where("id = ?", a.ContentID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s does not exist", ErrInvalid, a.Kind, a.ContentID)
	}
	return nil
}
