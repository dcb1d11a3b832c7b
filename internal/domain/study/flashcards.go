package study

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ModeStudy   = "study"
	ModeRegular = "regular"
)

type FlashcardSummary struct {
	Known           int     `json:"known"`
	NotKnown        int     `json:"not_known"`
	Total           int     `json:"total"`
	KnownPercent    float64 `json:"known_percent"`
	NotKnownPercent float64 `json:"not_known_percent"`
}

func NewFlashcardSummary(known, notKnown, total int) FlashcardSummary {
	s := FlashcardSummary{Known: known, NotKnown: notKnown, Total: total}
	if total > 0 {
		s.KnownPercent = float64(known) / float64(total) * 100
		s.NotKnownPercent = float64(notKnown) / float64(total) * 100
	}
	return s
}

// ResetSession drops any progress for the set. Study mode starts a fresh tracked session.
func ResetSession(db *gorm.DB, ownerID uint, setID string, mode string) (*FlashcardSetProgress, error) {
	if _, err := GetFlashcardSet(db, setID, ownerID); err != nil {
		return nil, err
	}

	var progress *FlashcardSetProgress
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND flashcard_set_id = ?", ownerID, setID).
			Delete(&FlashcardSetProgress{}).Error; err != nil {
			return err
		}
		if mode != ModeStudy {
			return nil
		}
		progress = &FlashcardSetProgress{OwnerID: ownerID, FlashcardSetID: setID}
		return tx.Omit(clause.Associations).Create(progress).Error
	})
	if err != nil {
		return nil, fmt.Errorf("reset flashcard session: %w", err)
	}
	return progress, nil
}

type FlashcardAnswer struct {
	Progress  *FlashcardSetProgress `json:"progress,omitempty"`
	Next      *Flashcard            `json:"next,omitempty"`
	Completed bool                  `json:"completed"`
	Summary   *FlashcardSummary     `json:"summary,omitempty"`
}

// AnswerFlashcard records known or not known for the current card and advances.
// Answering the last card deletes the session and returns its summary.
func AnswerFlashcard(db *gorm.DB, ownerID uint, setID string, known bool) (*FlashcardAnswer, error) {
	set, err := GetFlashcardSet(db, setID, ownerID)
	if err != nil {
		return nil, err
	}

	var progress FlashcardSetProgress
	err = db.Where("owner_id = ? AND flashcard_set_id = ?", ownerID, setID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if known {
		progress.Known++
	} else {
		progress.NotKnown++
	}
	progress.CurrentIndex++

	total := len(set.Flashcards)
	if progress.CurrentIndex >= total {
		if err := db.Delete(&progress).Error; err != nil {
			return nil, fmt.Errorf("finish flashcard session: %w", err)
		}
		summary := NewFlashcardSummary(progress.Known, progress.NotKnown, total)
		return &FlashcardAnswer{Completed: true, Summary: &summary}, nil
	}

	if err := db.Omit(clause.Associations).Save(&progress).Error; err != nil {
		return nil, fmt.Errorf("save flashcard progress: %w", err)
	}
	next := set.Flashcards[progress.CurrentIndex]
	return &FlashcardAnswer{Progress: &progress, Next: &next}, nil
}

// SessionSummary reports on an unfinished session, or zeros without one.
func SessionSummary(db *gorm.DB, ownerID uint, setID string) (FlashcardSummary, error) {
	if _, err := GetFlashcardSet(db, setID, ownerID); err != nil {
		return FlashcardSummary{}, err
	}
	var progress FlashcardSetProgress
	err := db.Where("owner_id = ? AND flashcard_set_id = ?", ownerID, setID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewFlashcardSummary(0, 0, 0), nil
	}
	if err != nil {
		return FlashcardSummary{}, err
	}
	return NewFlashcardSummary(progress.Known, progress.NotKnown, progress.Known+progress.NotKnown), nil
}

// Navigate moves from index in direction "next" or "prev", clamped to the set.
func Navigate(set FlashcardSet, index int, direction string) (int, *Flashcard, error) {
	if len(set.Flashcards) == 0 {
		return 0, nil, fmt.Errorf("%w: set has no cards", ErrInvalid)
	}
	switch direction {
	case "next":
		index++
	case "prev":
		index--
	}
	index = min(max(index, 0), len(set.Flashcards)-1)
	card := set.Flashcards[index]
	return index, &card, nil
}
