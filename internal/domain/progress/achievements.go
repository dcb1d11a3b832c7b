package progress

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Achievement struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Title         string `gorm:"type:varchar(100);not null" json:"title"`
	Description   string `gorm:"type:text" json:"description"`
	Icon          string `gorm:"type:varchar(100)" json:"icon"`
	RequiredLevel int    `gorm:"not null;default:1" json:"required_level"`
}

// UserAchievement records when a user first earned an achievement.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{&Achievement{}, &UserAchievement{}}
}

type AchievementStatus struct {
	Achievement
	Unlocked bool       `json:"unlocked"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

type AchievementBoard struct {
	Points       int                 `json:"points"`
	Level        int                 `json:"level"`
	Progress     int                 `json:"progress"`
	Achievements []AchievementStatus `json:"achievements"`
}

// Achievements lists every achievement for the user. One is unlocked when the
// level derived from points reaches its required level or when it was already
// earned. Newly reached ones are recorded as earned at now.
func Achievements(db *gorm.DB, userID uint, points int, now time.Time) (*AchievementBoard, error) {
	level, percent := Level(points)
	board := &AchievementBoard{Points: max(points, 0), Level: level, Progress: percent, Achievements: []AchievementStatus{}}

	var all []Achievement
	if err := db.Order("required_level ASC, id ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	var owned []UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, fmt.Errorf("list earned achievements: %w", err)
	}
	earned := make(map[uint]time.Time, len(owned))
	for _, ua := range owned {
		earned[ua.AchievementID] = ua.EarnedAt
	}

	var fresh []UserAchievement
	for _, a := range all {
		st := AchievementStatus{Achievement: a}
		if at, ok := earned[a.ID]; ok {
			st.Unlocked = true
			st.EarnedAt = &at
		} else if level >= a.RequiredLevel {
			st.Unlocked = true
			at := now
			st.EarnedAt = &at
			fresh = append(fresh, UserAchievement{UserID: userID, AchievementID: a.ID, EarnedAt: now})
		}
		board.Achievements = append(board.Achievements, st)
	}

	if len(fresh) > 0 {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error
		if err != nil {
			return nil, fmt.Errorf("record achievements: %w", err)
		}
	}
	return board, nil
}
