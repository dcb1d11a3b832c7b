package progress

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"study-platform/internal/domain/study"

	"gorm.io/gorm"
)

const (
	pointsPerLevel   = 1000
	recentLimit      = 5
	insightsLimit    = 20
	distributionBins = 10
)

// Level derives the level and the percent progress toward the next one.
func Level(points int) (level int, percent int) {
	if points < 0 {
		points = 0
	}
	return points / pointsPerLevel, (points % pointsPerLevel) / 10
}

type PracticeSummary struct {
	Total        int     `json:"total"`
	Average      float64 `json:"average"`
	Highest      float64 `json:"highest"`
	Lowest       float64 `json:"lowest"`
	Distribution []int   `json:"distribution"`
}

type WritingSummary struct {
	Total         int `json:"total"`
	AverageLength int `json:"average_length"`
	MaxLength     int `json:"max_length"`
	MinLength     int `json:"min_length"`
}

type SetProgress struct {
	SetID        string  `json:"set_id"`
	Title        string  `json:"title"`
	KnownPercent float64 `json:"known_percent"`
	Completed    bool    `json:"completed"`
}

type FlashcardSummary struct {
	TotalSets  int           `json:"total_sets"`
	Completed  int           `json:"completed"`
	InProgress int           `json:"in_progress"`
	Sets       []SetProgress `json:"sets_progress"`
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func Practice(db *gorm.DB, ownerID uint) (PracticeSummary, error) {
	var results []study.PracticeTestResult
	if err := db.Where("owner_id = ?", ownerID).Find(&results).Error; err != nil {
		return PracticeSummary{}, err
	}
	return summarizePractice(results), nil
}

func summarizePractice(results []study.PracticeTestResult) PracticeSummary {
	s := PracticeSummary{Total: len(results), Distribution: make([]int, distributionBins)}
	if len(results) == 0 {
		return s
	}

	sum := 0.0
	s.Highest = results[0].Score
	s.Lowest = results[0].Score
	for _, r := range results {
		sum += r.Score
		s.Highest = math.Max(s.Highest, r.Score)
		s.Lowest = math.Min(s.Lowest, r.Score)
		bin := min(max(int(r.Score)/10, 0), distributionBins-1)
		s.Distribution[bin]++
	}
	s.Average = round2(sum / float64(len(results)))
	return s
}

func Writing(db *gorm.DB, ownerID uint) (WritingSummary, error) {
	var results []study.WritingTaskResult
	if err := db.Select("id", "content").Where("owner_id = ?", ownerID).Find(&results).Error; err != nil {
		return WritingSummary{}, err
	}

	s := WritingSummary{Total: len(results)}
	if len(results) == 0 {
		return s, nil
	}
	sum := 0
	s.MinLength = math.MaxInt
	for _, r := range results {
		n := utf8.RuneCountInString(r.Content)
		sum += n
		s.MaxLength = max(s.MaxLength, n)
		s.MinLength = min(s.MinLength, n)
	}
	s.AverageLength = sum / len(results)
	return s, nil
}

func Flashcards(db *gorm.DB, ownerID uint) (FlashcardSummary, error) {
	var rows []study.FlashcardSetProgress
	err := db.Preload("FlashcardSet.Flashcards").
		Where("owner_id = ?", ownerID).
		Order("last_reviewed DESC").
		Find(&rows).Error
	if err != nil {
		return FlashcardSummary{}, err
	}

	s := FlashcardSummary{TotalSets: len(rows), Sets: []SetProgress{}}
	for _, p := range rows {
		if p.Completed {
			s.Completed++
		}
		pct := 0.0
		if total := len(p.FlashcardSet.Flashcards); total > 0 {
			pct = round2(float64(p.Known) / float64(total) * 100)
		}
		s.Sets = append(s.Sets, SetProgress{
			SetID:        p.FlashcardSetID,
			Title:        p.FlashcardSet.Title,
			KnownPercent: pct,
			Completed:    p.Completed,
		})
	}
	s.InProgress = s.TotalSets - s.Completed
	return s, nil
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type RecentActivity struct {
	Type  string    `json:"type"`
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Score *float64  `json:"score,omitempty"`
}

type Dashboard struct {
	TotalPractice   int              `json:"total_practice"`
	TotalWriting    int              `json:"total_writing"`
	TotalFlashcards int              `json:"total_flashcards"`
	Weekly          []DayCount       `json:"weekly_progress"`
	Recent          []RecentActivity `json:"recent_activity"`
}

// BuildDashboard counts activity for the seven days ending today and the five most recent items.
func BuildDashboard(db *gorm.DB, ownerID uint, now time.Time) (Dashboard, error) {
	var practice []study.PracticeTestResult
	var writing []study.WritingTaskResult
	var cards []study.FlashcardSetProgress

	if err := db.Preload("PracticeTest").Where("owner_id = ?", ownerID).Order("taken_at DESC").Find(&practice).Error; err != nil {
		return Dashboard{}, err
	}
	if err := db.Preload("WritingTask").Where("owner_id = ?", ownerID).Order("taken_at DESC").Find(&writing).Error; err != nil {
		return Dashboard{}, err
	}
	if err := db.Preload("FlashcardSet").Where("owner_id = ?", ownerID).Order("last_reviewed DESC").Find(&cards).Error; err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalPractice:   len(practice),
		TotalWriting:    len(writing),
		TotalFlashcards: len(cards),
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	counts := map[string]int{}
	bump := func(t time.Time) { counts[t.UTC().Format(time.DateOnly)]++ }

	recent := []RecentActivity{}
	for _, r := range practice {
		bump(r.TakenAt)
		score := r.Score
		recent = append(recent, RecentActivity{Type: "Practice Test", Name: r.PracticeTest.Title, Date: r.TakenAt, Score: &score})
	}
	for _, r := range writing {
		bump(r.TakenAt)
		score := r.Score
		recent = append(recent, RecentActivity{Type: "Writing Task", Name: r.WritingTask.Title, Date: r.TakenAt, Score: &score})
	}
	for _, p := range cards {
		bump(p.LastReviewed)
		recent = append(recent, RecentActivity{Type: "Flashcards", Name: p.FlashcardSet.Title, Date: p.LastReviewed})
	}

	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		d.Weekly = append(d.Weekly, DayCount{Date: day, Count: counts[day]})
	}

	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	d.Recent = recent
	return d, nil
}

type PracticePoint struct {
	Score float64 `json:"score"`
	Date  string  `json:"date"`
}

type WritingPoint struct {
	Score  float64 `json:"score"`
	Length int     `json:"length"`
	Date   string  `json:"date"`
}

// RecentResults returns the latest results used to build AI insights.
func RecentResults(db *gorm.DB, ownerID uint) ([]PracticePoint, []WritingPoint, error) {
	var practice []study.PracticeTestResult
	var writing []study.WritingTaskResult
	if err := db.Where("owner_id = ?", ownerID).Order("taken_at DESC").Limit(insightsLimit).Find(&practice).Error; err != nil {
		return nil, nil, err
	}
	if err := db.Where("owner_id = ?", ownerID).Order("taken_at DESC").Limit(insightsLimit).Find(&writing).Error; err != nil {
		return nil, nil, err
	}

	pp := make([]PracticePoint, 0, len(practice))
	for _, r := range practice {
		pp = append(pp, PracticePoint{Score: r.Score, Date: r.TakenAt.UTC().Format(time.DateOnly)})
	}
	wp := make([]WritingPoint, 0, len(writing))
	for _, r := range writing {
		wp = append(wp, WritingPoint{Score: r.Score, Length: utf8.RuneCountInString(r.Content), Date: r.TakenAt.UTC().Format(time.DateOnly)})
	}
	return pp, wp, nil
}
