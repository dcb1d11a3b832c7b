package study

import "strings"

var difficultyPoints = map[string]int{
	"easy":       10,
	"medium":     20,
	"hard":       30,
	"ultra-hard": 50,
}

const (
	defaultDifficultyPoints = 10
	minTimePoints           = 5
	maxTimePoints           = 100
	pointsPerQuestion       = 2
	maxQuestionPoints       = 100
)

// ScoringProfile is what an activity contributes to the points formula.
type ScoringProfile struct {
	Difficulty    string
	Duration      int
	QuestionCount int
}

func (t PracticeTest) ScoringProfile() ScoringProfile {
	return ScoringProfile{Difficulty: t.Difficulty, Duration: t.Duration, QuestionCount: len(t.Questions)}
}

func (t WritingTask) ScoringProfile() ScoringProfile {
	return ScoringProfile{Difficulty: t.Difficulty, Duration: t.Duration}
}

// CalculatePoints awards points for a finished activity. A score of zero earns nothing.
func CalculatePoints(p ScoringProfile, score int) int {
	if score == 0 {
		return 0
	}

	diff, ok := difficultyPoints[strings.ToLower(strings.TrimSpace(p.Difficulty))]
	if !ok {
		diff = defaultDifficultyPoints
	}

	timePoints := min(max(p.Duration, minTimePoints), maxTimePoints)
	questionPoints := min(p.QuestionCount*pointsPerQuestion, maxQuestionPoints)

	return diff + timePoints + score + questionPoints
}
