package study

import "testing"

func TestCalculatePointsZeroScoreIsZero(t *testing.T) {
	for _, diff := range []string{"", "easy", "Medium", "hard", "ultra-hard", "unknown"} {
		for _, dur := range []int{-5, 0, 1, 30, 500} {
			for _, qc := range []int{0, 1, 10, 80} {
				p := ScoringProfile{Difficulty: diff, Duration: dur, QuestionCount: qc}
				if got := CalculatePoints(p, 0); got != 0 {
					t.Fatalf("CalculatePoints(%+v, 0) = %d, want 0", p, got)
				}
			}
		}
	}
}

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name  string
		p     ScoringProfile
		score int
		want  int
	}{
		{"medium test", ScoringProfile{Difficulty: "Medium", Duration: 30, QuestionCount: 10}, 80, 20 + 30 + 80 + 20},
		{"unknown difficulty", ScoringProfile{Difficulty: "weird", Duration: 30}, 50, 10 + 30 + 50},
		{"short duration floor", ScoringProfile{Difficulty: "easy", Duration: 1}, 10, 10 + 5 + 10},
		{"long duration cap", ScoringProfile{Difficulty: "hard", Duration: 300}, 10, 30 + 100 + 10},
		{"question cap", ScoringProfile{Difficulty: "ultra-hard", Duration: 10, QuestionCount: 70}, 100, 50 + 10 + 100 + 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculatePoints(tt.p, tt.score); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoringProfiles(t *testing.T) {
	pt := PracticeTest{Activity: Activity{Difficulty: "hard", Duration: 20}, Questions: make([]Question, 3)}
	if p := pt.ScoringProfile(); p.QuestionCount != 3 || p.Difficulty != "hard" || p.Duration != 20 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	wt := WritingTask{Activity: Activity{Difficulty: "easy", Duration: 45}}
	if p := wt.ScoringProfile(); p.QuestionCount != 0 || p.Duration != 45 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}
