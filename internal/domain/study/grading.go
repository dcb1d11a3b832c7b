package study

import (
	"math"
	"strings"
)

type TypoWarning struct {
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Similarity    int    `json:"similarity"`
}

type AnswerResult struct {
	QuestionID  string       `json:"question_id"`
	UserAnswer  string       `json:"user_answer"`
	IsCorrect   bool         `json:"is_correct"`
	Explanation string       `json:"explanation,omitempty"`
	Typo        *TypoWarning `json:"typo_warning,omitempty"`
}

type Grade struct {
	Score   int            `json:"score"`
	Correct int            `json:"correct_answers"`
	Total   int            `json:"total_questions"`
	Answers []AnswerResult `json:"answers"`
	Typos   []TypoWarning  `json:"potential_typos"`
}

// GradeQuestion checks one answer. Choice questions compare option ids, true/false
// compares case-insensitively and free text uses the similarity ratio.
func GradeQuestion(q Question, answer string) (bool, *TypoWarning) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, nil
	}

	switch strings.ToLower(q.QuestionType) {
	case QuestionMCQ, "multiple choice":
		for _, o := range q.Options {
			if o.IsCorrect {
				return o.ID == answer, nil
			}
		}
		return false, nil

	case QuestionTF, "true/false":
		return strings.EqualFold(answer, strings.TrimSpace(q.Answer)), nil

	case QuestionText:
		if q.Answer == "" {
			return false, nil
		}
		matched, ratio := IsSimilarAnswer(q.Answer, answer)
		if matched && ratio < 100 {
			return true, &TypoWarning{
				QuestionID:    q.ID,
				Question:      q.Text,
				UserAnswer:    answer,
				CorrectAnswer: q.Answer,
				Similarity:    ratio,
			}
		}
		return matched, nil
	}
	return false, nil
}

// GradeTest grades answers keyed by question id. Unanswered questions count as wrong.
func GradeTest(t PracticeTest, answers map[string]string) Grade {
	g := Grade{Total: len(t.Questions), Answers: []AnswerResult{}, Typos: []TypoWarning{}}

	for _, q := range t.Questions {
		ans := answers[q.ID]
		ok, typo := GradeQuestion(q, ans)
		if ok {
			g.Correct++
		}
		if typo != nil {
			g.Typos = append(g.Typos, *typo)
		}
		if strings.TrimSpace(ans) == "" {
			ans = "(no answer)"
		}
		g.Answers = append(g.Answers, AnswerResult{
			QuestionID:  q.ID,
			UserAnswer:  ans,
			IsCorrect:   ok,
			Explanation: q.Explanation,
			Typo:        typo,
		})
	}

	if g.Total > 0 {
		g.Score = int(math.Round(float64(g.Correct) / float64(g.Total) * 100))
	}
	return g
}
