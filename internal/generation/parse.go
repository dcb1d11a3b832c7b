package generation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

type generatedOption struct {
	Text      string   `json:"text"`
	IsCorrect flexBool `json:"is_correct"`
}

type generatedQuestion struct {
	Text         string            `json:"text"`
	QuestionType string            `json:"question_type"`
	Subject      string            `json:"subject"`
	Answer       string            `json:"answer"`
	Explanation  string            `json:"explanation"`
	Options      []generatedOption `json:"options"`
}

type generatedFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type generatedActivity struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Subject     string               `json:"subject"`
	Duration    flexInt              `json:"duration"`
	Difficulty  string               `json:"difficulty"`
	IsPublic    *flexBool            `json:"is_public"`
	Questions   []generatedQuestion  `json:"questions"`
	Flashcards  []generatedFlashcard `json:"flashcards"`
}

// flexInt accepts 25 and "25".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt(n)
	return nil
}

// flexBool accepts true and "true".
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(b)), `"`))
	switch s {
	case "true", "1", "yes":
		*f = true
	case "false", "0", "no", "", "null":
		*f = false
	default:
		return fmt.Errorf("not a boolean: %s", b)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// decodeLenient reads a JSON object, tolerating comments and trailing commas.
func decodeLenient(raw string, out any) error {
	body := stripFences(raw)
	if std, err := hujson.Standardize([]byte(body)); err == nil {
		if err := json.Unmarshal(std, out); err == nil {
			return nil
		}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// parseActivity decodes a generated activity. A top-level wrapper key such as
// {"PracticeTest": {...}} is unwrapped.
func parseActivity(raw string) (generatedActivity, error) {
	var top map[string]json.RawMessage
	if err := decodeLenient(raw, &top); err != nil {
		return generatedActivity{}, err
	}
	if top == nil {
		return generatedActivity{}, fmt.Errorf("%w: expected an object", ErrParse)
	}

	for _, key := range []string{"PracticeTest", "FlashcardSet"} {
		if inner, ok := top[key]; ok && len(top) == 1 {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(inner, &nested); err == nil && nested != nil {
				top = nested
			}
			break
		}
	}

	body, err := json.Marshal(top)
	if err != nil {
		return generatedActivity{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	var act generatedActivity
	if err := json.Unmarshal(body, &act); err != nil {
		return generatedActivity{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return act, nil
}

type essayVerdict struct {
	Score    flexInt `json:"score"`
	Feedback string  `json:"feedback"`
}
