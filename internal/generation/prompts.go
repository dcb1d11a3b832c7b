package generation

import (
	"fmt"
	"strings"
)

const (
	KindPracticeTest = "practice_test"
	KindFlashcards   = "flashcards"
)

const generationSystemPrompt = "You are a helpful assistant that creates educational content in valid JSON format. " +
	"Return only JSON. Avoid extra text."

const practiceTestSchema = `
    PracticeTest:
    - title (string)
    - description (string)
    - subject (string)
    - duration (integer, minutes)
    - difficulty (string: Easy, Medium, Hard)
    - questions (array of Question objects)

    Question:
    - text (string)
    - question_type (string: "mcq", "text", or "tf")
    - subject (string)
    - answer (string)
    - explanation (string)
    - options (array of Option objects, only if question_type is "mcq")

    Option:
    - text (string)
    - is_correct (boolean)
`

const flashcardSchema = `
    FlashcardSet:
    - title (string)
    - description (string)
    - subject (string)
    - difficulty (string: Easy, Medium, Hard)

    Flashcard:
    - front (string)
    - back (string)
`

const practiceTestExample = `{
    "title": "Biology Basics Test 2",
    "description": "A short test on fundamental biology concepts.",
    "subject": "Biology",
    "duration": 25,
    "difficulty": "Medium",
    "is_public": true,
    "questions": [
        {
            "text": "What is the powerhouse of the cell?",
            "question_type": "mcq",
            "subject": "Biology",
            "answer": "Mitochondria",
            "explanation": "Mitochondria produce ATP through cellular respiration.",
            "options": [
                {"text": "Nucleus", "is_correct": false},
                {"text": "Mitochondria", "is_correct": true},
                {"text": "Ribosome", "is_correct": false},
                {"text": "Chloroplast", "is_correct": false}
            ]
        }
    ]
}`

const flashcardExample = `{
    "title": "Biology Basics",
    "description": "A set of flashcards covering fundamental biology concepts.",
    "difficulty": "Medium",
    "flashcards": [
        {"front": "What is the powerhouse of the cell?", "back": "Mitochondria"},
        {"front": "DNA is composed of what molecules?", "back": "Nucleotides"},
        {"front": "What organelles are responsible for photosynthesis?", "back": "Chloroplasts"},
        {"front": "Which blood cells carry oxygen?", "back": "Red blood cells"},
        {"front": "What process do plants use to make food?", "back": "Photosynthesis"}
    ]
}`

func validKind(kind string) bool {
	return kind == KindPracticeTest || kind == KindFlashcards
}

// BuildPrompt embeds the schema and a worked example for kind and asks for exactly amount items.
func BuildPrompt(kind, prompt string, amount int, difficulty, fileText string) string {
	word, schema, example := "questions", practiceTestSchema, practiceTestExample
	if kind == KindFlashcards {
		word, schema, example = "flashcards", flashcardSchema, flashcardExample
	}

	full := strings.TrimSpace(prompt)
	if fileText != "" {
		full += "\n\nUse the following file content as context:\n" + fileText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a JSON-generating AI. Your task is to create exactly %d %s\n", amount, word)
	fmt.Fprintf(&b, "based on the following description:\n\n%s\n\n", full)
	fmt.Fprintf(&b, "Difficulty: %s.\n\n", difficulty)
	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("1. Only return raw JSON. No Markdown, no text, no code fences.\n")
	fmt.Fprintf(&b, "2. JSON MUST strictly match the following schema:\n%s\n", schema)
	fmt.Fprintf(&b, "3. Use the example JSON format exactly as a reference for structure, nesting, and key names:\n\n%s\n\n", example)
	b.WriteString("4. Do not include IDs, timestamps, or any extra fields. Only the keys in the schema.\n")
	b.WriteString("5. Make sure all required fields are present and correctly typed (string, integer, boolean, array).\n\n")
	b.WriteString("Return the JSON as a single valid object.\n")
	return b.String()
}

func gradingPrompt(prompt, gradingLevel, content string) string {
	return fmt.Sprintf("You are grading a student essay.\n"+
		"The essay prompt was: %q.\n"+
		"Grading strictness level: %s.\n\n"+
		"Essay content:\n%s\n\n"+
		"Provide JSON with: - 'score' (0-100) and - 'feedback' (detailed constructive feedback).",
		prompt, gradingLevel, content)
}
