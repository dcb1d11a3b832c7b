package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	studyapi "study-platform/internal/api/study"
	"study-platform/internal/domain/study"
	"study-platform/internal/domain/users"
	"study-platform/internal/testdb"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var secret = []byte("routes-secret")

type capturingGrader struct{ content string }

func (g *capturingGrader) GradeEssay(_ context.Context, _ uint, _ study.WritingTask, content string) (int, string) {
	g.content = content
	return 60, "Readable."
}

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB, *capturingGrader, users.User, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testdb.New(t, append([]any{&users.User{}}, study.Models()...)...)

	u := users.User{Email: "writer@example.com"}
	if err := users.Create(db, &u); err != nil {
		t.Fatal(err)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    "user",
	}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}

	grader := &capturingGrader{}
	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:        db,
		JWTSecret: secret,
		Study:     studyapi.NewHandler(db, grader, nil, false),
	})
	return r, db, grader, u, token
}

func postJSON(r *gin.Engine, path, token string, body any) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEssaySubmissionKeepsAngleBrackets(t *testing.T) {
	r, db, grader, u, token := newRouter(t)

	task := study.WritingTask{Activity: study.Activity{OwnerID: u.ID, Title: "Notation"}, Prompt: "Explain generics."}
	if err := study.CreateWritingTask(db, &task); err != nil {
		t.Fatal(err)
	}

	essay := "Write x <y> z for a list of y, and note that a < b."
	w := postJSON(r, "/writing-tasks/"+task.ID+"/submit", token, map[string]string{"content": essay})
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d body=%s", w.Code, w.Body)
	}
	if grader.content != essay {
		t.Fatalf("grader got %q want %q", grader.content, essay)
	}

	var stored study.WritingTaskResult
	if err := db.Where("writing_task_id = ?", task.ID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Content != essay {
		t.Fatalf("stored %q want %q", stored.Content, essay)
	}
}

func TestEssaySubmissionRequiresToken(t *testing.T) {
	r, _, _, _, _ := newRouter(t)
	w := postJSON(r, "/writing-tasks/abc/submit", "not-a-token", map[string]string{"content": "text"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestWritingTaskCreationStillStripsMarkup(t *testing.T) {
	r, db, _, u, token := newRouter(t)

	w := postJSON(r, "/writing-tasks", token, map[string]string{
		"title":  "<b>Essay</b> one",
		"prompt": "Describe <script>alert(1)</script>your day.",
	})
	if w.Code >= http.StatusBadRequest {
		t.Fatalf("create = %d body=%s", w.Code, w.Body)
	}

	var task study.WritingTask
	if err := db.Where("owner_id = ?", u.ID).First(&task).Error; err != nil {
		t.Fatal(err)
	}
	if task.Title != "Essay one" || task.Prompt != "Describe your day." {
		t.Fatalf("markup kept: title=%q prompt=%q", task.Title, task.Prompt)
	}
}
