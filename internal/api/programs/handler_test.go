package programs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"study-platform/internal/domain/programs"
	"study-platform/internal/domain/study"
	"study-platform/internal/testdb"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testdb.New(t, append(study.Models(), programs.Models()...)...)
	h := NewHandler(db)

	r := gin.New()
	r.GET("/programs", h.ListPrograms)
	r.GET("/programs/:id", h.GetProgram)
	r.POST("/admin/programs", h.CreateProgram)
	r.DELETE("/admin/programs/:id", h.DeleteProgram)
	return r, db
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProgramLifecycle(t *testing.T) {
	r, db := setup(t)
	task := study.WritingTask{Activity: study.Activity{OwnerID: 1, Title: "Essay"}, Prompt: "Discuss."}
	if err := db.Create(&task).Error; err != nil {
		t.Fatal(err)
	}

	w := do(r, http.MethodPost, "/admin/programs", map[string]any{
		"title": "Writing month",
		"weeks": []map[string]any{
			{"week_number": 1, "title": "Structure", "activities": []map[string]any{
				{"kind": programs.KindWritingTask, "content_id": task.ID},
			}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d body=%s", w.Code, w.Body)
	}
	var created programs.Program
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = do(r, http.MethodGet, "/programs", nil)
	var list []programs.Program
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 1 || list[0].Duration != 1 {
		t.Fatalf("list = %d %s", w.Code, w.Body)
	}

	w = do(r, http.MethodGet, "/programs/"+strconv.FormatUint(uint64(created.ID), 10), nil)
	var got programs.Program
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || len(got.Weeks) != 1 || got.Weeks[0].Activities[0].ContentID != task.ID {
		t.Fatalf("get = %d %s", w.Code, w.Body)
	}

	if w := do(r, http.MethodDelete, "/admin/programs/"+strconv.FormatUint(uint64(created.ID), 10), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/programs/"+strconv.FormatUint(uint64(created.ID), 10), nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", w.Code)
	}
}

func TestCreateProgramValidation(t *testing.T) {
	r, _ := setup(t)

	if w := do(r, http.MethodPost, "/admin/programs", map[string]any{"description": "no title"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing title = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/admin/programs", map[string]any{
		"title": "Broken",
		"weeks": []map[string]any{{"week_number": 1, "activities": []map[string]any{
			{"kind": programs.KindPracticeTest, "content_id": "missing"},
		}}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing content = %d body=%s", w.Code, w.Body)
	}
	if w := do(r, http.MethodGet, "/programs/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", w.Code)
	}
}
