// Package study serves the owner-scoped study content: practice tests, writing
// tasks, flashcard sets and the tutor chat.
package study

import (
	"context"
	"errors"
	"net/http"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/study"
	"study-platform/internal/generation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Tutor answers free-form questions about a writing prompt.
type Tutor interface {
	Chat(ctx context.Context, userID uint, message, essayPrompt string) (*generation.ChatReply, error)
}

type Handler struct {
	db     *gorm.DB
	grader study.EssayGrader
	tutor  Tutor
	detail bool
}

// NewHandler wires the content endpoints. detail exposes upstream error text.
func NewHandler(db *gorm.DB, grader study.EssayGrader, tutor Tutor, detail bool) *Handler {
	return &Handler{db: db, grader: grader, tutor: tutor, detail: detail}
}

// fail maps domain errors onto status codes.
func fail(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, study.ErrInvalid), errors.Is(err, study.ErrNoSession):
		respond.BadRequest(c, err)
	default:
		respond.Lookup(c, err, what)
	}
}

// GET /practice-tests
func (h *Handler) ListPracticeTests(c *gin.Context) {
	tests, err := study.ListPracticeTests(h.db, respond.UserID(c))
	if err != nil {
		respond.Internal(c, err, "Failed to load practice tests")
		return
	}
	c.JSON(http.StatusOK, tests)
}

// GET /practice-tests/:id
func (h *Handler) GetPracticeTest(c *gin.Context) {
	t, err := study.GetPracticeTest(h.db, c.Param("id"), respond.UserID(c))
	if err != nil {
		fail(c, err, "Practice test")
		return
	}
	c.JSON(http.StatusOK, t)
}

// DELETE /practice-tests/:id
func (h *Handler) DeletePracticeTest(c *gin.Context) {
	if err := study.DeletePracticeTest(h.db, c.Param("id"), respond.UserID(c)); err != nil {
		fail(c, err, "Practice test")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /practice-tests/:id/submit
func (h *Handler) SubmitPracticeTest(c *gin.Context) {
	var body struct {
		Answers map[string]string `json:"answers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}
	res, err := study.SubmitPracticeTest(h.db, respond.UserID(c), c.Param("id"), body.Answers)
	if err != nil {
		fail(c, err, "Practice test")
		return
	}
	c.JSON(http.StatusOK, res)
}
