package study

import (
	"net/http"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/study"

	"github.com/gin-gonic/gin"
)

type createWritingTaskBody struct {
	Title        string `json:"title" binding:"required"`
	Prompt       string `json:"prompt" binding:"required"`
	Description  string `json:"description"`
	Subject      string `json:"subject"`
	Difficulty   string `json:"difficulty"`
	GradingLevel string `json:"grading_level"`
	Duration     int    `json:"duration"`
	MinWordCount int    `json:"min_word_count"`
	MaxWordCount int    `json:"max_word_count"`
	IsPublic     bool   `json:"is_public"`
}

// GET /writing-tasks
func (h *Handler) ListWritingTasks(c *gin.Context) {
	tasks, err := study.ListWritingTasks(h.db, respond.UserID(c))
	if err != nil {
		respond.Internal(c, err, "Failed to load writing tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// POST /writing-tasks
func (h *Handler) CreateWritingTask(c *gin.Context) {
	var body createWritingTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}

	task := study.WritingTask{
		Activity: study.Activity{
			OwnerID:     respond.UserID(c),
			Title:       body.Title,
			Description: body.Description,
			Subject:     body.Subject,
			Difficulty:  body.Difficulty,
			Duration:    body.Duration,
			IsPublic:    body.IsPublic,
		},
		Prompt:       body.Prompt,
		GradingLevel: body.GradingLevel,
		MinWordCount: body.MinWordCount,
		MaxWordCount: body.MaxWordCount,
	}
	if err := study.CreateWritingTask(h.db, &task); err != nil {
		fail(c, err, "Writing task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GET /writing-tasks/:id
func (h *Handler) GetWritingTask(c *gin.Context) {
	task, err := study.GetWritingTask(h.db, c.Param("id"), respond.UserID(c))
	if err != nil {
		fail(c, err, "Writing task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /writing-tasks/:id
func (h *Handler) DeleteWritingTask(c *gin.Context) {
	if err := study.DeleteWritingTask(h.db, c.Param("id"), respond.UserID(c)); err != nil {
		fail(c, err, "Writing task")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /writing-tasks/:id/submit grades the essay and stores the result.
func (h *Handler) SubmitEssay(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}
	res, err := study.SubmitEssay(c.Request.Context(), h.db, h.grader, respond.UserID(c), c.Param("id"), body.Content)
	if err != nil {
		fail(c, err, "Writing task")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /writing-results/:id
func (h *Handler) GetWritingResult(c *gin.Context) {
	res, err := study.GetWritingResult(h.db, c.Param("id"), respond.UserID(c))
	if err != nil {
		fail(c, err, "Writing result")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "task": res.WritingTask})
}
