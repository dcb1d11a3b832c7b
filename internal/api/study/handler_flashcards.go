package study

import (
	"net/http"
	"strconv"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/study"

	"github.com/gin-gonic/gin"
)

// GET /flashcard-sets
func (h *Handler) ListFlashcardSets(c *gin.Context) {
	sets, err := study.ListFlashcardSets(h.db, respond.UserID(c))
	if err != nil {
		respond.Internal(c, err, "Failed to load flashcard sets")
		return
	}
	c.JSON(http.StatusOK, sets)
}

// GET /flashcard-sets/:id
func (h *Handler) GetFlashcardSet(c *gin.Context) {
	set, err := study.GetFlashcardSet(h.db, c.Param("id"), respond.UserID(c))
	if err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	c.JSON(http.StatusOK, set)
}

// DELETE /flashcard-sets/:id
func (h *Handler) DeleteFlashcardSet(c *gin.Context) {
	if err := study.DeleteFlashcardSet(h.db, c.Param("id"), respond.UserID(c)); err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /flashcard-sets/:id/reset?mode=study|regular
func (h *Handler) ResetFlashcards(c *gin.Context) {
	mode := c.DefaultQuery("mode", study.ModeRegular)
	if mode != study.ModeStudy && mode != study.ModeRegular {
		respond.Error(c, http.StatusBadRequest, "mode must be study or regular")
		return
	}
	progress, err := study.ResetSession(h.db, respond.UserID(c), c.Param("id"), mode)
	if err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": mode, "progress": progress})
}

// POST /flashcard-sets/:id/answer
func (h *Handler) AnswerFlashcard(c *gin.Context) {
	var body struct {
		Known *bool `json:"known" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}
	res, err := study.AnswerFlashcard(h.db, respond.UserID(c), c.Param("id"), *body.Known)
	if err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /flashcard-sets/:id/summary
func (h *Handler) FlashcardSummary(c *gin.Context) {
	s, err := study.SessionSummary(h.db, respond.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	c.JSON(http.StatusOK, s)
}

// GET /flashcard-sets/:id/navigate?index=N&direction=next|prev
func (h *Handler) NavigateFlashcards(c *gin.Context) {
	index, err := strconv.Atoi(c.DefaultQuery("index", "0"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "index must be a number")
		return
	}
	set, err := study.GetFlashcardSet(h.db, c.Param("id"), respond.UserID(c))
	if err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	index, card, err := study.Navigate(*set, index, c.Query("direction"))
	if err != nil {
		fail(c, err, "Flashcard set")
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "total": len(set.Flashcards), "card": card})
}
