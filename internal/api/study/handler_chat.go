package study

import (
	"errors"
	"net/http"

	"study-platform/internal/api/respond"
	"study-platform/internal/generation"

	"github.com/gin-gonic/gin"
)

// POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var body struct {
		Message     string `json:"message"`
		EssayPrompt string `json:"essay_prompt"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}

	reply, err := h.tutor.Chat(c.Request.Context(), respond.UserID(c), body.Message, body.EssayPrompt)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, reply)
	case errors.Is(err, generation.ErrEmptyPrompt):
		respond.Error(c, http.StatusBadRequest, "Message is required")
	case errors.Is(err, generation.ErrInsufficientCredits):
		respond.Error(c, http.StatusPaymentRequired, "Not enough AI credits")
	case errors.Is(err, generation.ErrUpstream):
		respond.Upstream(c, err, "AI tutor is unavailable", h.detail)
	default:
		respond.Internal(c, err, "Failed to answer")
	}
}
