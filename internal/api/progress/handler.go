package progress

import (
	"context"
	"errors"
	"net/http"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/progress"
	"study-platform/internal/domain/users"
	"study-platform/internal/generation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Advisor turns recent results into study advice.
type Advisor interface {
	Insights(ctx context.Context, userID uint) (*generation.Insights, error)
}

type Handler struct {
	db      *gorm.DB
	advisor Advisor
	detail  bool
	now     func() time.Time
}

func NewHandler(db *gorm.DB, advisor Advisor, detail bool) *Handler {
	return &Handler{db: db, advisor: advisor, detail: detail, now: time.Now}
}

type SummaryResponse struct {
	Practice   progress.PracticeSummary  `json:"practice_tests"`
	Writing    progress.WritingSummary   `json:"writing_tasks"`
	Flashcards progress.FlashcardSummary `json:"flashcards"`
}

// GET /progress
func (h *Handler) Summary(c *gin.Context) {
	uid := respond.UserID(c)
	var resp SummaryResponse
	var err error
	if resp.Practice, err = progress.Practice(h.db, uid); err != nil {
		respond.Internal(c, err, "Failed to load practice progress")
		return
	}
	if resp.Writing, err = progress.Writing(h.db, uid); err != nil {
		respond.Internal(c, err, "Failed to load writing progress")
		return
	}
	if resp.Flashcards, err = progress.Flashcards(h.db, uid); err != nil {
		respond.Internal(c, err, "Failed to load flashcard progress")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := progress.BuildDashboard(h.db, respond.UserID(c), h.now())
	if err != nil {
		respond.Internal(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /progress/insights
func (h *Handler) Insights(c *gin.Context) {
	ins, err := h.advisor.Insights(c.Request.Context(), respond.UserID(c))
	if err != nil {
		if errors.Is(err, generation.ErrUpstream) {
			respond.Upstream(c, err, "Insights are unavailable right now", h.detail)
			return
		}
		respond.Internal(c, err, "Failed to build insights")
		return
	}
	c.JSON(http.StatusOK, ins)
}

// GET /achievements
func (h *Handler) Achievements(c *gin.Context) {
	uid := respond.UserID(c)
	u, err := users.FindByID(h.db, uid)
	if err != nil {
		respond.Internal(c, err, "Failed to load user")
		return
	}
	board, err := progress.Achievements(h.db, uid, u.Points, h.now())
	if err != nil {
		respond.Internal(c, err, "Failed to load achievements")
		return
	}
	c.JSON(http.StatusOK, board)
}
