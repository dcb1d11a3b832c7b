package programs

import (
	"errors"
	"net/http"
	"strconv"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/programs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type activityBody struct {
	Kind      string `json:"kind" binding:"required"`
	ContentID string `json:"content_id" binding:"required"`
}

type weekBody struct {
	WeekNumber int            `json:"week_number" binding:"required"`
	Title      string         `json:"title"`
	Notes      string         `json:"notes"`
	Tips       string         `json:"tips"`
	Activities []activityBody `json:"activities" binding:"dive"`
}

type createProgramBody struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Subject     string     `json:"subject"`
	Icon        string     `json:"icon"`
	Weeks       []weekBody `json:"weeks" binding:"dive"`
}

func programID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid program id")
		return 0, false
	}
	return uint(id), true
}

// GET /programs
func (h *Handler) ListPrograms(c *gin.Context) {
	list, err := programs.List(h.db)
	if err != nil {
		respond.Internal(c, err, "Failed to load programs")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /programs/:id
func (h *Handler) GetProgram(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}
	p, err := programs.Get(h.db, id)
	if err != nil {
		respond.Lookup(c, err, "Program")
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /admin/programs
func (h *Handler) CreateProgram(c *gin.Context) {
	var body createProgramBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}

	p := programs.Program{Title: body.Title, Description: body.Description, Subject: body.Subject, Icon: body.Icon}
	for _, w := range body.Weeks {
		week := programs.Week{WeekNumber: w.WeekNumber, Title: w.Title, Notes: w.Notes, Tips: w.Tips}
		for _, a := range w.Activities {
			week.Activities = append(week.Activities, programs.Activity{Kind: a.Kind, ContentID: a.ContentID})
		}
		p.Weeks = append(p.Weeks, week)
	}

	if err := programs.Create(h.db, &p); err != nil {
		if errors.Is(err, programs.ErrInvalid) {
			respond.BadRequest(c, err)
			return
		}
		respond.Internal(c, err, "Failed to create program")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// DELETE /admin/programs/:id
func (h *Handler) DeleteProgram(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}
	if err := programs.Delete(h.db, id); err != nil {
		respond.Lookup(c, err, "Program")
		return
	}
	c.Status(http.StatusNoContent)
}
