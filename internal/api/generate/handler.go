package generate

import (
	"context"
	"errors"
	"net/http"

	"study-platform/internal/api/respond"
	"study-platform/internal/generation"
	"study-platform/internal/infra/docs"

	"github.com/gin-gonic/gin"
)

// Generator produces and stores study content for a user.
type Generator interface {
	Generate(ctx context.Context, userID uint, in generation.GenerateRequest) (*generation.Result, error)
}

type Handler struct {
	gen    Generator
	detail bool
}

func NewHandler(gen Generator, detail bool) *Handler {
	return &Handler{gen: gen, detail: detail}
}

type generateForm struct {
	Type       string `form:"type" binding:"required"`
	Prompt     string `form:"prompt"`
	Amount     int    `form:"amount"`
	Difficulty string `form:"difficulty"`
	Duration   int    `form:"duration"`
}

// POST /generate accepts multipart or urlencoded forms with an optional "file" upload.
func (h *Handler) Generate(c *gin.Context) {
	var form generateForm
	if err := c.ShouldBind(&form); err != nil {
		respond.BadRequest(c, err)
		return
	}

	fileText, err := uploadedText(c)
	if err != nil {
		respond.BadRequest(c, err)
		return
	}

	res, err := h.gen.Generate(c.Request.Context(), respond.UserID(c), generation.GenerateRequest{
		Kind:       form.Type,
		Prompt:     form.Prompt,
		Amount:     form.Amount,
		Difficulty: form.Difficulty,
		Duration:   form.Duration,
		FileText:   fileText,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, res)
	case generation.IsClientError(err):
		respond.BadRequest(c, err)
	case errors.Is(err, generation.ErrParse):
		respond.Upstream(c, err, "AI returned content that could not be read. Please try again.", h.detail)
	case errors.Is(err, generation.ErrUpstream):
		respond.Upstream(c, err, "Content generation is unavailable right now", h.detail)
	default:
		respond.Internal(c, err, "Failed to save generated content")
	}
}

// uploadedText returns the extracted text of the optional "file" field.
func uploadedText(c *gin.Context) (string, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if fh.Size > docs.MaxUploadSize {
		return "", docs.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return docs.Extract(fh.Filename, f)
}
