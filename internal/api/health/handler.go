package health

import (
	"log"
	"net/http"

	"study-platform/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GET /health
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /ready reports 503 while the database is unreachable.
func (h *Handler) Ready(c *gin.Context) {
	if err := database.Ping(h.db); err != nil {
		log.Printf("[api] readiness check failed err=%v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
