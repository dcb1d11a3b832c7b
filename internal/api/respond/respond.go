// Package respond holds the JSON error conventions shared by the API handlers.
package respond

import (
	"errors"
	"log"
	"net/http"

	"study-platform/database"

	"github.com/gin-gonic/gin"
)

// UserID returns the authenticated user set by the JWT middleware, or 0.
func UserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}

func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, err.Error())
}

// Lookup writes 404 for ownership misses and 500 for anything else.
func Lookup(c *gin.Context, err error, what string) {
	if errors.Is(err, database.ErrNotFound) {
		Error(c, http.StatusNotFound, what+" not found")
		return
	}
	Internal(c, err, "Failed to load "+what)
}

func Internal(c *gin.Context, err error, msg string) {
	log.Printf("[api] %s %s: %s err=%v", c.Request.Method, c.FullPath(), msg, err)
	Error(c, http.StatusInternalServerError, msg)
}

// Upstream reports a provider failure. The raw error is included only when detail is true.
func Upstream(c *gin.Context, err error, msg string, detail bool) {
	log.Printf("[api] %s %s: %s err=%v", c.Request.Method, c.FullPath(), msg, err)
	body := gin.H{"error": msg}
	if detail {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadGateway, body)
}
