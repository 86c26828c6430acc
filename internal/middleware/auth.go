package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authentication is a placeholder global middleware. It currently allows all
// requests; tenant auth is enforced upstream by the hosting platform.
func Authentication(c *gin.Context) {
	c.Next()
}

// RequestID attaches a request id to the context and response headers.
func RequestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header("X-Request-ID", id)
	c.Next()
}
