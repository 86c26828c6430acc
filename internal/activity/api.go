package activity

import (
	"net/http"
	"strconv"

	"github.com/demoforge/demoforge/internal/apierr"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes exposes the per-tenant activity feed.
func (l *Logger) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/demos/:id/activity", l.listActivity)
}

func (l *Logger) listActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierr.Respond(c, apierr.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}
	events, err := l.List(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if events == nil {
		events = []Event{}
	}
	c.JSON(http.StatusOK, gin.H{"activity": events})
}
