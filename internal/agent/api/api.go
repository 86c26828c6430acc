package api

import (
	"errors"
	"net/http"
	"strconv"

	adb "github.com/demoforge/demoforge/internal/agent/database"
	"github.com/demoforge/demoforge/internal/agent/model"
	"github.com/demoforge/demoforge/internal/agent/service"
	"github.com/demoforge/demoforge/internal/apierr"
	demodb "github.com/demoforge/demoforge/internal/demo/database"
	"github.com/gin-gonic/gin"
)

type Api struct {
	svc *service.Service
}

func New(svc *service.Service) *Api { return &Api{svc: svc} }

func (a *Api) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/tools/:tool", a.dispatch)
	r.GET("/v1/demos/:id/content", a.listContent)
	r.GET("/v1/tools", a.listTools)
}

func (a *Api) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": model.AllToolKinds()})
}

type dispatchRequest struct {
	DemoID string `json:"demo_id" binding:"required"`
}

func (a *Api) dispatch(c *gin.Context) {
	tool, err := model.ParseToolKind(c.Param("tool"))
	if err != nil {
		apierr.Respond(c, apierr.BadRequest(err.Error()))
		return
	}
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}
	gc, err := a.svc.Dispatch(c.Request.Context(), req.DemoID, tool)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDemoNotFound):
			apierr.Respond(c, apierr.NotFound("demo not found"))
		case errors.Is(err, service.ErrLLMNotConfigured):
			apierr.Respond(c, apierr.ServiceUnavailable("llm not available"))
		case errors.Is(err, demodb.ErrNotConfigured), errors.Is(err, adb.ErrNotConfigured):
			apierr.Respond(c, apierr.ServiceUnavailable("storage not available"))
		default:
			apierr.Respond(c, apierr.Upstream("content generation failed", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": gc})
}

func (a *Api) listContent(c *gin.Context) {
	var tool model.ToolKind
	if raw := c.Query("tool"); raw != "" {
		t, err := model.ParseToolKind(raw)
		if err != nil {
			apierr.Respond(c, apierr.BadRequest(err.Error()))
			return
		}
		tool = t
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierr.Respond(c, apierr.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}
	items, err := a.svc.Content.ListContent(c.Request.Context(), c.Param("id"), tool, limit)
	if err != nil {
		if errors.Is(err, adb.ErrNotConfigured) {
			apierr.Respond(c, apierr.ServiceUnavailable("storage not available"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if items == nil {
		items = []model.GeneratedContent{}
	}
	c.JSON(http.StatusOK, gin.H{"content": items})
}
