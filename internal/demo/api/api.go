// Package api exposes tenant (demo) management and the per-site business
// context over HTTP.
package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/demoforge/demoforge/internal/apierr"
	"github.com/demoforge/demoforge/internal/collector"
	"github.com/demoforge/demoforge/internal/demo/database"
	"github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/demo/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DemoStore is the persistence surface the handlers need. *database.Repo
// satisfies it; tests substitute a fake.
type DemoStore interface {
	CreateDemo(ctx context.Context, d *model.Demo) (created bool, out *model.Demo, err error)
	GetDemo(ctx context.Context, id string) (*model.Demo, error)
	ListDemos(ctx context.Context, limit int) ([]model.Demo, error)
	DeleteDemo(ctx context.Context, id string) error
}

// SeedFunc installs default alert configs for a freshly created tenant.
type SeedFunc func(ctx context.Context, demoID string) error

// ActivityRecorder mirrors tenant events into the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, demoID, action string, detail any)
}

type Api struct {
	repo     DemoStore
	contexts *service.ContextManager
	scraper  *collector.Scraper
	seed     SeedFunc
	activity ActivityRecorder
}

func New(repo DemoStore, contexts *service.ContextManager, scraper *collector.Scraper, seed SeedFunc, activity ActivityRecorder) *Api {
	return &Api{repo: repo, contexts: contexts, scraper: scraper, seed: seed, activity: activity}
}

func (a *Api) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/demos", a.createDemo)
	r.GET("/v1/demos", a.listDemos)
	r.GET("/v1/demos/:id", a.getDemo)
	r.DELETE("/v1/demos/:id", a.deleteDemo)

	r.GET("/v1/demos/:id/context", a.getContext)
	r.PUT("/v1/demos/:id/context", a.putContext)
	r.DELETE("/v1/demos/:id/context", a.deleteContext)
}

func (a *Api) createDemo(c *gin.Context) {
	var req model.CreateDemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}

	// best-effort scrape to prefill the profile; a dead site still gets a demo
	var scraped *collector.ScrapeResult
	if a.scraper != nil {
		res, err := a.scraper.Scrape(c.Request.Context(), req.WebsiteURL)
		if err != nil {
			log.Warn().Err(err).Str("url", req.WebsiteURL).Msg("site scrape failed; creating demo without prefill")
		} else {
			scraped = res
		}
	}
	if req.BusinessName == "" && scraped != nil && scraped.Title != "" {
		req.BusinessName = scraped.Title
	}

	demo := &model.Demo{
		WebsiteURL:   req.WebsiteURL,
		BusinessName: req.BusinessName,
		Industry:     req.Industry,
		City:         req.City,
		Region:       req.Region,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	created, stored, err := a.repo.CreateDemo(c.Request.Context(), demo)
	if err != nil {
		respondRepoErr(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"demo": stored, "existing": true})
		return
	}

	if a.seed != nil {
		if err := a.seed(c.Request.Context(), stored.ID); err != nil {
			log.Error().Err(err).Str("demo_id", stored.ID).Msg("seeding default alert configs failed")
		}
	}
	if a.contexts != nil && scraped != nil {
		bc := &model.BusinessContext{
			Name:        stored.BusinessName,
			Description: scraped.Description,
			Industry:    stored.Industry,
			Keywords:    scraped.Keywords,
		}
		if _, err := a.contexts.Merge(c.Request.Context(), stored.WebsiteURL, bc); err != nil {
			log.Warn().Err(err).Str("demo_id", stored.ID).Msg("storing scraped context failed")
		}
	}
	if a.activity != nil {
		a.activity.Record(c.Request.Context(), stored.ID, "demo.created", map[string]any{"website_url": stored.WebsiteURL})
	}
	log.Info().Str("demo_id", stored.ID).Str("website_url", stored.WebsiteURL).Msg("demo created")
	c.JSON(http.StatusCreated, gin.H{"demo": stored, "existing": false})
}

func (a *Api) listDemos(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierr.Respond(c, apierr.BadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}
	demos, err := a.repo.ListDemos(c.Request.Context(), limit)
	if err != nil {
		respondRepoErr(c, err)
		return
	}
	if demos == nil {
		demos = []model.Demo{}
	}
	c.JSON(http.StatusOK, gin.H{"demos": demos})
}

func (a *Api) getDemo(c *gin.Context) {
	demo, err := a.repo.GetDemo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoErr(c, err)
		return
	}
	if demo == nil {
		apierr.Respond(c, apierr.NotFound("demo not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"demo": demo})
}

func (a *Api) deleteDemo(c *gin.Context) {
	id := c.Param("id")
	demo, err := a.repo.GetDemo(c.Request.Context(), id)
	if err != nil {
		respondRepoErr(c, err)
		return
	}
	if demo == nil {
		apierr.Respond(c, apierr.NotFound("demo not found"))
		return
	}
	if err := a.repo.DeleteDemo(c.Request.Context(), id); err != nil {
		respondRepoErr(c, err)
		return
	}
	if a.contexts != nil {
		if err := a.contexts.Clear(c.Request.Context(), demo.WebsiteURL); err != nil {
			log.Warn().Err(err).Str("demo_id", id).Msg("clearing business context failed")
		}
	}
	if a.activity != nil {
		a.activity.Record(c.Request.Context(), id, "demo.deleted", nil)
	}
	c.Status(http.StatusNoContent)
}

func (a *Api) getContext(c *gin.Context) {
	demo, ok := a.loadDemo(c)
	if !ok {
		return
	}
	bc, err := a.contexts.Get(c.Request.Context(), demo.WebsiteURL)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if bc == nil {
		apierr.Respond(c, apierr.NotFound("no business context stored"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"context": bc})
}

func (a *Api) putContext(c *gin.Context) {
	demo, ok := a.loadDemo(c)
	if !ok {
		return
	}
	var in model.BusinessContext
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}
	merged, err := a.contexts.Merge(c.Request.Context(), demo.WebsiteURL, &in)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"context": merged})
}

func (a *Api) deleteContext(c *gin.Context) {
	demo, ok := a.loadDemo(c)
	if !ok {
		return
	}
	if err := a.contexts.Clear(c.Request.Context(), demo.WebsiteURL); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *Api) loadDemo(c *gin.Context) (*model.Demo, bool) {
	demo, err := a.repo.GetDemo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoErr(c, err)
		return nil, false
	}
	if demo == nil {
		apierr.Respond(c, apierr.NotFound("demo not found"))
		return nil, false
	}
	return demo, true
}

func respondRepoErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		apierr.Respond(c, apierr.ServiceUnavailable("storage not available"))
	case errors.Is(err, sql.ErrNoRows):
		apierr.Respond(c, apierr.NotFound("demo not found"))
	default:
		apierr.Respond(c, apierr.Internal(err))
	}
}
