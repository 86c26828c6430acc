// Package api exposes contractor profiles and external integrations over
// HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/demoforge/demoforge/internal/apierr"
	"github.com/demoforge/demoforge/internal/contractor/database"
	"github.com/demoforge/demoforge/internal/contractor/model"
	demodb "github.com/demoforge/demoforge/internal/demo/database"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Api struct {
	repo  *database.Repo
	demos *demodb.Repo
}

func New(repo *database.Repo, demos *demodb.Repo) *Api {
	return &Api{repo: repo, demos: demos}
}

func (a *Api) RegisterRoutes(r gin.IRouter) {
	r.PUT("/v1/demos/:id/contractor", a.upsertProfile)
	r.GET("/v1/demos/:id/contractor", a.getProfile)

	r.GET("/v1/demos/:id/integrations", a.listIntegrations)
	r.PUT("/v1/demos/:id/integrations/:kind", a.upsertIntegration)
	r.DELETE("/v1/demos/:id/integrations/:kind", a.deleteIntegration)
}

func (a *Api) upsertProfile(c *gin.Context) {
	if !a.demoExists(c) {
		return
	}
	var req model.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}
	p := &model.ContractorProfile{
		DemoID:        c.Param("id"),
		CompanyName:   req.CompanyName,
		Trade:         req.Trade,
		LicenseNumber: req.LicenseNumber,
		ServiceArea:   req.ServiceArea,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
	}
	if err := a.repo.UpsertProfile(c.Request.Context(), p); err != nil {
		respondRepoErr(c, err)
		return
	}
	log.Info().Str("demo_id", p.DemoID).Str("trade", p.Trade).Msg("contractor profile upserted")
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (a *Api) getProfile(c *gin.Context) {
	p, err := a.repo.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoErr(c, err)
		return
	}
	if p == nil {
		apierr.Respond(c, apierr.NotFound("contractor profile not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (a *Api) listIntegrations(c *gin.Context) {
	items, err := a.repo.ListIntegrationsByDemo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoErr(c, err)
		return
	}
	if items == nil {
		items = []model.Integration{}
	}
	c.JSON(http.StatusOK, gin.H{"integrations": items})
}

type upsertIntegrationRequest struct {
	BaseURL   string `json:"base_url" binding:"required"`
	APIKey    string `json:"api_key"`
	IsEnabled *bool  `json:"is_enabled"`
}

func (a *Api) upsertIntegration(c *gin.Context) {
	kind := c.Param("kind")
	if kind != model.IntegrationCRMLeads && kind != model.IntegrationQCJobs {
		apierr.Respond(c, apierr.BadRequest("unknown integration kind: "+kind))
		return
	}
	if !a.demoExists(c) {
		return
	}
	var req upsertIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}
	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	it := &model.Integration{
		DemoID:    c.Param("id"),
		Kind:      kind,
		BaseURL:   req.BaseURL,
		APIKey:    req.APIKey,
		IsEnabled: enabled,
	}
	if err := a.repo.UpsertIntegration(c.Request.Context(), it); err != nil {
		respondRepoErr(c, err)
		return
	}
	log.Info().Str("demo_id", it.DemoID).Str("kind", kind).Bool("enabled", enabled).Msg("integration upserted")
	c.JSON(http.StatusOK, gin.H{"integration": it})
}

func (a *Api) deleteIntegration(c *gin.Context) {
	kind := c.Param("kind")
	if kind != model.IntegrationCRMLeads && kind != model.IntegrationQCJobs {
		apierr.Respond(c, apierr.BadRequest("unknown integration kind: "+kind))
		return
	}
	if err := a.repo.DeleteIntegration(c.Request.Context(), c.Param("id"), kind); err != nil {
		respondRepoErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *Api) demoExists(c *gin.Context) bool {
	demo, err := a.demos.GetDemo(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, demodb.ErrNotConfigured) {
			apierr.Respond(c, apierr.ServiceUnavailable("storage not available"))
		} else {
			apierr.Respond(c, apierr.Internal(err))
		}
		return false
	}
	if demo == nil {
		apierr.Respond(c, apierr.NotFound("demo not found"))
		return false
	}
	return true
}

func respondRepoErr(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotConfigured) {
		apierr.Respond(c, apierr.ServiceUnavailable("storage not available"))
		return
	}
	apierr.Respond(c, apierr.Internal(err))
}
