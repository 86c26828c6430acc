// Package api exposes alert configuration, alert lifecycle and manual
// monitoring triggers over HTTP.
package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/demoforge/demoforge/internal/apierr"
	mdb "github.com/demoforge/demoforge/internal/monitoring/database"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AlertStore is the persistence surface the handlers need. *database.Store
// satisfies it; tests substitute a fake.
type AlertStore interface {
	UpsertAlertConfig(ctx context.Context, cfg *model.AlertConfig) error
	ListAlertConfigs(ctx context.Context, demoID string) ([]model.AlertConfig, error)
	DeleteAlertConfig(ctx context.Context, demoID string, t model.AlertType) error
	ListAlerts(ctx context.Context, demoID string, status model.AlertStatus, limit int) ([]model.ContractorAlert, error)
	GetAlert(ctx context.Context, id string) (*model.ContractorAlert, error)
	UpdateAlertStatus(ctx context.Context, id string, status model.AlertStatus, at time.Time) error
	ListNotifications(ctx context.Context, alertID string) ([]model.NotificationSent, error)
}

// RunFunc queues a monitoring run for every eligible tenant at the given
// frequency; backs the manual trigger endpoint.
type RunFunc func(ctx context.Context, freq model.CheckFrequency, now time.Time) (int, error)

type Api struct {
	store AlertStore
	run   RunFunc
}

func New(store AlertStore, run RunFunc) *Api {
	return &Api{store: store, run: run}
}

func (a *Api) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/demos/:id/alert-configs", a.listAlertConfigs)
	r.PUT("/v1/demos/:id/alert-configs/:type", a.upsertAlertConfig)
	r.DELETE("/v1/demos/:id/alert-configs/:type", a.deleteAlertConfig)

	r.GET("/v1/demos/:id/alerts", a.listAlerts)
	r.GET("/v1/alerts/:id", a.getAlert)
	r.POST("/v1/alerts/:id/acknowledge", a.transition(model.StatusAcknowledged))
	r.POST("/v1/alerts/:id/resolve", a.transition(model.StatusResolved))
	r.POST("/v1/alerts/:id/dismiss", a.transition(model.StatusDismissed))

	r.POST("/v1/monitoring/run", a.triggerRun)
}

func (a *Api) listAlertConfigs(c *gin.Context) {
	configs, err := a.store.ListAlertConfigs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if configs == nil {
		configs = []model.AlertConfig{}
	}
	c.JSON(http.StatusOK, gin.H{"alert_configs": configs})
}

type upsertConfigRequest struct {
	IsEnabled      *bool                 `json:"is_enabled"`
	CheckFrequency string                `json:"check_frequency"`
	Threshold      model.ThresholdConfig `json:"threshold_config"`
	Channels       []string              `json:"notification_channels"`
}

func (a *Api) upsertAlertConfig(c *gin.Context) {
	alertType, err := model.ParseAlertType(c.Param("type"))
	if err != nil {
		apierr.Respond(c, apierr.BadRequest(err.Error()))
		return
	}
	var req upsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}
	freq := model.FreqDaily
	if req.CheckFrequency != "" {
		freq, err = model.ParseCheckFrequency(req.CheckFrequency)
		if err != nil {
			apierr.Respond(c, apierr.BadRequest(err.Error()))
			return
		}
	}
	channels := []model.Channel{model.ChannelInApp}
	if len(req.Channels) > 0 {
		channels = channels[:0]
		for _, raw := range req.Channels {
			ch := model.Channel(raw)
			switch ch {
			case model.ChannelInApp, model.ChannelEmail, model.ChannelSMS:
				channels = append(channels, ch)
			default:
				apierr.Respond(c, apierr.BadRequest("unknown notification channel: "+raw))
				return
			}
		}
	}
	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	cfg := &model.AlertConfig{
		DemoID:         c.Param("id"),
		AlertType:      alertType,
		IsEnabled:      enabled,
		CheckFrequency: freq,
		Threshold:      req.Threshold,
		Channels:       channels,
	}
	if err := a.store.UpsertAlertConfig(c.Request.Context(), cfg); err != nil {
		respondStoreErr(c, err)
		return
	}
	log.Info().Str("demo_id", cfg.DemoID).Str("alert_type", string(alertType)).Bool("enabled", enabled).Msg("alert config upserted")
	c.JSON(http.StatusOK, gin.H{"alert_config": cfg})
}

func (a *Api) deleteAlertConfig(c *gin.Context) {
	alertType, err := model.ParseAlertType(c.Param("type"))
	if err != nil {
		apierr.Respond(c, apierr.BadRequest(err.Error()))
		return
	}
	if err := a.store.DeleteAlertConfig(c.Request.Context(), c.Param("id"), alertType); err != nil {
		respondStoreErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *Api) listAlerts(c *gin.Context) {
	var status model.AlertStatus
	if raw := c.Query("status"); raw != "" {
		status = model.AlertStatus(raw)
		switch status {
		case model.StatusNew, model.StatusAcknowledged, model.StatusResolved, model.StatusDismissed:
		default:
			apierr.Respond(c, apierr.BadRequest("unknown alert status: "+raw))
			return
		}
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
	alerts, err := a.store.ListAlerts(c.Request.Context(), c.Param("id"), status, limit)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if alerts == nil {
		alerts = []model.ContractorAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (a *Api) getAlert(c *gin.Context) {
	alert, err := a.store.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if alert == nil {
		apierr.Respond(c, apierr.NotFound("alert not found"))
		return
	}
	if receipts, err := a.store.ListNotifications(c.Request.Context(), alert.ID); err == nil {
		alert.Notifications = receipts
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// allowedTransitions encodes the alert lifecycle: acknowledge only from new,
// resolve and dismiss from new or acknowledged. Terminal states stay put.
var allowedTransitions = map[model.AlertStatus][]model.AlertStatus{
	model.StatusAcknowledged: {model.StatusNew},
	model.StatusResolved:     {model.StatusNew, model.StatusAcknowledged},
	model.StatusDismissed:    {model.StatusNew, model.StatusAcknowledged},
}

func (a *Api) transition(target model.AlertStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		alert, err := a.store.GetAlert(c.Request.Context(), id)
		if err != nil {
			respondStoreErr(c, err)
			return
		}
		if alert == nil {
			apierr.Respond(c, apierr.NotFound("alert not found"))
			return
		}
		ok := false
		for _, from := range allowedTransitions[target] {
			if alert.Status == from {
				ok = true
				break
			}
		}
		if !ok {
			apierr.Respond(c, apierr.BadRequest("cannot move alert from "+string(alert.Status)+" to "+string(target)))
			return
		}
		now := time.Now().UTC()
		if err := a.store.UpdateAlertStatus(c.Request.Context(), id, target, now); err != nil {
			respondStoreErr(c, err)
			return
		}
		alert.Status = target
		switch target {
		case model.StatusAcknowledged:
			alert.AcknowledgedAt = &now
		case model.StatusResolved:
			alert.ResolvedAt = &now
		case model.StatusDismissed:
			alert.DismissedAt = &now
		}
		log.Info().Str("alert_id", id).Str("status", string(target)).Msg("alert status updated")
		c.JSON(http.StatusOK, gin.H{"alert": alert})
	}
}

type triggerRunRequest struct {
	Frequency string `json:"frequency" binding:"required"`
}

func (a *Api) triggerRun(c *gin.Context) {
	var req triggerRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid request body: "+err.Error()))
		return
	}
	freq, err := model.ParseCheckFrequency(req.Frequency)
	if err != nil {
		apierr.Respond(c, apierr.BadRequest(err.Error()))
		return
	}
	if a.run == nil {
		apierr.Respond(c, apierr.ServiceUnavailable("monitoring pipeline not available"))
		return
	}
	queued, err := a.run(c.Request.Context(), freq, time.Now())
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"frequency": freq, "queued": queued})
}

func respondStoreErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mdb.ErrNotConfigured):
		apierr.Respond(c, apierr.ServiceUnavailable("monitoring storage not available"))
	case errors.Is(err, sql.ErrNoRows):
		apierr.Respond(c, apierr.NotFound("alert not found"))
	default:
		apierr.Respond(c, apierr.Internal(err))
	}
}
