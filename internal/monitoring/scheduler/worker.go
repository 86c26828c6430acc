package scheduler

import (
	"context"
	"encoding/json"
	"time"

	ddb "github.com/demoforge/demoforge/internal/demo/database"
	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/metrics"
	mdb "github.com/demoforge/demoforge/internal/monitoring/database"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Notifier delivers an alert over the selected channels and reports one
// receipt per attempted channel.
type Notifier interface {
	Deliver(ctx context.Context, alert *model.ContractorAlert, channels []model.Channel, demo *demomodel.Demo) []model.NotificationSent
}

// ActivityRecorder mirrors pipeline events into the activity log.
// Best-effort; a nil recorder is allowed.
type ActivityRecorder interface {
	Record(ctx context.Context, demoID, action string, detail any)
}

// WorkerDeps configures the consume side of the pipeline.
type WorkerDeps struct {
	Store       *mdb.Store
	Demos       *ddb.Repo
	Redis       *redis.Client
	QueueKey    string
	Gatherers   map[model.Category]Gatherer
	Notifier    Notifier
	Activity    ActivityRecorder
	MaxAttempts int
}

// StartWorkers launches n queue consumers. Each failure is scoped to its
// job: a tenant that errors is retried up to MaxAttempts and never blocks
// other tenants.
func StartWorkers(ctx context.Context, deps WorkerDeps, n int) {
	if n < 1 {
		n = 1
	}
	if deps.MaxAttempts < 1 {
		deps.MaxAttempts = 3
	}
	for i := 0; i < n; i++ {
		go workerLoop(ctx, deps, i)
	}
}

func workerLoop(ctx context.Context, deps WorkerDeps, id int) {
	log.Debug().Int("worker", id).Msg("monitoring worker started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job, err := DequeueJob(ctx, deps.Redis, deps.QueueKey, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("worker", id).Msg("dequeue monitoring job failed")
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := ProcessTenant(ctx, deps, job); err != nil {
			metrics.MonitoringRuns.WithLabelValues(string(job.Frequency), "error").Inc()
			log.Error().Err(err).Str("demo_id", job.DemoID).Int("attempt", job.Attempt).Msg("tenant monitoring run failed")
			job.Attempt++
			if job.Attempt < deps.MaxAttempts {
				if rerr := RequeueJob(ctx, deps.Redis, deps.QueueKey, *job); rerr != nil {
					log.Error().Err(rerr).Str("demo_id", job.DemoID).Msg("requeue failed; job dropped")
				}
			} else {
				log.Warn().Str("demo_id", job.DemoID).Str("frequency", string(job.Frequency)).Msg("monitoring job exhausted retries; dropped")
			}
			continue
		}
		metrics.MonitoringRuns.WithLabelValues(string(job.Frequency), "ok").Inc()
	}
}

// ProcessTenant runs the full evaluate-and-notify pass for one tenant and
// period. Gather errors degrade to partial data; store errors abort the run
// (and trigger the queue retry); notification errors only mark receipts.
func ProcessTenant(ctx context.Context, deps WorkerDeps, job *Job) error {
	configs, err := deps.Store.ListEnabledConfigsByFrequency(ctx, job.DemoID, job.Frequency)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return nil
	}

	demo, err := deps.Demos.GetDemo(ctx, job.DemoID)
	if err != nil {
		return err
	}
	if demo == nil || demo.Status == demomodel.StatusDeleted {
		log.Debug().Str("demo_id", job.DemoID).Msg("tenant gone; skipping monitoring run")
		return nil
	}

	categories := categoriesFor(configs)
	previous := make(map[model.Category]json.RawMessage, len(categories))
	for _, cat := range categories {
		snap, err := deps.Store.LatestSnapshot(ctx, job.DemoID, cat)
		if err != nil {
			return err
		}
		if snap != nil {
			previous[cat] = snap.Data
		}
	}

	current := gatherAll(ctx, deps.Gatherers, categories, demo)

	now := time.Now().UTC()
	for i := range configs {
		cfg := &configs[i]
		cat := model.CategoryFor(cfg.AlertType)
		curr, ok := current[cat]
		if !ok {
			// gather failed or not wired; no alert is possible for this
			// category this run
			continue
		}
		finding, err := Evaluate(cfg, previous[cat], curr)
		if err != nil {
			log.Error().Err(err).Str("demo_id", job.DemoID).Str("alert_type", string(cfg.AlertType)).Msg("threshold evaluation failed")
			continue
		}
		if finding == nil {
			continue
		}
		if err := fireAlert(ctx, deps, job, cfg, finding, demo, now); err != nil {
			return err
		}
	}

	// one immutable snapshot per gathered category
	for cat, data := range current {
		snap := &model.MonitoringSnapshot{
			DemoID:     job.DemoID,
			Category:   cat,
			Data:       data,
			CapturedAt: now,
		}
		if err := deps.Store.InsertSnapshot(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

func fireAlert(ctx context.Context, deps WorkerDeps, job *Job, cfg *model.AlertConfig, f *Finding, demo *demomodel.Demo, now time.Time) error {
	detectedJSON, err := json.Marshal(f.Detected)
	if err != nil {
		return err
	}
	alert := &model.ContractorAlert{
		DemoID:             job.DemoID,
		ConfigID:           &cfg.ID,
		AlertType:          f.AlertType,
		Severity:           f.Severity,
		Title:              f.Title,
		Message:            f.Message,
		DetectedData:       detectedJSON,
		RecommendedActions: f.Actions,
		Status:             model.StatusNew,
		DedupKey:           model.DedupKey(job.DemoID, f.AlertType, job.Bucket),
	}
	created, err := deps.Store.InsertAlert(ctx, alert)
	if err != nil {
		return err
	}
	if !created {
		log.Debug().Str("demo_id", job.DemoID).Str("alert_type", string(f.AlertType)).Str("bucket", job.Bucket).Msg("alert already fired this period; skipping")
		return nil
	}
	metrics.AlertsFired.WithLabelValues(string(f.AlertType), string(f.Severity)).Inc()
	log.Info().Str("demo_id", job.DemoID).Str("alert_type", string(f.AlertType)).Str("severity", string(f.Severity)).Msg("alert fired")
	if deps.Activity != nil {
		deps.Activity.Record(ctx, job.DemoID, "alert.fired", map[string]any{
			"alert_id": alert.ID, "alert_type": f.AlertType, "severity": f.Severity,
		})
	}

	if deps.Notifier == nil || len(cfg.Channels) == 0 {
		return nil
	}
	receipts := deps.Notifier.Deliver(ctx, alert, cfg.Channels, demo)
	for i := range receipts {
		receipts[i].AlertID = alert.ID
		if err := deps.Store.InsertNotification(ctx, &receipts[i]); err != nil {
			// the alert is already persisted; a lost receipt is log-only
			log.Error().Err(err).Str("alert_id", alert.ID).Str("channel", string(receipts[i].Channel)).Msg("persist notification receipt failed")
		}
	}
	return nil
}
