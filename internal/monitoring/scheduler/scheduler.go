// Package scheduler drives the monitoring pipeline: frequency tickers fan
// eligible tenants out onto a redis-backed job queue, and a bounded worker
// pool consumes the queue to gather data, evaluate thresholds, persist
// snapshots and alerts, and dispatch notifications.
package scheduler

import (
	"context"
	"time"

	mdb "github.com/demoforge/demoforge/internal/monitoring/database"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TickerDeps configures the enqueue side of the pipeline.
type TickerDeps struct {
	Store          *mdb.Store
	Redis          *redis.Client
	QueueKey       string
	HourlyInterval time.Duration
	DailyInterval  time.Duration
	WeeklyInterval time.Duration
}

// StartScheduler runs one ticker per check frequency until ctx is done.
func StartScheduler(ctx context.Context, deps TickerDeps) {
	if deps.HourlyInterval <= 0 {
		deps.HourlyInterval = time.Hour
	}
	if deps.DailyInterval <= 0 {
		deps.DailyInterval = 24 * time.Hour
	}
	if deps.WeeklyInterval <= 0 {
		deps.WeeklyInterval = 7 * 24 * time.Hour
	}

	hourly := time.NewTicker(deps.HourlyInterval)
	daily := time.NewTicker(deps.DailyInterval)
	weekly := time.NewTicker(deps.WeeklyInterval)
	defer hourly.Stop()
	defer daily.Stop()
	defer weekly.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hourly.C:
			runEnqueue(ctx, deps, model.FreqHourly)
		case <-daily.C:
			runEnqueue(ctx, deps, model.FreqDaily)
		case <-weekly.C:
			runEnqueue(ctx, deps, model.FreqWeekly)
		}
	}
}

func runEnqueue(ctx context.Context, deps TickerDeps, freq model.CheckFrequency) {
	n, err := EnqueueAll(ctx, deps, freq, time.Now())
	if err != nil {
		log.Error().Err(err).Str("frequency", string(freq)).Msg("monitoring enqueue failed")
		return
	}
	log.Info().Str("frequency", string(freq)).Int("queued", n).Msg("monitoring run queued")
}

// EnqueueAll queues every tenant with an enabled config at the given
// frequency. Also serves the manual-trigger API.
func EnqueueAll(ctx context.Context, deps TickerDeps, freq model.CheckFrequency, now time.Time) (int, error) {
	demoIDs, err := deps.Store.ListDemoIDsWithEnabledConfigs(ctx, freq)
	if err != nil {
		return 0, err
	}
	bucket := model.PeriodBucket(now, freq)
	queued := 0
	for _, id := range demoIDs {
		ok, err := EnqueueJob(ctx, deps.Redis, deps.QueueKey, Job{DemoID: id, Frequency: freq, Bucket: bucket})
		if err != nil {
			log.Error().Err(err).Str("demo_id", id).Msg("enqueue monitoring job failed")
			continue
		}
		if ok {
			queued++
		}
	}
	return queued, nil
}
