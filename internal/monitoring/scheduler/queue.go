package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/redis/go-redis/v9"
)

// Job is one unit of monitoring work: evaluate one tenant for one run
// frequency and period.
type Job struct {
	DemoID    string               `json:"demo_id"`
	Frequency model.CheckFrequency `json:"frequency"`
	Bucket    string               `json:"bucket"`
	Attempt   int                  `json:"attempt"`
}

var errRedisNotConfigured = errors.New("redis not configured")

// enqueueTTL keeps the per-period enqueue marker alive long enough to cover
// overlapping timer fires without blocking the next period.
func enqueueTTL(freq model.CheckFrequency) time.Duration {
	switch freq {
	case model.FreqHourly:
		return time.Hour
	case model.FreqDaily:
		return 24 * time.Hour
	case model.FreqWeekly:
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// EnqueueJob pushes a job unless the same (demo, frequency, bucket) was
// already queued this period. SETNX carries the dedup; a replayed tick is a
// no-op.
func EnqueueJob(ctx context.Context, rdb *redis.Client, queueKey string, job Job) (queued bool, err error) {
	if rdb == nil {
		return false, errRedisNotConfigured
	}
	marker := "monitoring:enqueued:" + job.DemoID + ":" + string(job.Frequency) + ":" + job.Bucket
	ok, err := rdb.SetNX(ctx, marker, 1, enqueueTTL(job.Frequency)).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	payload, _ := json.Marshal(job)
	if err := rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		// release the marker, or the tenant stays suppressed for the
		// rest of the period with no job queued
		rdb.Del(ctx, marker)
		return false, err
	}
	return true, nil
}

// RequeueJob pushes a failed job back without touching the enqueue marker,
// so the retry is not suppressed by its own dedup key.
func RequeueJob(ctx context.Context, rdb *redis.Client, queueKey string, job Job) error {
	if rdb == nil {
		return errRedisNotConfigured
	}
	payload, _ := json.Marshal(job)
	return rdb.LPush(ctx, queueKey, payload).Err()
}

// DequeueJob blocks up to timeout for the next job; returns nil when the
// queue stayed empty.
func DequeueJob(ctx context.Context, rdb *redis.Client, queueKey string, timeout time.Duration) (*Job, error) {
	if rdb == nil {
		return nil, errRedisNotConfigured
	}
	vals, err := rdb.BRPop(ctx, timeout, queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(vals) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
