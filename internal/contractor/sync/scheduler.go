// Package sync runs the contractor integration sync loop: on a fixed
// interval it pulls lead and QC stats from each tenant's connected
// integrations and stores them for the monitoring gatherers.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	cdb "github.com/demoforge/demoforge/internal/contractor/database"
	"github.com/demoforge/demoforge/internal/contractor/model"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Repo     *cdb.Repo
	Interval time.Duration
	Workers  int
	Client   *http.Client
}

func StartScheduler(ctx context.Context, deps Deps) {
	if deps.Interval <= 0 {
		deps.Interval = 30 * time.Minute
	}
	if deps.Workers < 1 {
		deps.Workers = 3
	}
	if deps.Client == nil {
		deps.Client = &http.Client{Timeout: 30 * time.Second}
	}
	t := time.NewTicker(deps.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := runOnce(ctx, deps); err != nil {
				log.Error().Err(err).Msg("integration sync run failed")
			}
		}
	}
}

// runOnce syncs every enabled integration with a bounded worker pool.
// Failures are per-integration; the batch always completes.
func runOnce(ctx context.Context, deps Deps) error {
	integrations, err := deps.Repo.ListEnabledIntegrations(ctx)
	if err != nil {
		return err
	}
	if len(integrations) == 0 {
		return nil
	}
	log.Debug().Int("count", len(integrations)).Msg("integration sync starting")

	sem := make(chan struct{}, deps.Workers)
	var wg sync.WaitGroup
	for _, it := range integrations {
		it := it
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := syncOne(ctx, deps, &it); err != nil {
				log.Error().Err(err).Str("integration", it.ID).Str("demo_id", it.DemoID).Str("kind", it.Kind).Msg("integration sync failed")
				return
			}
			log.Debug().Str("integration", it.ID).Str("kind", it.Kind).Msg("integration synced")
		}()
	}
	wg.Wait()
	return nil
}

// integrationPayload is the shape both CRM and QC endpoints answer with;
// irrelevant fields stay zero.
type integrationPayload struct {
	Leads        int `json:"leads"`
	JobsAnalyzed int `json:"jobs_analyzed"`
	FailedJobs   int `json:"failed_jobs"`
}

func syncOne(ctx context.Context, deps Deps, it *model.Integration) error {
	var endpoint string
	switch it.Kind {
	case model.IntegrationCRMLeads:
		endpoint = it.BaseURL + "/v1/leads/summary"
	case model.IntegrationQCJobs:
		endpoint = it.BaseURL + "/v1/jobs/qc-summary"
	default:
		return fmt.Errorf("unknown integration kind: %s", it.Kind)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if it.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+it.APIKey)
	}
	resp, err := deps.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
	}

	var payload integrationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}

	stats := &model.IntegrationStats{
		DemoID:       it.DemoID,
		Kind:         it.Kind,
		Leads:        payload.Leads,
		JobsAnalyzed: payload.JobsAnalyzed,
		FailedJobs:   payload.FailedJobs,
		SyncedAt:     time.Now().UTC(),
	}
	if err := deps.Repo.InsertStats(ctx, stats); err != nil {
		return err
	}
	return deps.Repo.TouchIntegrationSync(ctx, it.ID)
}
