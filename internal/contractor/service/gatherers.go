package service

import (
	"context"
	"encoding/json"
	"fmt"

	cdb "github.com/demoforge/demoforge/internal/contractor/database"
	cmodel "github.com/demoforge/demoforge/internal/contractor/model"
	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/monitoring/model"
)

// LeadGatherer reads the latest synced CRM lead summary. The integration
// sync loop is the writer; monitoring only observes.
type LeadGatherer struct {
	Repo *cdb.Repo
}

func NewLeadGatherer(repo *cdb.Repo) *LeadGatherer { return &LeadGatherer{Repo: repo} }

func (g *LeadGatherer) Category() model.Category { return model.CategoryLeads }

func (g *LeadGatherer) Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error) {
	stats, err := g.Repo.LatestStats(ctx, demo.ID, cmodel.IntegrationCRMLeads)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("no lead data synced for demo %s", demo.ID)
	}
	return json.Marshal(model.LeadData{Leads: stats.Leads})
}

// QCGatherer reads the latest synced QC job summary.
type QCGatherer struct {
	Repo *cdb.Repo
}

func NewQCGatherer(repo *cdb.Repo) *QCGatherer { return &QCGatherer{Repo: repo} }

func (g *QCGatherer) Category() model.Category { return model.CategoryQC }

func (g *QCGatherer) Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error) {
	stats, err := g.Repo.LatestStats(ctx, demo.ID, cmodel.IntegrationQCJobs)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("no qc data synced for demo %s", demo.ID)
	}
	return json.Marshal(model.QCData{JobsAnalyzed: stats.JobsAnalyzed, FailedJobs: stats.FailedJobs})
}
