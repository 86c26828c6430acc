package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGatherer struct {
	cat  model.Category
	data json.RawMessage
	err  error
}

func (s *stubGatherer) Category() model.Category { return s.cat }

func (s *stubGatherer) Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error) {
	return s.data, s.err
}

func TestGatherAllPartialSuccess(t *testing.T) {
	demo := &demomodel.Demo{ID: "demo-1", WebsiteURL: "example.com"}
	gatherers := map[model.Category]Gatherer{
		model.CategoryRankings: &stubGatherer{cat: model.CategoryRankings, data: json.RawMessage(`{"keywords":[]}`)},
		model.CategoryReviews:  &stubGatherer{cat: model.CategoryReviews, err: errors.New("provider down")},
		model.CategoryLeads:    &stubGatherer{cat: model.CategoryLeads, data: json.RawMessage(`{"leads":7}`)},
	}
	cats := []model.Category{model.CategoryRankings, model.CategoryReviews, model.CategoryLeads}

	out := gatherAll(context.Background(), gatherers, cats, demo)

	require.Len(t, out, 2)
	assert.Contains(t, out, model.CategoryRankings)
	assert.Contains(t, out, model.CategoryLeads)
	assert.NotContains(t, out, model.CategoryReviews)
}

func TestGatherAllMissingGatherer(t *testing.T) {
	demo := &demomodel.Demo{ID: "demo-1"}
	out := gatherAll(context.Background(), map[model.Category]Gatherer{}, []model.Category{model.CategoryQC}, demo)
	assert.Empty(t, out)
}

func TestCategoriesFor(t *testing.T) {
	configs := []model.AlertConfig{
		{AlertType: model.AlertRankingDrop},
		{AlertType: model.AlertNegativeReview},
		{AlertType: model.AlertRankingDrop}, // duplicate category
		{AlertType: model.AlertQCFailureSpike},
	}
	cats := categoriesFor(configs)
	assert.Equal(t, []model.Category{model.CategoryRankings, model.CategoryReviews, model.CategoryQC}, cats)
}
