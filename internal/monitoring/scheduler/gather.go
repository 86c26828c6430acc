package scheduler

import (
	"context"
	"encoding/json"

	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/metrics"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/rs/zerolog/log"
)

// Gatherer produces the current observation for one category of one tenant.
type Gatherer interface {
	Category() model.Category
	Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error)
}

// gatherAll fetches current data for every requested category. Each gather
// is independent: a failing category is logged, counted and left out of the
// result so the remaining categories still get evaluated.
func gatherAll(ctx context.Context, gatherers map[model.Category]Gatherer, categories []model.Category, demo *demomodel.Demo) map[model.Category]json.RawMessage {
	out := make(map[model.Category]json.RawMessage, len(categories))
	for _, cat := range categories {
		g, ok := gatherers[cat]
		if !ok {
			log.Warn().Str("category", string(cat)).Msg("no gatherer registered for category")
			continue
		}
		data, err := g.Gather(ctx, demo)
		if err != nil {
			metrics.GatherFailures.WithLabelValues(string(cat)).Inc()
			log.Error().Err(err).Str("demo_id", demo.ID).Str("category", string(cat)).Msg("data gather failed; continuing with remaining categories")
			continue
		}
		out[cat] = data
	}
	return out
}

// categoriesFor collects the distinct categories referenced by the enabled
// configs, in stable order.
func categoriesFor(configs []model.AlertConfig) []model.Category {
	seen := map[model.Category]bool{}
	var out []model.Category
	for _, cfg := range configs {
		cat := model.CategoryFor(cfg.AlertType)
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}
