package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/monitoring/model"
)

// Gatherers produce the current observation for one category of one tenant.
// Each gather is an independent external call; the scheduler applies the
// partial-success policy around them.

// RankingGatherer pulls keyword positions from the rank-tracking provider.
type RankingGatherer struct {
	BaseURL string
	Client  *http.Client
}

func NewRankingGatherer(baseURL string) *RankingGatherer {
	return &RankingGatherer{BaseURL: baseURL, Client: &http.Client{Timeout: 20 * time.Second}}
}

func (g *RankingGatherer) Category() model.Category { return model.CategoryRankings }

func (g *RankingGatherer) Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error) {
	if g.BaseURL == "" {
		return nil, fmt.Errorf("ranking provider not configured")
	}
	var data model.RankingData
	if err := fetchJSON(ctx, g.Client, g.BaseURL+"/v1/rankings?site="+url.QueryEscape(demo.WebsiteURL), &data); err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// ReviewGatherer pulls recent reviews across tracked platforms from the
// review aggregation provider.
type ReviewGatherer struct {
	BaseURL string
	Client  *http.Client
}

func NewReviewGatherer(baseURL string) *ReviewGatherer {
	return &ReviewGatherer{BaseURL: baseURL, Client: &http.Client{Timeout: 20 * time.Second}}
}

func (g *ReviewGatherer) Category() model.Category { return model.CategoryReviews }

func (g *ReviewGatherer) Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error) {
	if g.BaseURL == "" {
		return nil, fmt.Errorf("review provider not configured")
	}
	var data model.ReviewData
	if err := fetchJSON(ctx, g.Client, g.BaseURL+"/v1/reviews?site="+url.QueryEscape(demo.WebsiteURL), &data); err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// CompetitorGatherer searches the Meta Ads Library for active advertisers in
// the tenant's industry and region.
type CompetitorGatherer struct {
	Meta *MetaAdsClient
}

func NewCompetitorGatherer(meta *MetaAdsClient) *CompetitorGatherer {
	return &CompetitorGatherer{Meta: meta}
}

func (g *CompetitorGatherer) Category() model.Category { return model.CategoryCompetitors }

func (g *CompetitorGatherer) Gather(ctx context.Context, demo *demomodel.Demo) (json.RawMessage, error) {
	term := demo.Industry
	if term == "" {
		term = demo.BusinessName
	}
	if demo.City != "" {
		term += " " + demo.City
	}
	entries, err := g.Meta.SearchAds(ctx, term, "US")
	if err != nil {
		return nil, err
	}
	data := model.CompetitorData{}
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[e.PageName]++
	}
	for name, n := range counts {
		data.Competitors = append(data.Competitors, model.Competitor{Name: name, AdCount: n})
	}
	return json.Marshal(data)
}

func fetchJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
