package scheduler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestEvaluateRankingDrop(t *testing.T) {
	cfg := &model.AlertConfig{
		AlertType: model.AlertRankingDrop,
		IsEnabled: true,
		Threshold: model.ThresholdConfig{PositionsDropped: 6},
	}

	t.Run("FiresOnDropAtThreshold", func(t *testing.T) {
		prev := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 3}}})
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 9}}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, model.AlertRankingDrop, f.AlertType)
		assert.Equal(t, model.SeverityHigh, f.Severity)

		detected, ok := f.Detected.(rankingDropDetected)
		require.True(t, ok)
		assert.Equal(t, "plumber austin", detected.Keyword)
		assert.Equal(t, 3, detected.OldRank)
		assert.Equal(t, 9, detected.NewRank)
		assert.Equal(t, 6, detected.PositionsDropped)
	})

	t.Run("SilentBelowThreshold", func(t *testing.T) {
		prev := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 3}}})
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 8}}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentOnImprovement", func(t *testing.T) {
		prev := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 9}}})
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 3}}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentWithoutPreviousSnapshot", func(t *testing.T) {
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 90}}})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("TrackedKeywordFilter", func(t *testing.T) {
		filtered := &model.AlertConfig{
			AlertType: model.AlertRankingDrop,
			IsEnabled: true,
			Threshold: model.ThresholdConfig{PositionsDropped: 3, Keywords: []string{"roof repair"}},
		}
		prev := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{
			{Keyword: "roof repair", Rank: 2},
			{Keyword: "gutter cleaning", Rank: 1},
		}})
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{
			{Keyword: "roof repair", Rank: 4},
			{Keyword: "gutter cleaning", Rank: 20},
		}})

		// only the untracked keyword dropped enough
		f, err := Evaluate(filtered, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("UnrankedKeywordIgnored", func(t *testing.T) {
		prev := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 0}}})
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 50}}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})
}

func TestEvaluateNegativeReview(t *testing.T) {
	cfg := &model.AlertConfig{
		AlertType: model.AlertNegativeReview,
		IsEnabled: true,
		Threshold: model.ThresholdConfig{MinStars: 2},
	}
	posted := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	badReview := model.Review{Platform: "google", Rating: 1, Author: "pat", PostedAt: posted}

	t.Run("FiresOnNewLowReview", func(t *testing.T) {
		prev := mustJSON(t, model.ReviewData{})
		curr := mustJSON(t, model.ReviewData{Reviews: []model.Review{badReview}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, model.SeverityMedium, f.Severity)

		detected, ok := f.Detected.(negativeReviewDetected)
		require.True(t, ok)
		assert.Equal(t, 1, detected.Count)
		assert.Equal(t, float64(1), detected.LowestStars)
	})

	t.Run("SilentWhenReviewAlreadySeen", func(t *testing.T) {
		prev := mustJSON(t, model.ReviewData{Reviews: []model.Review{badReview}})
		curr := mustJSON(t, model.ReviewData{Reviews: []model.Review{badReview}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentOnGoodReview", func(t *testing.T) {
		prev := mustJSON(t, model.ReviewData{})
		curr := mustJSON(t, model.ReviewData{Reviews: []model.Review{
			{Platform: "google", Rating: 5, Author: "sam", PostedAt: posted},
		}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("PlatformFilter", func(t *testing.T) {
		filtered := &model.AlertConfig{
			AlertType: model.AlertNegativeReview,
			IsEnabled: true,
			Threshold: model.ThresholdConfig{MinStars: 2, Platforms: []string{"yelp"}},
		}
		prev := mustJSON(t, model.ReviewData{})
		curr := mustJSON(t, model.ReviewData{Reviews: []model.Review{badReview}})

		f, err := Evaluate(filtered, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("FiresWithNoPreviousSnapshot", func(t *testing.T) {
		// negative_review is not a trend rule; first run can still fire
		curr := mustJSON(t, model.ReviewData{Reviews: []model.Review{badReview}})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		assert.NotNil(t, f)
	})
}

func TestEvaluateCompetitorActivity(t *testing.T) {
	cfg := &model.AlertConfig{
		AlertType: model.AlertCompetitorActivity,
		IsEnabled: true,
		Threshold: model.ThresholdConfig{MinNewCompetitors: 2},
	}

	t.Run("FiresOnEnoughNewAdvertisers", func(t *testing.T) {
		prev := mustJSON(t, model.CompetitorData{Competitors: []model.Competitor{{Name: "Acme Roofing"}}})
		curr := mustJSON(t, model.CompetitorData{Competitors: []model.Competitor{
			{Name: "Acme Roofing"}, {Name: "Peak Roofers"}, {Name: "Summit Exteriors"},
		}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, model.SeverityLow, f.Severity)

		detected, ok := f.Detected.(competitorActivityDetected)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"Peak Roofers", "Summit Exteriors"}, detected.NewCompetitors)
	})

	t.Run("SilentBelowThreshold", func(t *testing.T) {
		prev := mustJSON(t, model.CompetitorData{Competitors: []model.Competitor{{Name: "Acme Roofing"}}})
		curr := mustJSON(t, model.CompetitorData{Competitors: []model.Competitor{
			{Name: "Acme Roofing"}, {Name: "Peak Roofers"},
		}})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentWithoutPreviousSnapshot", func(t *testing.T) {
		curr := mustJSON(t, model.CompetitorData{Competitors: []model.Competitor{
			{Name: "Peak Roofers"}, {Name: "Summit Exteriors"},
		}})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})
}

func TestEvaluateLeadVolumeDrop(t *testing.T) {
	cfg := &model.AlertConfig{
		AlertType: model.AlertLeadVolumeDrop,
		IsEnabled: true,
		Threshold: model.ThresholdConfig{DropPercent: 30, MinLeads: 5},
	}

	t.Run("FiresOnDrop", func(t *testing.T) {
		prev := mustJSON(t, model.LeadData{Leads: 20})
		curr := mustJSON(t, model.LeadData{Leads: 10})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		require.NotNil(t, f)

		detected, ok := f.Detected.(leadVolumeDropDetected)
		require.True(t, ok)
		assert.Equal(t, 20, detected.PreviousLeads)
		assert.Equal(t, 10, detected.CurrentLeads)
		assert.InDelta(t, 50.0, detected.DropPercent, 0.01)
	})

	t.Run("SilentOnSmallSample", func(t *testing.T) {
		prev := mustJSON(t, model.LeadData{Leads: 3})
		curr := mustJSON(t, model.LeadData{Leads: 0})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentBelowDropPercent", func(t *testing.T) {
		prev := mustJSON(t, model.LeadData{Leads: 10})
		curr := mustJSON(t, model.LeadData{Leads: 8})

		f, err := Evaluate(cfg, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentWithoutPreviousSnapshot", func(t *testing.T) {
		curr := mustJSON(t, model.LeadData{Leads: 0})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})
}

func TestEvaluateQCFailureSpike(t *testing.T) {
	cfg := &model.AlertConfig{
		AlertType: model.AlertQCFailureSpike,
		IsEnabled: true,
		Threshold: model.ThresholdConfig{FailureRateThreshold: 0.15, MinJobs: 5},
	}

	t.Run("FiresAtRate", func(t *testing.T) {
		curr := mustJSON(t, model.QCData{JobsAnalyzed: 20, FailedJobs: 4})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, model.SeverityCritical, f.Severity)

		detected, ok := f.Detected.(qcFailureSpikeDetected)
		require.True(t, ok)
		assert.InDelta(t, 0.2, detected.FailureRate, 0.001)
	})

	t.Run("SilentBelowMinJobs", func(t *testing.T) {
		curr := mustJSON(t, model.QCData{JobsAnalyzed: 4, FailedJobs: 4})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentBelowRate", func(t *testing.T) {
		curr := mustJSON(t, model.QCData{JobsAnalyzed: 100, FailedJobs: 10})

		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})
}

func TestEvaluateDisabledConfig(t *testing.T) {
	t.Run("SilentOnQCSpike", func(t *testing.T) {
		disabled := &model.AlertConfig{
			AlertType: model.AlertQCFailureSpike,
			IsEnabled: false,
			Threshold: model.ThresholdConfig{FailureRateThreshold: 0.15, MinJobs: 5},
		}
		// 1/6 failed would fire were the config enabled
		curr := mustJSON(t, model.QCData{JobsAnalyzed: 6, FailedJobs: 1})

		f, err := Evaluate(disabled, nil, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("SilentOnRankingDrop", func(t *testing.T) {
		disabled := &model.AlertConfig{
			AlertType: model.AlertRankingDrop,
			IsEnabled: false,
			Threshold: model.ThresholdConfig{PositionsDropped: 5},
		}
		prev := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 3}}})
		curr := mustJSON(t, model.RankingData{Keywords: []model.KeywordRank{{Keyword: "plumber austin", Rank: 9}}})

		f, err := Evaluate(disabled, prev, curr)
		require.NoError(t, err)
		assert.Nil(t, f)
	})
}

func TestEvaluateEdgeCases(t *testing.T) {
	t.Run("EmptyCurrentIsSilent", func(t *testing.T) {
		cfg := &model.AlertConfig{AlertType: model.AlertRankingDrop, IsEnabled: true}
		f, err := Evaluate(cfg, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("UnknownAlertTypeErrors", func(t *testing.T) {
		cfg := &model.AlertConfig{AlertType: model.AlertType("bogus"), IsEnabled: true}
		_, err := Evaluate(cfg, nil, json.RawMessage(`{}`))
		assert.Error(t, err)
	})

	t.Run("MalformedPayloadErrors", func(t *testing.T) {
		cfg := &model.AlertConfig{AlertType: model.AlertNegativeReview, IsEnabled: true}
		_, err := Evaluate(cfg, nil, json.RawMessage(`not json`))
		assert.Error(t, err)
	})

	t.Run("FindingCarriesRecommendedActions", func(t *testing.T) {
		cfg := &model.AlertConfig{AlertType: model.AlertQCFailureSpike, IsEnabled: true}
		curr := mustJSON(t, model.QCData{JobsAnalyzed: 10, FailedJobs: 5})
		f, err := Evaluate(cfg, nil, curr)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.NotEmpty(t, f.Actions)
	})
}
