package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinDefaultsCoverEveryAlertType(t *testing.T) {
	defaults, err := LoadDefaults("")
	require.NoError(t, err)
	require.Len(t, defaults, 5)

	seen := map[model.AlertType]bool{}
	for _, cfg := range defaults {
		seen[cfg.AlertType] = true
		assert.True(t, cfg.IsEnabled)
		assert.Equal(t, model.FreqDaily, cfg.CheckFrequency)
		assert.Equal(t, []model.Channel{model.ChannelInApp}, cfg.Channels)
	}
	for _, at := range []model.AlertType{
		model.AlertRankingDrop, model.AlertNegativeReview, model.AlertCompetitorActivity,
		model.AlertLeadVolumeDrop, model.AlertQCFailureSpike,
	} {
		assert.True(t, seen[at], string(at))
	}
}

func writeDefaultsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alert_defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsFromFile(t *testing.T) {
	path := writeDefaultsFile(t, `
defaults:
  - alert_type: ranking_drop
    check_frequency: hourly
    channels: [in_app, email]
    threshold:
      positions_dropped: 3
      keywords: [roof repair]
  - alert_type: qc_failure_spike
    enabled: false
    threshold:
      failure_rate_threshold: 0.25
      min_jobs: 10
`)
	defaults, err := LoadDefaults(path)
	require.NoError(t, err)
	require.Len(t, defaults, 2)

	ranking := defaults[0]
	assert.Equal(t, model.AlertRankingDrop, ranking.AlertType)
	assert.True(t, ranking.IsEnabled)
	assert.Equal(t, model.FreqHourly, ranking.CheckFrequency)
	assert.Equal(t, 3, ranking.Threshold.PositionsDropped)
	assert.Equal(t, []string{"roof repair"}, ranking.Threshold.Keywords)
	assert.Equal(t, []model.Channel{model.ChannelInApp, model.ChannelEmail}, ranking.Channels)

	qc := defaults[1]
	assert.False(t, qc.IsEnabled)
	assert.Equal(t, model.FreqDaily, qc.CheckFrequency)
	assert.InDelta(t, 0.25, qc.Threshold.FailureRateThreshold, 0.001)
}

func TestLoadDefaultsRejectsTypos(t *testing.T) {
	t.Run("UnknownAlertType", func(t *testing.T) {
		path := writeDefaultsFile(t, "defaults:\n  - alert_type: rankin_drop\n")
		_, err := LoadDefaults(path)
		assert.Error(t, err)
	})

	t.Run("UnknownFrequency", func(t *testing.T) {
		path := writeDefaultsFile(t, "defaults:\n  - alert_type: ranking_drop\n    check_frequency: fortnightly\n")
		_, err := LoadDefaults(path)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadDefaults("/nonexistent/defaults.yaml")
		assert.Error(t, err)
	})
}

func TestLoadDefaultsEmptyFileFallsBack(t *testing.T) {
	path := writeDefaultsFile(t, "defaults: []\n")
	defaults, err := LoadDefaults(path)
	require.NoError(t, err)
	assert.Len(t, defaults, 5)
}
