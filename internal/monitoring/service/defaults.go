// Package service holds monitoring behavior that sits above the stores:
// default config seeding for new tenants.
package service

import (
	"context"
	"fmt"
	"os"

	mdb "github.com/demoforge/demoforge/internal/monitoring/database"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// defaultsFile is the shape of the optional alert-defaults YAML file.
type defaultsFile struct {
	Defaults []defaultItem `yaml:"defaults"`
}

type defaultItem struct {
	AlertType      string   `yaml:"alert_type"`
	Enabled        *bool    `yaml:"enabled"`
	CheckFrequency string   `yaml:"check_frequency"`
	Channels       []string `yaml:"channels"`
	Threshold      struct {
		PositionsDropped     int      `yaml:"positions_dropped"`
		Keywords             []string `yaml:"keywords"`
		MinStars             float64  `yaml:"min_stars"`
		Platforms            []string `yaml:"platforms"`
		MinNewCompetitors    int      `yaml:"min_new_competitors"`
		DropPercent          float64  `yaml:"drop_percent"`
		MinLeads             int      `yaml:"min_leads"`
		FailureRateThreshold float64  `yaml:"failure_rate_threshold"`
		MinJobs              int      `yaml:"min_jobs"`
	} `yaml:"threshold"`
}

// builtinDefaults covers every alert type so a fresh tenant starts fully
// monitored even without a defaults file. Enabled, daily, in-app only.
func builtinDefaults() []model.AlertConfig {
	base := func(t model.AlertType, th model.ThresholdConfig) model.AlertConfig {
		return model.AlertConfig{
			AlertType:      t,
			IsEnabled:      true,
			CheckFrequency: model.FreqDaily,
			Threshold:      th,
			Channels:       []model.Channel{model.ChannelInApp},
		}
	}
	return []model.AlertConfig{
		base(model.AlertRankingDrop, model.ThresholdConfig{PositionsDropped: 5}),
		base(model.AlertNegativeReview, model.ThresholdConfig{MinStars: 2}),
		base(model.AlertCompetitorActivity, model.ThresholdConfig{MinNewCompetitors: 1}),
		base(model.AlertLeadVolumeDrop, model.ThresholdConfig{DropPercent: 30, MinLeads: 5}),
		base(model.AlertQCFailureSpike, model.ThresholdConfig{FailureRateThreshold: 0.15, MinJobs: 5}),
	}
}

// LoadDefaults reads the alert-defaults YAML file; with an empty path the
// builtin defaults are used. Unknown alert types or frequencies fail the
// whole load so a typo never silently disables monitoring.
func LoadDefaults(path string) ([]model.AlertConfig, error) {
	if path == "" {
		return builtinDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alert defaults: %w", err)
	}
	var f defaultsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alert defaults: %w", err)
	}
	if len(f.Defaults) == 0 {
		return builtinDefaults(), nil
	}
	out := make([]model.AlertConfig, 0, len(f.Defaults))
	for _, item := range f.Defaults {
		t, err := model.ParseAlertType(item.AlertType)
		if err != nil {
			return nil, fmt.Errorf("alert defaults: %w", err)
		}
		freq := model.FreqDaily
		if item.CheckFrequency != "" {
			freq, err = model.ParseCheckFrequency(item.CheckFrequency)
			if err != nil {
				return nil, fmt.Errorf("alert defaults: %w", err)
			}
		}
		enabled := true
		if item.Enabled != nil {
			enabled = *item.Enabled
		}
		channels := []model.Channel{model.ChannelInApp}
		if len(item.Channels) > 0 {
			channels = channels[:0]
			for _, c := range item.Channels {
				channels = append(channels, model.Channel(c))
			}
		}
		out = append(out, model.AlertConfig{
			AlertType:      t,
			IsEnabled:      enabled,
			CheckFrequency: freq,
			Threshold: model.ThresholdConfig{
				PositionsDropped:     item.Threshold.PositionsDropped,
				Keywords:             item.Threshold.Keywords,
				MinStars:             item.Threshold.MinStars,
				Platforms:            item.Threshold.Platforms,
				MinNewCompetitors:    item.Threshold.MinNewCompetitors,
				DropPercent:          item.Threshold.DropPercent,
				MinLeads:             item.Threshold.MinLeads,
				FailureRateThreshold: item.Threshold.FailureRateThreshold,
				MinJobs:              item.Threshold.MinJobs,
			},
			Channels: channels,
		})
	}
	return out, nil
}

// SeedDefaults installs the default configs for a tenant, skipping any type
// the tenant already configured. Called on demo creation; safe to replay.
func SeedDefaults(ctx context.Context, store *mdb.Store, demoID string, defaults []model.AlertConfig) error {
	for i := range defaults {
		cfg := defaults[i]
		cfg.ID = ""
		cfg.DemoID = demoID
		if err := store.SeedAlertConfig(ctx, &cfg); err != nil {
			return err
		}
	}
	log.Debug().Str("demo_id", demoID).Int("configs", len(defaults)).Msg("default alert configs seeded")
	return nil
}
