// Package service dispatches content-generation tools: it assembles the
// business context, enriches market-facing tools with external data, calls
// the LLM and persists the parsed output.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	adb "github.com/demoforge/demoforge/internal/agent/database"
	"github.com/demoforge/demoforge/internal/agent/model"
	"github.com/demoforge/demoforge/internal/collector"
	demodb "github.com/demoforge/demoforge/internal/demo/database"
	demoservice "github.com/demoforge/demoforge/internal/demo/service"
	"github.com/demoforge/demoforge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Service wires the tool dispatch pipeline. All collaborators are injected;
// Census and Meta may be nil, which only degrades enrichment.
type Service struct {
	LLM      *LLMClient
	Demos    *demodb.Repo
	Content  *adb.Repo
	Contexts *demoservice.ContextManager
	Census   *collector.CensusClient
	Meta     *collector.MetaAdsClient
}

// ErrDemoNotFound reports a dispatch for an unknown or deleted tenant.
var ErrDemoNotFound = fmt.Errorf("demo not found")

// Dispatch runs one tool for one tenant and returns the persisted record.
func (s *Service) Dispatch(ctx context.Context, demoID string, tool model.ToolKind) (*model.GeneratedContent, error) {
	demo, err := s.Demos.GetDemo(ctx, demoID)
	if err != nil {
		return nil, err
	}
	if demo == nil {
		return nil, ErrDemoNotFound
	}

	in := &PromptInput{Demo: demo}
	if bc, err := s.Contexts.Get(ctx, demo.WebsiteURL); err == nil {
		in.Context = bc
	} else {
		log.Warn().Err(err).Str("demo_id", demoID).Msg("business context unavailable; prompting without it")
	}
	if needsMarketData(tool) {
		s.enrich(ctx, in)
	}

	system, user, err := BuildPrompt(tool, in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := s.LLM.Complete(ctx, system, user)
	metrics.LLMRequestDuration.WithLabelValues(string(tool)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequests.WithLabelValues(string(tool), "error").Inc()
		return nil, err
	}
	metrics.LLMRequests.WithLabelValues(string(tool), "ok").Inc()

	gc := &model.GeneratedContent{
		DemoID:  demoID,
		Tool:    tool,
		Content: ParseToolOutput(reply),
		Model:   s.LLM.model,
	}
	if err := s.Content.InsertContent(ctx, gc); err != nil {
		return nil, err
	}
	gc.CreatedAt = time.Now().UTC()
	log.Info().Str("demo_id", demoID).Str("tool", string(tool)).Msg("content generated")
	return gc, nil
}

// enrich attaches demographics and competitor data. Failures are logged and
// the prompt proceeds without the missing block.
func (s *Service) enrich(ctx context.Context, in *PromptInput) {
	if s.Census != nil {
		if fips := stateFIPS(in.Demo.Region); fips != "" {
			demo, err := s.Census.AreaProfile(ctx, fips)
			if err != nil {
				log.Warn().Err(err).Str("region", in.Demo.Region).Msg("census enrichment failed")
			} else {
				in.Demographics = demo
			}
		}
	}
	if s.Meta != nil {
		term := in.Demo.Industry
		if term == "" {
			term = in.Demo.BusinessName
		}
		if in.Demo.City != "" {
			term += " " + in.Demo.City
		}
		ads, err := s.Meta.SearchAds(ctx, term, "US")
		if err != nil {
			log.Warn().Err(err).Str("term", term).Msg("meta ads enrichment failed")
		} else {
			in.Competitors = ads
		}
	}
}

// stateFIPS maps a two-letter US state code to its Census FIPS code.
var stateFIPSCodes = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06", "CO": "08",
	"CT": "09", "DE": "10", "DC": "11", "FL": "12", "GA": "13", "HI": "15",
	"ID": "16", "IL": "17", "IN": "18", "IA": "19", "KS": "20", "KY": "21",
	"LA": "22", "ME": "23", "MD": "24", "MA": "25", "MI": "26", "MN": "27",
	"MS": "28", "MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38", "OH": "39",
	"OK": "40", "OR": "41", "PA": "42", "RI": "44", "SC": "45", "SD": "46",
	"TN": "47", "TX": "48", "UT": "49", "VT": "50", "VA": "51", "WA": "53",
	"WV": "54", "WI": "55", "WY": "56",
}

func stateFIPS(region string) string {
	return stateFIPSCodes[strings.ToUpper(strings.TrimSpace(region))]
}
