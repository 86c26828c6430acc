package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/demoforge/demoforge/internal/monitoring/model"
)

// Finding is one crossed threshold, ready to become a ContractorAlert.
type Finding struct {
	AlertType model.AlertType
	Severity  model.Severity
	Title     string
	Message   string
	Detected  any
	Actions   []string
}

// Evaluate applies the fixed per-type rule for one config against the
// current and previous category payloads. Disabled configs are always
// silent, however the caller loaded them. prev may be nil when no earlier
// snapshot exists; trend rules then stay silent. At most one finding is
// produced per config per run.
func Evaluate(cfg *model.AlertConfig, prev, curr json.RawMessage) (*Finding, error) {
	if !cfg.IsEnabled {
		return nil, nil
	}
	if len(curr) == 0 {
		return nil, nil
	}
	switch cfg.AlertType {
	case model.AlertRankingDrop:
		return evaluateRankingDrop(cfg, prev, curr)
	case model.AlertNegativeReview:
		return evaluateNegativeReview(cfg, prev, curr)
	case model.AlertCompetitorActivity:
		return evaluateCompetitorActivity(cfg, prev, curr)
	case model.AlertLeadVolumeDrop:
		return evaluateLeadVolumeDrop(cfg, prev, curr)
	case model.AlertQCFailureSpike:
		return evaluateQCFailureSpike(cfg, curr)
	}
	return nil, fmt.Errorf("no evaluator for alert type %s", cfg.AlertType)
}

func newFinding(t model.AlertType, title, message string, detected any) *Finding {
	return &Finding{
		AlertType: t,
		Severity:  model.SeverityFor(t),
		Title:     title,
		Message:   message,
		Detected:  detected,
		Actions:   model.RecommendedActions(t),
	}
}

type rankingDropDetail struct {
	Keyword          string `json:"keyword"`
	OldRank          int    `json:"old_rank"`
	NewRank          int    `json:"new_rank"`
	PositionsDropped int    `json:"positions_dropped"`
}

type rankingDropDetected struct {
	Keyword          string              `json:"keyword"`
	OldRank          int                 `json:"old_rank"`
	NewRank          int                 `json:"new_rank"`
	PositionsDropped int                 `json:"positions_dropped"`
	Drops            []rankingDropDetail `json:"drops"`
}

// evaluateRankingDrop fires when any tracked keyword fell by at least the
// configured number of positions since the previous snapshot. Rank numbers
// grow downward: 3 -> 9 is a drop of 6.
func evaluateRankingDrop(cfg *model.AlertConfig, prevRaw, currRaw json.RawMessage) (*Finding, error) {
	if len(prevRaw) == 0 {
		return nil, nil
	}
	var prev, curr model.RankingData
	if err := json.Unmarshal(prevRaw, &prev); err != nil {
		return nil, fmt.Errorf("decode previous rankings: %w", err)
	}
	if err := json.Unmarshal(currRaw, &curr); err != nil {
		return nil, fmt.Errorf("decode current rankings: %w", err)
	}

	tracked := map[string]bool{}
	for _, k := range cfg.Threshold.Keywords {
		tracked[k] = true
	}
	prevRanks := make(map[string]int, len(prev.Keywords))
	for _, k := range prev.Keywords {
		prevRanks[k.Keyword] = k.Rank
	}

	minDrop := cfg.Threshold.PositionsDropped
	if minDrop <= 0 {
		minDrop = 5
	}
	var drops []rankingDropDetail
	for _, k := range curr.Keywords {
		if len(tracked) > 0 && !tracked[k.Keyword] {
			continue
		}
		oldRank, ok := prevRanks[k.Keyword]
		if !ok || oldRank <= 0 || k.Rank <= 0 {
			continue
		}
		if dropped := k.Rank - oldRank; dropped >= minDrop {
			drops = append(drops, rankingDropDetail{
				Keyword:          k.Keyword,
				OldRank:          oldRank,
				NewRank:          k.Rank,
				PositionsDropped: dropped,
			})
		}
	}
	if len(drops) == 0 {
		return nil, nil
	}

	worst := drops[0]
	for _, d := range drops[1:] {
		if d.PositionsDropped > worst.PositionsDropped {
			worst = d
		}
	}
	detected := rankingDropDetected{
		Keyword:          worst.Keyword,
		OldRank:          worst.OldRank,
		NewRank:          worst.NewRank,
		PositionsDropped: worst.PositionsDropped,
		Drops:            drops,
	}
	title := fmt.Sprintf("Ranking drop: %q fell %d positions", worst.Keyword, worst.PositionsDropped)
	msg := fmt.Sprintf("%d tracked keyword(s) dropped %d+ positions; %q moved from #%d to #%d.",
		len(drops), minDrop, worst.Keyword, worst.OldRank, worst.NewRank)
	return newFinding(model.AlertRankingDrop, title, msg, detected), nil
}

type negativeReviewDetected struct {
	Count       int            `json:"count"`
	LowestStars float64        `json:"lowest_stars"`
	Reviews     []model.Review `json:"reviews"`
}

// evaluateNegativeReview fires when a review not present in the previous
// snapshot rates at or below min_stars on a tracked platform.
func evaluateNegativeReview(cfg *model.AlertConfig, prevRaw, currRaw json.RawMessage) (*Finding, error) {
	var curr model.ReviewData
	if err := json.Unmarshal(currRaw, &curr); err != nil {
		return nil, fmt.Errorf("decode current reviews: %w", err)
	}
	seen := map[string]bool{}
	if len(prevRaw) > 0 {
		var prev model.ReviewData
		if err := json.Unmarshal(prevRaw, &prev); err != nil {
			return nil, fmt.Errorf("decode previous reviews: %w", err)
		}
		for _, r := range prev.Reviews {
			seen[reviewKey(&r)] = true
		}
	}

	platforms := map[string]bool{}
	for _, p := range cfg.Threshold.Platforms {
		platforms[p] = true
	}
	minStars := cfg.Threshold.MinStars
	if minStars <= 0 {
		minStars = 2
	}

	var offending []model.Review
	lowest := minStars + 1
	for _, r := range curr.Reviews {
		if seen[reviewKey(&r)] {
			continue
		}
		if len(platforms) > 0 && !platforms[r.Platform] {
			continue
		}
		if r.Rating <= minStars {
			offending = append(offending, r)
			if r.Rating < lowest {
				lowest = r.Rating
			}
		}
	}
	if len(offending) == 0 {
		return nil, nil
	}
	detected := negativeReviewDetected{Count: len(offending), LowestStars: lowest, Reviews: offending}
	title := fmt.Sprintf("New negative review on %s", offending[0].Platform)
	msg := fmt.Sprintf("%d new review(s) at %.1f stars or below.", len(offending), minStars)
	return newFinding(model.AlertNegativeReview, title, msg, detected), nil
}

func reviewKey(r *model.Review) string {
	return r.Platform + "|" + r.Author + "|" + r.PostedAt.UTC().Format("2006-01-02T15:04:05")
}

type competitorActivityDetected struct {
	NewCompetitors []string `json:"new_competitors"`
	Count          int      `json:"count"`
}

// evaluateCompetitorActivity fires when enough advertisers appear that were
// absent from the previous snapshot.
func evaluateCompetitorActivity(cfg *model.AlertConfig, prevRaw, currRaw json.RawMessage) (*Finding, error) {
	if len(prevRaw) == 0 {
		return nil, nil
	}
	var prev, curr model.CompetitorData
	if err := json.Unmarshal(prevRaw, &prev); err != nil {
		return nil, fmt.Errorf("decode previous competitors: %w", err)
	}
	if err := json.Unmarshal(currRaw, &curr); err != nil {
		return nil, fmt.Errorf("decode current competitors: %w", err)
	}
	known := make(map[string]bool, len(prev.Competitors))
	for _, c := range prev.Competitors {
		known[c.Name] = true
	}
	var fresh []string
	for _, c := range curr.Competitors {
		if !known[c.Name] {
			fresh = append(fresh, c.Name)
		}
	}
	minNew := cfg.Threshold.MinNewCompetitors
	if minNew <= 0 {
		minNew = 1
	}
	if len(fresh) < minNew {
		return nil, nil
	}
	detected := competitorActivityDetected{NewCompetitors: fresh, Count: len(fresh)}
	title := fmt.Sprintf("%d new competitor(s) advertising in your market", len(fresh))
	msg := fmt.Sprintf("New active advertisers since last check: %v", fresh)
	return newFinding(model.AlertCompetitorActivity, title, msg, detected), nil
}

type leadVolumeDropDetected struct {
	PreviousLeads int     `json:"previous_leads"`
	CurrentLeads  int     `json:"current_leads"`
	DropPercent   float64 `json:"drop_percent"`
}

// evaluateLeadVolumeDrop fires when lead count fell by at least drop_percent
// against the previous snapshot, with a minimum previous volume to avoid
// noise on tiny samples.
func evaluateLeadVolumeDrop(cfg *model.AlertConfig, prevRaw, currRaw json.RawMessage) (*Finding, error) {
	if len(prevRaw) == 0 {
		return nil, nil
	}
	var prev, curr model.LeadData
	if err := json.Unmarshal(prevRaw, &prev); err != nil {
		return nil, fmt.Errorf("decode previous leads: %w", err)
	}
	if err := json.Unmarshal(currRaw, &curr); err != nil {
		return nil, fmt.Errorf("decode current leads: %w", err)
	}
	minLeads := cfg.Threshold.MinLeads
	if minLeads <= 0 {
		minLeads = 5
	}
	dropPct := cfg.Threshold.DropPercent
	if dropPct <= 0 {
		dropPct = 30
	}
	if prev.Leads < minLeads || curr.Leads >= prev.Leads {
		return nil, nil
	}
	actual := float64(prev.Leads-curr.Leads) / float64(prev.Leads) * 100
	if actual < dropPct {
		return nil, nil
	}
	detected := leadVolumeDropDetected{PreviousLeads: prev.Leads, CurrentLeads: curr.Leads, DropPercent: actual}
	title := fmt.Sprintf("Lead volume down %.0f%%", actual)
	msg := fmt.Sprintf("Leads fell from %d to %d since the last check.", prev.Leads, curr.Leads)
	return newFinding(model.AlertLeadVolumeDrop, title, msg, detected), nil
}

type qcFailureSpikeDetected struct {
	JobsAnalyzed int     `json:"jobs_analyzed"`
	FailedJobs   int     `json:"failed_jobs"`
	FailureRate  float64 `json:"failure_rate"`
}

// evaluateQCFailureSpike fires on the current snapshot alone: failure rate
// at or above the threshold with at least min_jobs analyzed.
func evaluateQCFailureSpike(cfg *model.AlertConfig, currRaw json.RawMessage) (*Finding, error) {
	var curr model.QCData
	if err := json.Unmarshal(currRaw, &curr); err != nil {
		return nil, fmt.Errorf("decode current qc stats: %w", err)
	}
	minJobs := cfg.Threshold.MinJobs
	if minJobs <= 0 {
		minJobs = 5
	}
	threshold := cfg.Threshold.FailureRateThreshold
	if threshold <= 0 {
		threshold = 0.15
	}
	if curr.JobsAnalyzed < minJobs {
		return nil, nil
	}
	rate := float64(curr.FailedJobs) / float64(curr.JobsAnalyzed)
	if rate < threshold {
		return nil, nil
	}
	detected := qcFailureSpikeDetected{JobsAnalyzed: curr.JobsAnalyzed, FailedJobs: curr.FailedJobs, FailureRate: rate}
	title := fmt.Sprintf("QC failure rate at %.0f%%", rate*100)
	msg := fmt.Sprintf("%d of %d analyzed jobs failed QC.", curr.FailedJobs, curr.JobsAnalyzed)
	return newFinding(model.AlertQCFailureSpike, title, msg, detected), nil
}
