package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// AlertType enumerates the monitored alert kinds. A tenant may have at most
// one enabled AlertConfig per type.
type AlertType string

const (
	AlertRankingDrop        AlertType = "ranking_drop"
	AlertNegativeReview     AlertType = "negative_review"
	AlertCompetitorActivity AlertType = "competitor_activity"
	AlertLeadVolumeDrop     AlertType = "lead_volume_drop"
	AlertQCFailureSpike     AlertType = "qc_failure_spike"
)

func ParseAlertType(s string) (AlertType, error) {
	switch AlertType(s) {
	case AlertRankingDrop, AlertNegativeReview, AlertCompetitorActivity, AlertLeadVolumeDrop, AlertQCFailureSpike:
		return AlertType(s), nil
	}
	return "", fmt.Errorf("unknown alert type: %s", s)
}

// CheckFrequency selects which scheduled run evaluates a config.
type CheckFrequency string

const (
	FreqHourly CheckFrequency = "hourly"
	FreqDaily  CheckFrequency = "daily"
	FreqWeekly CheckFrequency = "weekly"
)

func ParseCheckFrequency(s string) (CheckFrequency, error) {
	switch CheckFrequency(s) {
	case FreqHourly, FreqDaily, FreqWeekly:
		return CheckFrequency(s), nil
	}
	return "", fmt.Errorf("unknown check frequency: %s", s)
}

// Category names one monitored metric family; each snapshot belongs to
// exactly one category.
type Category string

const (
	CategoryRankings    Category = "rankings"
	CategoryReviews     Category = "reviews"
	CategoryCompetitors Category = "competitors"
	CategoryLeads       Category = "leads"
	CategoryQC          Category = "qc"
)

// CategoryFor maps an alert type to the data category its evaluator consumes.
func CategoryFor(t AlertType) Category {
	switch t {
	case AlertRankingDrop:
		return CategoryRankings
	case AlertNegativeReview:
		return CategoryReviews
	case AlertCompetitorActivity:
		return CategoryCompetitors
	case AlertLeadVolumeDrop:
		return CategoryLeads
	case AlertQCFailureSpike:
		return CategoryQC
	}
	return ""
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityFor is the fixed per-type severity mapping. Not tenant
// configurable.
func SeverityFor(t AlertType) Severity {
	switch t {
	case AlertQCFailureSpike:
		return SeverityCritical
	case AlertRankingDrop, AlertLeadVolumeDrop:
		return SeverityHigh
	case AlertNegativeReview:
		return SeverityMedium
	case AlertCompetitorActivity:
		return SeverityLow
	}
	return SeverityLow
}

// RecommendedActions returns the static action list attached to alerts of
// the given type.
func RecommendedActions(t AlertType) []string {
	switch t {
	case AlertRankingDrop:
		return []string{
			"Review recent content and on-page changes for the affected keyword",
			"Check Google Business Profile for suspended or outdated listings",
			"Compare against competitor pages that moved up",
		}
	case AlertNegativeReview:
		return []string{
			"Respond to the review publicly within 24 hours",
			"Reach out to the customer directly to resolve the issue",
			"Flag the review if it violates platform guidelines",
		}
	case AlertCompetitorActivity:
		return []string{
			"Review the new competitors' ad creatives and offers",
			"Audit your own active campaigns for coverage gaps",
		}
	case AlertLeadVolumeDrop:
		return []string{
			"Verify tracking numbers and contact forms are working",
			"Check ad account for paused or rejected campaigns",
			"Review seasonal demand before changing spend",
		}
	case AlertQCFailureSpike:
		return []string{
			"Pull the failed job reports and identify the common crew or task",
			"Schedule a refresher on the failing checklist items",
			"Hold payouts on affected jobs until re-inspection",
		}
	}
	return nil
}

type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ThresholdConfig is the variant threshold record; the fields that apply
// depend on the owning config's AlertType.
type ThresholdConfig struct {
	// ranking_drop
	PositionsDropped int      `json:"positions_dropped,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	// negative_review
	MinStars  float64  `json:"min_stars,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	// competitor_activity
	MinNewCompetitors int `json:"min_new_competitors,omitempty"`
	// lead_volume_drop
	DropPercent float64 `json:"drop_percent,omitempty"`
	MinLeads    int     `json:"min_leads,omitempty"`
	// qc_failure_spike
	FailureRateThreshold float64 `json:"failure_rate_threshold,omitempty"`
	MinJobs              int     `json:"min_jobs,omitempty"`
}

// AlertConfig is a tenant-scoped monitoring configuration.
type AlertConfig struct {
	ID             string          `json:"id"`
	DemoID         string          `json:"demo_id"`
	AlertType      AlertType       `json:"alert_type"`
	IsEnabled      bool            `json:"is_enabled"`
	CheckFrequency CheckFrequency  `json:"check_frequency"`
	Threshold      ThresholdConfig `json:"threshold_config"`
	Channels       []Channel       `json:"notification_channels"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MonitoringSnapshot is an immutable observation of one category for one
// tenant. Never mutated after insert; consulted only for previous-value
// comparison.
type MonitoringSnapshot struct {
	ID         string          `json:"id"`
	DemoID     string          `json:"demo_id"`
	Category   Category        `json:"category"`
	Data       json.RawMessage `json:"data"`
	CapturedAt time.Time       `json:"captured_at"`
}

// Category payloads stored in MonitoringSnapshot.Data.

type KeywordRank struct {
	Keyword string `json:"keyword"`
	Rank    int    `json:"rank"` // 1 is best; 0 means unranked
}

type RankingData struct {
	Keywords []KeywordRank `json:"keywords"`
}

type Review struct {
	Platform string    `json:"platform"`
	Rating   float64   `json:"rating"`
	Author   string    `json:"author,omitempty"`
	Text     string    `json:"text,omitempty"`
	PostedAt time.Time `json:"posted_at"`
}

type ReviewData struct {
	Reviews []Review `json:"reviews"`
}

type Competitor struct {
	Name      string `json:"name"`
	AdCount   int    `json:"ad_count"`
	FirstSeen string `json:"first_seen,omitempty"`
}

type CompetitorData struct {
	Competitors    []Competitor `json:"competitors"`
	NewCompetitors int          `json:"new_competitors"`
}

type LeadData struct {
	Leads int `json:"leads"`
}

type QCData struct {
	JobsAnalyzed int `json:"jobs_analyzed"`
	FailedJobs   int `json:"failed_jobs"`
}

type AlertStatus string

const (
	StatusNew          AlertStatus = "new"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResolved     AlertStatus = "resolved"
	StatusDismissed    AlertStatus = "dismissed"
)

// ContractorAlert is a triggered alert instance. Never hard-deleted.
type ContractorAlert struct {
	ID                 string             `json:"id"`
	DemoID             string             `json:"demo_id"`
	ConfigID           *string            `json:"config_id,omitempty"`
	AlertType          AlertType          `json:"alert_type"`
	Severity           Severity           `json:"severity"`
	Title              string             `json:"title"`
	Message            string             `json:"message"`
	DetectedData       json.RawMessage    `json:"detected_data"`
	RecommendedActions []string           `json:"recommended_actions"`
	Status             AlertStatus        `json:"status"`
	DedupKey           string             `json:"-"`
	CreatedAt          time.Time          `json:"created_at"`
	AcknowledgedAt     *time.Time         `json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time         `json:"resolved_at,omitempty"`
	DismissedAt        *time.Time         `json:"dismissed_at,omitempty"`
	Notifications      []NotificationSent `json:"notifications,omitempty"`
}

// NotificationSent is an append-only delivery receipt for one channel.
type NotificationSent struct {
	ID      string    `json:"id"`
	AlertID string    `json:"alert_id"`
	Channel Channel   `json:"channel"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// PeriodBucket renders the dedup period for a run at t. Hourly buckets are
// truncated to the hour, daily to the day, weekly to the ISO week.
func PeriodBucket(t time.Time, freq CheckFrequency) string {
	t = t.UTC()
	switch freq {
	case FreqHourly:
		return t.Format("2006-01-02T15")
	case FreqDaily:
		return t.Format("2006-01-02")
	case FreqWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return t.Format("2006-01-02")
}

// DedupKey derives the deterministic alert identity for one tenant, alert
// type and period; replayed runs collide on it instead of double-firing.
func DedupKey(demoID string, t AlertType, bucket string) string {
	return demoID + ":" + string(t) + ":" + bucket
}
