package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ToolKind enumerates the content-generation tools. The set is closed; an
// unknown tool name is rejected at the API boundary, never dispatched.
type ToolKind string

const (
	ToolMarketingPlan     ToolKind = "marketing_plan"
	ToolAdCopy            ToolKind = "ad_copy"
	ToolSEOAudit          ToolKind = "seo_audit"
	ToolStrategicAnalysis ToolKind = "strategic_analysis"
	ToolSocialCalendar    ToolKind = "social_calendar"
)

func ParseToolKind(s string) (ToolKind, error) {
	switch ToolKind(s) {
	case ToolMarketingPlan, ToolAdCopy, ToolSEOAudit, ToolStrategicAnalysis, ToolSocialCalendar:
		return ToolKind(s), nil
	}
	return "", fmt.Errorf("unknown tool: %s", s)
}

// AllToolKinds lists every dispatchable tool, in a stable order.
func AllToolKinds() []ToolKind {
	return []ToolKind{ToolMarketingPlan, ToolAdCopy, ToolSEOAudit, ToolStrategicAnalysis, ToolSocialCalendar}
}

// GeneratedContent is one persisted tool output for a tenant.
type GeneratedContent struct {
	ID        string          `json:"id"`
	DemoID    string          `json:"demo_id"`
	Tool      ToolKind        `json:"tool"`
	Content   json.RawMessage `json:"content"`
	Model     string          `json:"model,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
