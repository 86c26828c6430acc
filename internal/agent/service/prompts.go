package service

import (
	"fmt"
	"strings"

	"github.com/demoforge/demoforge/internal/agent/model"
	"github.com/demoforge/demoforge/internal/collector"
	demomodel "github.com/demoforge/demoforge/internal/demo/model"
)

// PromptInput carries everything a prompt builder may draw on. Demographics
// and Competitors are populated only for tools that request enrichment.
type PromptInput struct {
	Demo         *demomodel.Demo
	Context      *demomodel.BusinessContext
	Demographics *collector.Demographics
	Competitors  []collector.AdEntry
}

type promptBuilder func(in *PromptInput) (system, user string)

var promptBuilders = map[model.ToolKind]promptBuilder{
	model.ToolMarketingPlan:     buildMarketingPlanPrompt,
	model.ToolAdCopy:            buildAdCopyPrompt,
	model.ToolSEOAudit:          buildSEOAuditPrompt,
	model.ToolStrategicAnalysis: buildStrategicAnalysisPrompt,
	model.ToolSocialCalendar:    buildSocialCalendarPrompt,
}

// BuildPrompt resolves the builder for a tool. The tool set is closed, so a
// missing builder is a programming error surfaced as one.
func BuildPrompt(tool model.ToolKind, in *PromptInput) (system, user string, err error) {
	b, ok := promptBuilders[tool]
	if !ok {
		return "", "", fmt.Errorf("no prompt builder for tool %s", tool)
	}
	system, user = b(in)
	return system, user, nil
}

// needsMarketData reports whether the tool's prompt wants demographic and
// competitor enrichment before dispatch.
func needsMarketData(tool model.ToolKind) bool {
	return tool == model.ToolStrategicAnalysis
}

const jsonOnly = " Respond with a single JSON object and nothing else: no markdown fences, no commentary."

func businessBlock(in *PromptInput) string {
	var b strings.Builder
	d := in.Demo
	fmt.Fprintf(&b, "Business: %s\nWebsite: %s\n", d.BusinessName, d.WebsiteURL)
	if d.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", d.Industry)
	}
	if d.City != "" {
		fmt.Fprintf(&b, "Location: %s", d.City)
		if d.Region != "" {
			fmt.Fprintf(&b, ", %s", d.Region)
		}
		b.WriteString("\n")
	}
	if c := in.Context; c != nil {
		if c.Description != "" {
			fmt.Fprintf(&b, "About: %s\n", c.Description)
		}
		if len(c.Keywords) > 0 {
			fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(c.Keywords, ", "))
		}
		for k, v := range c.Extra {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	return b.String()
}

func buildMarketingPlanPrompt(in *PromptInput) (string, string) {
	system := "You are a local-business marketing strategist." + jsonOnly
	user := businessBlock(in) + `
Produce a 90-day marketing plan as JSON with keys:
"summary" (string), "goals" (array of strings),
"months" (array of {"month", "theme", "initiatives": [string]}),
"budget_allocation" (object of channel -> percent).`
	return system, user
}

func buildAdCopyPrompt(in *PromptInput) (string, string) {
	system := "You are a direct-response copywriter for local service businesses." + jsonOnly
	user := businessBlock(in) + `
Write ad copy as JSON with keys:
"google_ads" (array of {"headline_1", "headline_2", "description"}),
"facebook_ads" (array of {"primary_text", "headline", "cta"}),
3 variants each. Keep Google headlines under 30 characters.`
	return system, user
}

func buildSEOAuditPrompt(in *PromptInput) (string, string) {
	system := "You are a technical SEO consultant." + jsonOnly
	user := businessBlock(in) + `
Produce an SEO audit checklist as JSON with keys:
"priority_fixes" (array of {"issue", "impact", "effort"}),
"content_opportunities" (array of {"topic", "target_keyword", "rationale"}),
"local_seo" (array of strings).`
	return system, user
}

func buildStrategicAnalysisPrompt(in *PromptInput) (string, string) {
	system := "You are a market analyst for home-service and local businesses." + jsonOnly
	var b strings.Builder
	b.WriteString(businessBlock(in))
	if d := in.Demographics; d != nil {
		fmt.Fprintf(&b, "Market area: %s, population %d, median household income $%d, %d households\n",
			d.Region, d.Population, d.MedianIncome, d.Households)
	}
	if len(in.Competitors) > 0 {
		b.WriteString("Competitors currently advertising:\n")
		for i, c := range in.Competitors {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", c.PageName)
		}
	}
	b.WriteString(`
Produce a strategic analysis as JSON with keys:
"market_position" (string), "opportunities" (array of strings),
"threats" (array of strings), "competitor_summary" (string),
"recommended_focus" (array of {"area", "rationale"}).`)
	return system, b.String()
}

func buildSocialCalendarPrompt(in *PromptInput) (string, string) {
	system := "You are a social media manager for local businesses." + jsonOnly
	user := businessBlock(in) + `
Produce a 4-week social posting calendar as JSON with keys:
"weeks" (array of {"week", "posts": [{"day", "platform", "post_type", "caption"}]}).
Three posts per week across Facebook and Instagram.`
	return system, user
}
