package service

import (
	"testing"

	"github.com/demoforge/demoforge/internal/agent/model"
	"github.com/demoforge/demoforge/internal/collector"
	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptCoversEveryTool(t *testing.T) {
	in := &PromptInput{
		Demo: &demomodel.Demo{
			BusinessName: "Acme Roofing",
			WebsiteURL:   "acmeroofing.com",
			Industry:     "roofing",
			City:         "Austin",
			Region:       "TX",
		},
	}
	for _, tool := range model.AllToolKinds() {
		system, user, err := BuildPrompt(tool, in)
		require.NoError(t, err, string(tool))
		assert.NotEmpty(t, system, string(tool))
		assert.Contains(t, user, "Acme Roofing", string(tool))
		assert.Contains(t, user, "JSON", string(tool))
	}
}

func TestBuildPromptUsesBusinessContext(t *testing.T) {
	in := &PromptInput{
		Demo: &demomodel.Demo{BusinessName: "Acme", WebsiteURL: "acme.com"},
		Context: &demomodel.BusinessContext{
			Description: "family owned since 1990",
			Keywords:    []string{"metal roofs"},
		},
	}
	_, user, err := BuildPrompt(model.ToolMarketingPlan, in)
	require.NoError(t, err)
	assert.Contains(t, user, "family owned since 1990")
	assert.Contains(t, user, "metal roofs")
}

func TestStrategicAnalysisUsesMarketData(t *testing.T) {
	in := &PromptInput{
		Demo: &demomodel.Demo{BusinessName: "Acme", WebsiteURL: "acme.com", Region: "TX"},
		Demographics: &collector.Demographics{
			Region: "Texas", Population: 30000000, MedianIncome: 73000, Households: 11000000,
		},
		Competitors: []collector.AdEntry{{PageName: "Peak Roofers"}},
	}
	_, user, err := BuildPrompt(model.ToolStrategicAnalysis, in)
	require.NoError(t, err)
	assert.Contains(t, user, "Texas")
	assert.Contains(t, user, "Peak Roofers")
}

func TestNeedsMarketData(t *testing.T) {
	assert.True(t, needsMarketData(model.ToolStrategicAnalysis))
	assert.False(t, needsMarketData(model.ToolAdCopy))
}

func TestParseToolKind(t *testing.T) {
	for _, tool := range model.AllToolKinds() {
		got, err := model.ParseToolKind(string(tool))
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	}
	_, err := model.ParseToolKind("write_malware")
	assert.Error(t, err)
}
