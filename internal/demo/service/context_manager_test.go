package service

import (
	"context"
	"testing"

	"github.com/demoforge/demoforge/internal/demo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSite(t *testing.T) {
	cases := map[string]string{
		"https://www.Example.com/":      "example.com",
		"http://example.com":            "example.com",
		"example.com":                   "example.com",
		"https://example.com/services/": "example.com/services",
		"  https://example.com  ":       "example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSite(in), in)
	}
}

func TestContextManagerMemoryMode(t *testing.T) {
	ctx := context.Background()
	m := NewContextManager(nil)

	t.Run("GetMissingIsNil", func(t *testing.T) {
		bc, err := m.Get(ctx, "example.com")
		require.NoError(t, err)
		assert.Nil(t, bc)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		err := m.Set(ctx, "https://www.example.com/", &model.BusinessContext{Name: "Acme"})
		require.NoError(t, err)

		// different spelling of the same site resolves to the same entry
		bc, err := m.Get(ctx, "example.com")
		require.NoError(t, err)
		require.NotNil(t, bc)
		assert.Equal(t, "Acme", bc.Name)
		assert.False(t, bc.UpdatedAt.IsZero())
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		bc, err := m.Get(ctx, "example.com")
		require.NoError(t, err)
		bc.Name = "mutated"

		again, err := m.Get(ctx, "example.com")
		require.NoError(t, err)
		assert.Equal(t, "Acme", again.Name)
	})

	t.Run("MergeOverlaysAndUnions", func(t *testing.T) {
		_, err := m.Merge(ctx, "example.com", &model.BusinessContext{
			Keywords: []string{"roofing"},
			Extra:    map[string]string{"phone": "555-0100"},
		})
		require.NoError(t, err)
		merged, err := m.Merge(ctx, "example.com", &model.BusinessContext{
			Description: "licensed and insured",
			Keywords:    []string{"roofing", "siding"},
			Extra:       map[string]string{"phone": "555-0199"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Acme", merged.Name)
		assert.Equal(t, "licensed and insured", merged.Description)
		assert.ElementsMatch(t, []string{"roofing", "siding"}, merged.Keywords)
		assert.Equal(t, "555-0199", merged.Extra["phone"])
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, m.Clear(ctx, "example.com"))
		bc, err := m.Get(ctx, "example.com")
		require.NoError(t, err)
		assert.Nil(t, bc)
	})

	t.Run("EmptySiteRejected", func(t *testing.T) {
		_, err := m.Get(ctx, "")
		assert.Error(t, err)
		assert.Error(t, m.Set(ctx, "", &model.BusinessContext{}))
	})
}
