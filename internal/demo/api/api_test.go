package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/demoforge/demoforge/internal/demo/database"
	"github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/demo/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID   map[string]*model.Demo
	bySite map[string]*model.Demo
	fail   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]*model.Demo{}, bySite: map[string]*model.Demo{}}
}

func (f *fakeRepo) CreateDemo(ctx context.Context, d *model.Demo) (bool, *model.Demo, error) {
	if f.fail != nil {
		return false, nil, f.fail
	}
	if existing, ok := f.bySite[d.WebsiteURL]; ok {
		if existing.Status == model.StatusDeleted {
			existing.Status = model.StatusActive
			return true, existing, nil
		}
		return false, existing, nil
	}
	d.ID = "demo-" + d.WebsiteURL
	d.Status = model.StatusActive
	f.byID[d.ID] = d
	f.bySite[d.WebsiteURL] = d
	return true, d, nil
}

func (f *fakeRepo) GetDemo(ctx context.Context, id string) (*model.Demo, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.byID[id], nil
}

func (f *fakeRepo) ListDemos(ctx context.Context, limit int) ([]model.Demo, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var out []model.Demo
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeRepo) DeleteDemo(ctx context.Context, id string) error {
	if f.fail != nil {
		return f.fail
	}
	if d, ok := f.byID[id]; ok {
		d.Status = model.StatusDeleted
	}
	return nil
}

func newTestRouter(repo DemoStore, seed SeedFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// no scraper in tests; prefill is best-effort anyway
	New(repo, service.NewContextManager(nil), nil, seed, nil).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateDemo(t *testing.T) {
	repo := newFakeRepo()
	seeded := []string{}
	r := newTestRouter(repo, func(ctx context.Context, demoID string) error {
		seeded = append(seeded, demoID)
		return nil
	})

	t.Run("NewSite", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{
			"website_url":   "acmeroofing.com",
			"business_name": "Acme Roofing",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Demo     model.Demo `json:"demo"`
			Existing bool       `json:"existing"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Existing)
		assert.Equal(t, "Acme Roofing", resp.Demo.BusinessName)
		assert.Equal(t, []string{resp.Demo.ID}, seeded)
	})

	t.Run("DuplicateSiteReturnsExisting", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{
			"website_url":   "acmeroofing.com",
			"business_name": "Someone Else",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Demo     model.Demo `json:"demo"`
			Existing bool       `json:"existing"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Existing)
		assert.Equal(t, "Acme Roofing", resp.Demo.BusinessName)
		// no re-seeding for an existing tenant
		assert.Len(t, seeded, 1)
	})

	t.Run("MissingWebsiteRejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{"business_name": "No Site LLC"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetAndDeleteDemo(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo, nil)
	doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{"website_url": "x.com", "business_name": "X"})

	t.Run("Get", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/v1/demos/demo-x.com", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetUnknownIs404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/v1/demos/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("DeleteIsSoft", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, "/v1/demos/demo-x.com", nil)
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, model.StatusDeleted, repo.byID["demo-x.com"].Status)
	})

	t.Run("RecreateAfterDeleteReactivates", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{"website_url": "x.com", "business_name": "X"})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Demo     model.Demo `json:"demo"`
			Existing bool       `json:"existing"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Existing)
		assert.Equal(t, model.StatusActive, resp.Demo.Status)
		assert.Equal(t, model.StatusActive, repo.byID["demo-x.com"].Status)
	})
}

func TestStorageDownIs503(t *testing.T) {
	repo := newFakeRepo()
	repo.fail = database.ErrNotConfigured
	r := newTestRouter(repo, nil)

	w := doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{"website_url": "y.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
}

func TestContextEndpoints(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo, nil)
	doJSON(t, r, http.MethodPost, "/v1/demos", map[string]string{"website_url": "ctx.com", "business_name": "Ctx"})

	t.Run("EmptyContextIs404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/v1/demos/demo-ctx.com/context", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/v1/demos/demo-ctx.com/context", map[string]any{
			"description": "family owned since 1990",
			"keywords":    []string{"roofing"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodGet, "/v1/demos/demo-ctx.com/context", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "family owned since 1990")
	})

	t.Run("MergeUnionsKeywords", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/v1/demos/demo-ctx.com/context", map[string]any{
			"keywords": []string{"roofing", "gutters"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Context model.BusinessContext `json:"context"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"roofing", "gutters"}, resp.Context.Keywords)
	})

	t.Run("Clear", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, "/v1/demos/demo-ctx.com/context", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, r, http.MethodGet, "/v1/demos/demo-ctx.com/context", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
