package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html>
<head>
  <title>  Acme Roofing |
    Austin TX  </title>
  <meta name="description" content="Residential roofing and repair in Austin.">
  <meta name="keywords" content="roofing, roof repair , austin">
  <meta name="viewport" content="width=device-width">
</head>
<body>hi</body>
</html>`

func TestExtractMeta(t *testing.T) {
	res := ExtractMeta(samplePage)
	assert.Equal(t, "Acme Roofing | Austin TX", res.Title)
	assert.Equal(t, "Residential roofing and repair in Austin.", res.Description)
	assert.Equal(t, []string{"roofing", "roof repair", "austin"}, res.Keywords)
}

func TestExtractMetaEmptyPage(t *testing.T) {
	res := ExtractMeta("<html><body>nothing here</body></html>")
	assert.Empty(t, res.Title)
	assert.Empty(t, res.Description)
	assert.Empty(t, res.Keywords)
}

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestBot/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s := NewScraper(0, "TestBot/1.0")
	res, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Acme Roofing | Austin TX", res.Title)
}

func TestScrapeErrors(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		s := NewScraper(0, "")
		_, err := s.Scrape(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("NonOKStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		s := NewScraper(0, "")
		_, err := s.Scrape(context.Background(), srv.URL)
		assert.Error(t, err)
	})
}
