package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ScrapeResult is the normalized output of one website scrape.
type ScrapeResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Scraper fetches a business website and extracts basic profile signals.
type Scraper struct {
	client    *http.Client
	userAgent string
}

func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Scrape downloads the page and extracts title/meta signals. The body read
// is capped; marketing sites routinely serve multi-megabyte pages.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*ScrapeResult, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return nil, fmt.Errorf("empty url")
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return ExtractMeta(string(body)), nil
}

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaTagRe = regexp.MustCompile(`(?is)<meta\s+[^>]*>`)
	nameRe    = regexp.MustCompile(`(?i)name\s*=\s*["']([^"']+)["']`)
	contentRe = regexp.MustCompile(`(?i)content\s*=\s*["']([^"']*)["']`)
)

// ExtractMeta pulls title, meta description and meta keywords out of raw
// HTML. Regex-based on purpose: the pages scraped here are arbitrary
// marketing sites and only these three signals matter.
func ExtractMeta(html string) *ScrapeResult {
	res := &ScrapeResult{}
	if m := titleRe.FindStringSubmatch(html); len(m) == 2 {
		res.Title = cleanText(m[1])
	}
	for _, tag := range metaTagRe.FindAllString(html, -1) {
		nm := nameRe.FindStringSubmatch(tag)
		cm := contentRe.FindStringSubmatch(tag)
		if len(nm) != 2 || len(cm) != 2 {
			continue
		}
		switch strings.ToLower(nm[1]) {
		case "description":
			if res.Description == "" {
				res.Description = cleanText(cm[1])
			}
		case "keywords":
			for _, kw := range strings.Split(cm[1], ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					res.Keywords = append(res.Keywords, kw)
				}
			}
		}
	}
	return res
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
