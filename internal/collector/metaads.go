package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AdEntry is one advertiser surfaced by the Meta Ads Library search.
type AdEntry struct {
	PageName string `json:"page_name"`
	PageID   string `json:"page_id"`
}

// MetaAdsClient searches the Meta Ads Library for active advertisers
// matching an industry/location term; used for competitor activity signals.
type MetaAdsClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewMetaAdsClient(baseURL, token string) *MetaAdsClient {
	return &MetaAdsClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchAds returns advertisers with active ads for the search term. The
// token is required by the Graph API; without one the call fails and the
// caller's partial-success policy applies.
func (c *MetaAdsClient) SearchAds(ctx context.Context, term, country string) ([]AdEntry, error) {
	if c.token == "" {
		return nil, fmt.Errorf("meta ads token not configured")
	}
	if country == "" {
		country = "US"
	}
	q := url.Values{}
	q.Set("search_terms", term)
	q.Set("ad_reached_countries", country)
	q.Set("ad_active_status", "ACTIVE")
	q.Set("fields", "page_name,page_id")
	q.Set("access_token", c.token)
	endpoint := c.baseURL + "/ads_archive?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta ads request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta ads status %d", resp.StatusCode)
	}

	var payload struct {
		Data []AdEntry `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("meta ads decode: %w", err)
	}
	return payload.Data, nil
}
