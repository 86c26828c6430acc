package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Demographics is the normalized area profile from the Census ACS dataset.
type Demographics struct {
	Region       string `json:"region"`
	Population   int    `json:"population"`
	MedianIncome int    `json:"median_income"`
	Households   int    `json:"households"`
}

// CensusClient queries the Census Bureau ACS 5-year dataset for basic area
// demographics used in strategic-analysis prompts.
type CensusClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCensusClient(baseURL, apiKey string) *CensusClient {
	return &CensusClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// AreaProfile fetches population, median household income and household
// count for a state (FIPS code). The Census API answers with a header row
// followed by value rows, all strings.
func (c *CensusClient) AreaProfile(ctx context.Context, stateFIPS string) (*Demographics, error) {
	if stateFIPS == "" {
		return nil, fmt.Errorf("empty state code")
	}
	q := url.Values{}
	q.Set("get", "NAME,B01003_001E,B19013_001E,B11001_001E")
	q.Set("for", "state:"+stateFIPS)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/2022/acs/acs5?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("census request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("census status %d", resp.StatusCode)
	}

	var table [][]string
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("census decode: %w", err)
	}
	if len(table) < 2 || len(table[1]) < 4 {
		return nil, fmt.Errorf("census: unexpected response shape")
	}
	row := table[1]
	return &Demographics{
		Region:       row[0],
		Population:   atoiLoose(row[1]),
		MedianIncome: atoiLoose(row[2]),
		Households:   atoiLoose(row[3]),
	}, nil
}

func atoiLoose(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
