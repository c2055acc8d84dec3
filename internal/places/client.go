package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tripcrew/backend/internal/apperrors"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

// CityResult is one city candidate returned by a search.
type CityResult struct {
	PlaceID     string `json:"place_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Searcher finds cities by free-text query.
type Searcher interface {
	SearchCities(ctx context.Context, query string) ([]CityResult, error)
}

// Ensure Client implements Searcher
var _ Searcher = (*Client)(nil)

// Client is a thin Google Places text-search client scoped to cities.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// SearchCities proxies a locality-scoped text search. A missing API key,
// transport failure, non-200 status or error status in the body all map
// to an external service error.
func (c *Client) SearchCities(ctx context.Context, query string) ([]CityResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "locality")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.ExternalService("google places", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.ExternalService("google places", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalService("google places", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExternalService("google places", err)
	}

	var search textSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, apperrors.ExternalService("google places", err)
	}

	if search.Status != "OK" && search.Status != "ZERO_RESULTS" {
		return nil, apperrors.ExternalService("google places", fmt.Errorf("response status %s", search.Status))
	}

	results := make([]CityResult, 0, len(search.Results))
	for _, r := range search.Results {
		results = append(results, CityResult{
			PlaceID:     r.PlaceID,
			Name:        r.Name,
			Description: r.FormattedAddress,
		})
	}

	return results, nil
}
