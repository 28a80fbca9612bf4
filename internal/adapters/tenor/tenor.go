// Package tenor implements the media search provider against the Tenor
// v2 API. The API key stays server-side; clients only ever see plain GIF
// URL lists.
package tenor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/terminalboard/server/internal/core"
)

const (
	baseURL      = "https://tenor.googleapis.com/v2"
	maxQueryLen  = 80
	maxLimit     = 24
	defaultLimit = 12
)

var ErrMissingKey = errors.New("tenor api key not configured")

type Client struct {
	apiKey string
	base   string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		base:   baseURL,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		MediaFormats struct {
			GIF struct {
				URL string `json:"url"`
			} `json:"gif"`
		} `json:"media_formats"`
	} `json:"results"`
}

// Search returns GIF URLs for a query. An empty query yields empty
// results, not an error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.MediaResult, error) {
	query = sanitizeQuery(query)
	if query == "" {
		return []core.MediaResult{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("media_filter", "gif")
	return c.fetch(ctx, "/search", params, limit)
}

// Trending returns the current featured GIFs.
func (c *Client) Trending(ctx context.Context, limit int) ([]core.MediaResult, error) {
	params := url.Values{}
	params.Set("media_filter", "gif")
	return c.fetch(ctx, "/featured", params, limit)
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values, limit int) ([]core.MediaResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	params.Set("key", c.apiKey)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tenor request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tenor status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tenor decode: %w", err)
	}

	results := make([]core.MediaResult, 0, len(body.Results))
	for _, item := range body.Results {
		if u := item.MediaFormats.GIF.URL; u != "" {
			results = append(results, core.MediaResult{URL: u})
		}
	}
	return results, nil
}

func sanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > maxQueryLen {
		q = q[:maxQueryLen]
	}
	return q
}
