package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/travel-planner-api/internal/config"
	"github.com/travel-planner-api/internal/domain"
)

type searchResponse struct {
	Results []struct {
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Client searches Unsplash photos.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	timeout    time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.UnsplashBaseURL, "/"),
		accessKey:  cfg.UnsplashAccessKey,
		timeout:    cfg.ImageSearchTimeout,
	}
}

// Search returns up to perPage landscape photos for query, skipping results
// without a usable URL.
func (c *Client) Search(ctx context.Context, query string, perPage int) ([]domain.ImageCandidate, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("orientation", "landscape")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unsplash status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode search: %v", domain.ErrUpstream, err)
	}

	candidates := make([]domain.ImageCandidate, 0, len(out.Results))
	for _, r := range out.Results {
		if r.URLs.Regular == "" {
			continue
		}
		candidates = append(candidates, domain.ImageCandidate{
			URL:            r.URLs.Regular,
			Description:    r.Description,
			AltDescription: r.AltDescription,
		})
	}
	return candidates, nil
}
