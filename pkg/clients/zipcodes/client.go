package zipcodes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.zippopotam.us/us/"

// Client defines the interface for ZIP code place lookups
type Client interface {
	CityForZip(ctx context.Context, zip5 string) (string, error)
}

type clientImpl struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]string
}

// NewClient creates a new zippopotam.us client
func NewClient() Client {
	return NewClientWithURL(defaultBaseURL)
}

// NewClientWithURL points lookups at a non-default endpoint for tests.
func NewClientWithURL(baseURL string) Client {
	return &clientImpl{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      make(map[string]string),
	}
}

// CityForZip resolves the primary place name for a 5-digit ZIP. Results are
// cached for the client's lifetime; forms look the same ZIP up on every
// keystroke.
func (c *clientImpl) CityForZip(ctx context.Context, zip5 string) (string, error) {
	c.mu.Lock()
	if city, ok := c.cache[zip5]; ok {
		c.mu.Unlock()
		return city, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(zip5), nil)
	if err != nil {
		return "", errors.Wrap(err, "creating zip lookup request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling zip lookup endpoint")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading zip lookup response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("zip lookup failed for %s: %s", zip5, resp.Status)
	}

	var response struct {
		Places []struct {
			PlaceName string `json:"place name"`
		} `json:"places"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, "parsing zip lookup response")
	}
	if len(response.Places) == 0 {
		return "", nil
	}

	city := response.Places[0].PlaceName
	c.mu.Lock()
	c.cache[zip5] = city
	c.mu.Unlock()

	return city, nil
}
