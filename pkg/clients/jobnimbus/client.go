package jobnimbus

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zenithroofing/lead-service/pkg/models"
)

// Rejection text the contact endpoint returns for a display-name collision.
const duplicateMarker = "duplicate contact exists"

// AuthScheme names how the API key is presented to the tenant.
type AuthScheme string

const (
	AuthBearer AuthScheme = "bearer" // Authorization: Bearer <key>
	AuthRaw    AuthScheme = "raw"    // Authorization: <key>
	AuthHeader AuthScheme = "header" // <custom header>: <key>
)

// SchemeFromString maps a config value onto a known auth scheme,
// defaulting to bearer.
func SchemeFromString(s string) AuthScheme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw":
		return AuthRaw
	case "header":
		return AuthHeader
	default:
		return AuthBearer
	}
}

// Result carries the CRM's verbatim response so callers can relay it.
type Result struct {
	StatusCode int
	Body       []byte
}

// Duplicate reports whether the CRM rejected the contact as a duplicate.
func (r *Result) Duplicate() bool {
	return r.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(string(r.Body)), duplicateMarker)
}

// Client defines the interface for creating contacts in the CRM
type Client interface {
	CreateContact(ctx context.Context, payload *models.ContactPayload) (*Result, error)
}

type clientImpl struct {
	apiKey     string
	endpoint   string
	scheme     AuthScheme
	authHeader string
	httpClient *http.Client
}

// NewClient creates a new CRM client. The auth scheme is tenant-specific
// and selected once at deployment, never guessed per request.
func NewClient(apiKey, endpoint string, scheme AuthScheme, authHeader string) Client {
	return &clientImpl{
		apiKey:     apiKey,
		endpoint:   endpoint,
		scheme:     scheme,
		authHeader: authHeader,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *clientImpl) CreateContact(ctx context.Context, payload *models.ContactPayload) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encoding contact payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "creating contact request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	switch c.scheme {
	case AuthRaw:
		req.Header.Set("Authorization", c.apiKey)
	case AuthHeader:
		req.Header.Set(c.authHeader, c.apiKey)
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling contact endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading contact response")
	}

	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}
