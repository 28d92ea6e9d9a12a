package recaptcha

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// VerifyResponse represents the provider's token-verification response
type VerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client defines the interface for server-side CAPTCHA verification
type Client interface {
	Verify(ctx context.Context, token string) (bool, error)
}

type clientImpl struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewClient creates a new reCAPTCHA client
func NewClient(secret string) Client {
	return NewClientWithURL(secret, defaultVerifyURL)
}

// NewClientWithURL points verification at a non-default endpoint; tests use
// it to stand in a fake provider.
func NewClientWithURL(secret, verifyURL string) Client {
	return &clientImpl{
		secret:     secret,
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *clientImpl) Verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, errors.Wrap(err, "creating verification request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "calling verification endpoint")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.Wrap(err, "reading verification response")
	}

	var vr VerifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return false, errors.Wrap(err, "parsing verification response")
	}

	return vr.Success, nil
}
