package leadform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zenithroofing/lead-service/pkg/clients/zipcodes"
	"github.com/zenithroofing/lead-service/pkg/models"
	"github.com/zenithroofing/lead-service/pkg/utils"
)

// State tracks where a form instance is in its submit lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrSubmitInProgress rejects a second submit while one is in flight.
var ErrSubmitInProgress = errors.New("submission already in progress")

// Outcome is what the page does after a submit attempt. On validation
// failure Field names the first offending canonical field; entered values
// are never cleared on failure, so the visitor can fix and retry.
type Outcome struct {
	Success     bool
	RedirectURL string
	Message     string
	Field       string
}

// Form is one bound lead-capture form instance. All mutable submit state
// lives here, never in package globals.
type Form struct {
	cfg        FormConfig
	httpClient *http.Client
	zipClient  zipcodes.Client
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	state State
	bound bool
}

// Option configures a Form.
type Option func(*Form)

// WithZipClient enables city autofill from the ZIP when the visitor leaves
// the city blank.
func WithZipClient(c zipcodes.Client) Option {
	return func(f *Form) { f.zipClient = c }
}

// WithHTTPClient overrides the transport, mostly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Form) { f.httpClient = c }
}

// NewForm creates a form instance for one page's configuration.
func NewForm(cfg FormConfig, logger *zap.Logger, opts ...Option) *Form {
	f := &Form{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Bind marks the instance ready. A second Bind on the same instance is a
// no-op and reports false; this replaces the old window-scoped
// "already bound" flags.
func (f *Form) Bind() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bound {
		return false
	}
	f.bound = true
	return true
}

// State returns the instance's current lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Submit runs one validate-and-post pass over the given field values.
// While a submit is in flight any further Submit returns
// ErrSubmitInProgress.
func (f *Form) Submit(ctx context.Context, values map[string]string, attachments []models.Attachment) (*Outcome, error) {
	f.mu.Lock()
	if f.state == StateSubmitting || f.state == StateValidating {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.state = StateValidating
	f.mu.Unlock()

	// Bots fill the decoy field; give them a quiet success and stop.
	if f.cfg.HoneypotField != "" && values[f.cfg.HoneypotField] != "" {
		f.setState(StateIdle)
		return &Outcome{Success: true, Message: f.cfg.SuccessMessage}, nil
	}

	if out := f.validate(values, attachments); out != nil {
		f.setState(StateIdle)
		return out, nil
	}

	sub := f.buildSubmission(values)
	sub.Attachments = attachments
	f.fillCity(ctx, sub)

	f.setState(StateSubmitting)
	out := f.post(ctx, sub)
	if out.Success {
		f.setState(StateSuccess)
	} else {
		f.setState(StateError)
	}
	return out, nil
}

// Reset returns a finished form to idle, the success-or-error → idle edge
// of the lifecycle.
func (f *Form) Reset() {
	f.mu.Lock()
	if f.state != StateSubmitting {
		f.state = StateIdle
	}
	f.mu.Unlock()
}

func (f *Form) validate(values map[string]string, attachments []models.Attachment) *Outcome {
	required := f.cfg.RequiredFields
	if len(required) == 0 {
		required = defaultRequiredFields
	}
	for _, field := range required {
		if fieldValue(values, field) == "" {
			return &Outcome{Field: field, Message: "This field is required."}
		}
	}

	phone := utils.NormalizePhone(fieldValue(values, "phone"))
	if len(phone) != 10 {
		return &Outcome{Field: "phone", Message: "Please enter a valid 10-digit phone number."}
	}

	if zip := fieldValue(values, "zip"); zip != "" && !utils.ValidZip(zip) {
		return &Outcome{Field: "zip", Message: "Enter a 5-digit ZIP (or ZIP+4)."}
	}

	if f.cfg.RequireCaptcha && fieldValue(values, "recaptcha_token") == "" {
		return &Outcome{Field: "recaptcha_token", Message: "Please complete the reCAPTCHA before submitting."}
	}

	limit := f.cfg.MaxAttachmentBytes
	if limit == 0 {
		limit = defaultMaxAttachmentBytes
	}
	var total int64
	for _, a := range attachments {
		total += a.Size
	}
	if total > limit {
		return &Outcome{
			Field:   "attachments",
			Message: fmt.Sprintf("Please keep photo uploads under %d MB total.", limit>>20),
		}
	}

	return nil
}

// fillCity looks the city up from the ZIP when the visitor left it blank.
// Lookup failures are ignored; the field just stays empty.
func (f *Form) fillCity(ctx context.Context, sub *models.LeadSubmission) {
	if f.zipClient == nil || sub.City != "" || !utils.ValidZip(sub.Zip) {
		return
	}
	city, err := f.zipClient.CityForZip(ctx, sub.Zip[:5])
	if err != nil {
		f.logger.Debug("ZIP city lookup failed", zap.String("zip", sub.Zip), zap.Error(err))
		return
	}
	sub.City = city
}

func (f *Form) post(ctx context.Context, sub *models.LeadSubmission) *Outcome {
	body, err := json.Marshal(sub)
	if err != nil {
		return &Outcome{Message: "Network error. Please try again."}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &Outcome{Message: "Network error. Please try again."}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("Lead submission transport error", zap.Error(err))
		return &Outcome{Message: "Network error. Please try again."}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Outcome{Message: serverMessage(respBody)}
	}

	out := &Outcome{Success: true}
	// redirect wins when both are configured
	if f.cfg.RedirectURL != "" {
		out.RedirectURL = f.cfg.RedirectURL
	} else {
		out.Message = f.cfg.SuccessMessage
	}
	return out
}

// serverMessage surfaces the endpoint's own error text when the body
// carries one, else a generic fallback.
func serverMessage(body []byte) string {
	var envelope models.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return "Sorry, there was a problem submitting your request."
}

// EncodeAttachment wraps raw file bytes as a base64 attachment record.
func EncodeAttachment(filename, contentType string, data []byte) models.Attachment {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return models.Attachment{
		Filename: filename,
		Type:     contentType,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     int64(len(data)),
	}
}
