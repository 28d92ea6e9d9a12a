package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenithroofing/lead-service/pkg/api"
	"github.com/zenithroofing/lead-service/pkg/clients/jobnimbus"
	"github.com/zenithroofing/lead-service/pkg/clients/recaptcha"
	"github.com/zenithroofing/lead-service/pkg/config"
	"github.com/zenithroofing/lead-service/pkg/middleware"
	"github.com/zenithroofing/lead-service/pkg/models"
	"github.com/zenithroofing/lead-service/pkg/services"
)

// fakeCRM records contact payloads and replays scripted responses.
type fakeCRM struct {
	mu        sync.Mutex
	payloads  []models.ContactPayload
	responses []crmResponse
	server    *httptest.Server
}

type crmResponse struct {
	status int
	body   string
}

func newFakeCRM(responses ...crmResponse) *fakeCRM {
	f := &fakeCRM{responses: responses}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.ContactPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.payloads = append(f.payloads, p)
		resp := f.responses[0]
		if len(f.responses) > 1 {
			f.responses = f.responses[1:]
		}
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		w.Write([]byte(resp.body))
	}))
	return f
}

func (f *fakeCRM) calls() []models.ContactPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ContactPayload(nil), f.payloads...)
}

// newTestRouter wires the stack the way main does, pointed at the fake CRM.
func newTestRouter(t *testing.T, crm *fakeCRM, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg.CRMAPIKey = "test-key"
	cfg.CRMContactEndpoint = crm.server.URL
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"https://zenithroofingca.com"}
	}
	if cfg.PreviewOriginSuffix == "" {
		cfg.PreviewOriginSuffix = ".netlify.app"
	}

	logger := zap.NewNop()
	crmClient := jobnimbus.NewClient(cfg.CRMAPIKey, cfg.CRMContactEndpoint, jobnimbus.AuthBearer, "")
	captchaClient := recaptcha.NewClient(cfg.RecaptchaSecret)
	leadService := services.NewLeadService(crmClient, captchaClient, nil, cfg, logger)

	handlers := api.NewHandlers(leadService, cfg, logger)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowedOrigins, cfg.PreviewOriginSuffix))
	router.Any("/webhook/lead-submission", handlers.HandleLeadSubmission)
	router.GET("/health", handlers.HealthCheck)
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/lead-submission", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://zenithroofingca.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLeadSubmissionSuccess(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{"jnid":"abc123"}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	w := postJSON(router, `{
		"first_name": "Jane",
		"last_name": "Doe",
		"phone": "(858) 555-0100",
		"zip": "92025",
		"service_type": "Roof Inspection"
	}`)

	assert.Equal(t, http.StatusOK, w.Code)

	calls := crm.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "8585550100", calls[0].Phone)
	assert.Equal(t, "(858) 555-0100", calls[0].PhoneFormatted)
	assert.Contains(t, calls[0].DisplayName, "Jane Doe")
	assert.True(t, strings.Contains(calls[0].DisplayName, "#0100"),
		"display name %q must carry a disambiguating suffix", calls[0].DisplayName)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc123", body["jnid"])
	assert.Equal(t, services.MailSkipped, body["_mailStatus"])
	assert.Equal(t, "https://zenithroofingca.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLeadSubmissionDuplicateRetry(t *testing.T) {
	crm := newFakeCRM(
		crmResponse{http.StatusBadRequest, `{"error":"Duplicate contact exists"}`},
		crmResponse{http.StatusCreated, `{"jnid":"second"}`},
	)
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	w := postJSON(router, `{"first_name":"Jane","last_name":"Doe","phone":"8585550100"}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	calls := crm.calls()
	require.Len(t, calls, 2)
	assert.NotEqual(t, calls[0].DisplayName, calls[1].DisplayName)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "second", body["jnid"])
}

func TestLeadSubmissionShortPhoneRejectedLocally(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	w := postJSON(router, `{"first_name":"Jane","phone":"555-1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, crm.calls(), "no outbound call for an invalid phone")
}

func TestLeadSubmissionCaptchaRequired(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{RecaptchaSecret: "secret"})

	w := postJSON(router, `{"first_name":"Jane","phone":"8585550100"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, crm.calls(), "CRM must not be called when the token is missing")
}

func TestLeadSubmissionFormEncoded(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{"jnid":"form"}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	form := url.Values{}
	form.Set("first_name", "Jane")
	form.Set("last_name", "Doe")
	form.Set("phone", "858-555-0100")

	req := httptest.NewRequest(http.MethodPost, "/webhook/lead-submission", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	calls := crm.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "8585550100", calls[0].Phone)
}

func TestLeadSubmissionWrongMethod(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/webhook/lead-submission", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Empty(t, crm.calls())
}

func TestLeadSubmissionMissingConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	cfg := &config.Config{} // no CRM key or endpoint

	handlers := api.NewHandlers(services.NewLeadService(nil, nil, nil, cfg, logger), cfg, logger)
	router := gin.New()
	router.Any("/webhook/lead-submission", handlers.HandleLeadSubmission)

	req := httptest.NewRequest(http.MethodPost, "/webhook/lead-submission", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "not configured")
}

func TestLeadSubmissionBadJSON(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	w := postJSON(router, `{"first_name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, crm.calls())
}

func TestHealthCheck(t *testing.T) {
	crm := newFakeCRM(crmResponse{http.StatusOK, `{}`})
	defer crm.server.Close()
	router := newTestRouter(t, crm, &config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
