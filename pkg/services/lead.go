package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zenithroofing/lead-service/pkg/clients/jobnimbus"
	"github.com/zenithroofing/lead-service/pkg/clients/recaptcha"
	"github.com/zenithroofing/lead-service/pkg/clients/sendgrid"
	"github.com/zenithroofing/lead-service/pkg/config"
	"github.com/zenithroofing/lead-service/pkg/models"
	"github.com/zenithroofing/lead-service/pkg/utils"
)

// Mail status flags attached to the response body for operator
// diagnostics; delivery failures never fail the submission.
const (
	MailSkipped = "skipped"
	MailSent    = "sent"
	MailError   = "error"
)

// SubmissionResult is what the HTTP layer relays back to the caller. The
// body is the CRM's response, augmented with _mailStatus when it is JSON.
type SubmissionResult struct {
	StatusCode int
	Body       []byte
}

// LeadService defines the interface for processing lead submissions
type LeadService interface {
	ProcessLeadSubmission(ctx context.Context, sub *models.LeadSubmission, origin string) *SubmissionResult
}

type leadServiceImpl struct {
	crmClient     jobnimbus.Client
	captchaClient recaptcha.Client
	mailClient    sendgrid.Client
	config        *config.Config
	logger        *zap.Logger
	now           func() time.Time
}

// NewLeadService creates a new lead service
func NewLeadService(
	crmClient jobnimbus.Client,
	captchaClient recaptcha.Client,
	mailClient sendgrid.Client,
	cfg *config.Config,
	logger *zap.Logger,
) LeadService {
	return &leadServiceImpl{
		crmClient:     crmClient,
		captchaClient: captchaClient,
		mailClient:    mailClient,
		config:        cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// ProcessLeadSubmission runs the whole pipeline: CAPTCHA gate, phone
// validation, payload assembly, CRM submission with a single
// duplicate-name retry, then a best-effort notification email.
func (s *leadServiceImpl) ProcessLeadSubmission(ctx context.Context, sub *models.LeadSubmission, origin string) *SubmissionResult {
	if s.config.CaptchaConfigured() {
		token := strings.TrimSpace(sub.RecaptchaToken)
		if token == "" {
			return errorResult(http.StatusBadRequest, "Missing recaptcha token", "")
		}
		ok, err := s.captchaClient.Verify(ctx, token)
		if err != nil {
			s.logger.Error("Recaptcha verification error", zap.Error(err))
			return errorResult(http.StatusBadRequest, "Recaptcha failed", "")
		}
		if !ok {
			return errorResult(http.StatusBadRequest, "Recaptcha failed", "")
		}
	}

	phone := utils.NormalizePhone(sub.RawPhone())
	if phone == "" {
		return errorResult(http.StatusBadRequest, "Phone number is required", "")
	}
	if len(phone) != 10 {
		return errorResult(http.StatusBadRequest, "Invalid phone number format",
			fmt.Sprintf("Expected 10 digits, got %d (%s)", len(phone), phone))
	}

	payload := s.buildContactPayload(sub, phone, origin)
	s.logger.Info("Submitting lead to CRM",
		zap.String("display_name", payload.DisplayName),
		zap.String("source", payload.Source))

	result, err := s.crmClient.CreateContact(ctx, payload)
	if err != nil {
		s.logger.Error("CRM call failed", zap.Error(err))
		return errorResult(http.StatusBadGateway, "CRM request failed", "")
	}

	if result.Duplicate() {
		payload.DisplayName = RetryDisplayName(payload.DisplayName, s.now())
		s.logger.Info("Duplicate contact, retrying once with unique display name",
			zap.String("display_name", payload.DisplayName))

		result, err = s.crmClient.CreateContact(ctx, payload)
		if err != nil {
			s.logger.Error("CRM retry failed", zap.Error(err))
			return errorResult(http.StatusBadGateway, "CRM request failed", "")
		}
	}

	mailStatus := MailSkipped
	if s.config.MailConfigured() && result.StatusCode >= 200 && result.StatusCode < 300 {
		mailStatus = s.sendNotification(sub, payload)
	}

	return &SubmissionResult{
		StatusCode: result.StatusCode,
		Body:       injectMailStatus(result.Body, mailStatus),
	}
}

func (s *leadServiceImpl) buildContactPayload(sub *models.LeadSubmission, phone, origin string) *models.ContactPayload {
	first := strings.TrimSpace(sub.FirstName)
	last := strings.TrimSpace(sub.LastName)
	email := strings.TrimSpace(sub.Email)
	formatted := utils.FormatPhone(phone)

	base := firstNonEmpty(
		strings.TrimSpace(sub.DisplayName),
		collapseSpaces(first+" "+last),
		email,
		formatted,
		"Website Lead",
	)

	lines := []string{"Phone: " + formatted}
	appendLine := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	appendLine("Service Type", sub.ServiceType)
	appendLine("Details", sub.Description)
	appendLine("Heard About Us", sub.ReferralSource)
	appendLine("Category", firstNonEmpty(sub.ServiceCategory, sub.Category))
	appendLine("Page", sub.PageTitle)
	appendLine("URL", sub.PageURL)
	appendLine("Host", sub.Hostname)

	street := strings.TrimSpace(sub.StreetAddress)
	city := strings.TrimSpace(sub.City)
	state := strings.TrimSpace(sub.State)
	zip := strings.TrimSpace(sub.Zip)

	return &models.ContactPayload{
		DisplayName:    BuildDisplayName(base, city, zip, phone),
		FirstName:      first,
		LastName:       last,
		Email:          email,
		Phone:          phone,
		PhoneFormatted: formatted,
		AddressLine1:   street,
		City:           city,
		StateText:      state,
		Zip:            zip,
		Address:        strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s", street, city, state, zip)),
		Description:    strings.Join(lines, "\n"),
		ServiceType:    sub.ServiceType,
		ReferralSource: sub.ReferralSource,
		Source:         "website-" + originKey(origin),
		Version:        "lead-intake-" + s.now().UTC().Format("2006-01-02"),
	}
}

func (s *leadServiceImpl) sendNotification(sub *models.LeadSubmission, payload *models.ContactPayload) string {
	subject := "New Website Lead: " + firstNonEmpty(
		collapseSpaces(payload.FirstName+" "+payload.LastName),
		payload.PhoneFormatted,
		payload.Email,
	)

	text := fmt.Sprintf("New website lead\nName: %s %s\nEmail: %s\nPhone: %s\nAddress: %s\n\n%s",
		payload.FirstName, payload.LastName, payload.Email, payload.PhoneFormatted,
		payload.Address, payload.Description)

	html := fmt.Sprintf(`<h2>New Website Lead</h2>
<table cellspacing="0" cellpadding="6" style="font-family:Arial,Helvetica,sans-serif;font-size:14px">
<tr><td><b>Name</b></td><td>%s %s</td></tr>
<tr><td><b>Email</b></td><td>%s</td></tr>
<tr><td><b>Phone</b></td><td>%s</td></tr>
<tr><td><b>Address</b></td><td>%s</td></tr>
<tr><td><b>Details</b></td><td>%s</td></tr>
</table>`,
		payload.FirstName, payload.LastName, payload.Email, payload.PhoneFormatted,
		payload.Address, strings.ReplaceAll(payload.Description, "\n", "<br>"))

	status, err := s.mailClient.SendNotification(&sendgrid.Notification{
		Subject:     subject,
		PlainText:   text,
		HTML:        html,
		ReplyTo:     payload.Email,
		Attachments: sub.Attachments,
	})
	if err != nil {
		s.logger.Warn("Lead notification failed", zap.Error(err))
		return MailError
	}
	if status >= 200 && status < 300 {
		return MailSent
	}
	return strconv.Itoa(status)
}

// injectMailStatus adds the _mailStatus flag to a JSON CRM response. A
// non-JSON body is relayed untouched.
func injectMailStatus(body []byte, mailStatus string) []byte {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return body
	}
	parsed["_mailStatus"] = mailStatus
	out, err := json.Marshal(parsed)
	if err != nil {
		return body
	}
	return out
}

func errorResult(status int, msg, details string) *SubmissionResult {
	body, _ := json.Marshal(models.ErrorResponse{Error: msg, Details: details})
	return &SubmissionResult{StatusCode: status, Body: body}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
