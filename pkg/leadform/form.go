// Package leadform is the one configurable lead-capture component that
// replaced the per-page copies of the submission widget. Page variations
// (locked service type, redirect target, hidden fields) live in FormConfig;
// the submit lifecycle lives on a Form instance.
package leadform

import (
	"strings"
	"time"

	"github.com/zenithroofing/lead-service/pkg/models"
)

// FormConfig captures the per-page variations that used to be copy-pasted
// scripts.
type FormConfig struct {
	// Endpoint is the lead-intake URL submissions are posted to.
	Endpoint string

	// ServiceType locks the form to one service; it outranks everything
	// except an explicit service_type field value.
	ServiceType string

	// Category is the page section's category, the old data-category
	// attribute.
	Category string

	PagePath  string
	PageTitle string
	Hostname  string

	// RedirectURL wins over SuccessMessage when both are set.
	RedirectURL    string
	SuccessMessage string

	// HoneypotField names a decoy field; a non-empty value means a bot
	// filled the form and the submission is silently dropped.
	HoneypotField string

	// RequireCaptcha demands a recaptcha_token value before submitting.
	RequireCaptcha bool

	// RequiredFields lists canonical field keys that must be non-empty.
	// Empty means the default of first_name, last_name and phone.
	RequiredFields []string

	// MaxAttachmentBytes caps the combined attachment size. Zero applies
	// the 25 MB default.
	MaxAttachmentBytes int64

	// HiddenFields are fixed values merged into the submission, the old
	// hidden <input> elements.
	HiddenFields map[string]string
}

const defaultMaxAttachmentBytes = 25 << 20

var defaultRequiredFields = []string{"first_name", "last_name", "phone"}

// fieldAliases maps the naming conventions seen across the site's form
// variants onto canonical keys. First non-empty match wins.
var fieldAliases = map[string][]string{
	"first_name":      {"first_name", "firstName", "first"},
	"last_name":       {"last_name", "lastName", "last"},
	"phone":           {"phone", "phone_number", "phoneNumber"},
	"email":           {"email"},
	"street_address":  {"street_address", "address1", "streetname"},
	"city":            {"city"},
	"state":           {"state"},
	"zip":             {"zip", "zip_code", "zipcode"},
	"service_type":    {"service_type", "serviceType"},
	"referral_source": {"referral_source", "referralSource", "heard_about"},
	"description":     {"description", "message", "notes"},
	"recaptcha_token": {"recaptcha_token", "g-recaptcha-response"},
}

func fieldValue(values map[string]string, canonical string) string {
	names, ok := fieldAliases[canonical]
	if !ok {
		names = []string{canonical}
	}
	for _, name := range names {
		if v := strings.TrimSpace(values[name]); v != "" {
			return v
		}
	}
	return ""
}

// splitName breaks a single full-name field into first and last. Everything
// after the first word is the last name.
func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Disclaimer appended for billed categories; the CRM's description field is
// the only place the office reliably reads.
const billingDisclaimer = "Real-estate transaction inspections and third-party report requests are billed services."

func isBilledCategory(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "real estate") ||
		strings.Contains(c, "inspection") ||
		strings.Contains(c, "report")
}

func (f *Form) buildSubmission(values map[string]string) *models.LeadSubmission {
	merged := make(map[string]string, len(values)+len(f.cfg.HiddenFields))
	for k, v := range f.cfg.HiddenFields {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}

	first := fieldValue(merged, "first_name")
	last := fieldValue(merged, "last_name")
	if first == "" && last == "" {
		first, last = splitName(merged["name"])
	}

	description := fieldValue(merged, "description")
	category := strings.TrimSpace(f.cfg.Category)
	if isBilledCategory(category) {
		if description != "" {
			description += "\n"
		}
		description += billingDisclaimer
	}

	return &models.LeadSubmission{
		FirstName:       first,
		LastName:        last,
		Phone:           fieldValue(merged, "phone"),
		Email:           fieldValue(merged, "email"),
		StreetAddress:   fieldValue(merged, "street_address"),
		City:            fieldValue(merged, "city"),
		State:           fieldValue(merged, "state"),
		Zip:             fieldValue(merged, "zip"),
		ServiceType:     f.inferServiceType(merged),
		ReferralSource:  fieldValue(merged, "referral_source"),
		Description:     description,
		Page:            f.cfg.PagePath,
		PageURL:         pageURL(f.cfg.Hostname, f.cfg.PagePath),
		PageTitle:       f.cfg.PageTitle,
		Hostname:        f.cfg.Hostname,
		ServiceCategory: category,
		RecaptchaToken:  fieldValue(merged, "recaptcha_token"),
		SubmittedAt:     f.now().UTC().Format(time.RFC3339),
	}
}

// inferServiceType resolves the service when no explicit selection exists:
// explicit field, then locked config, then section category, then a guess
// from the page path, then the page title.
func (f *Form) inferServiceType(values map[string]string) string {
	if v := fieldValue(values, "service_type"); v != "" {
		return v
	}
	if f.cfg.ServiceType != "" {
		return f.cfg.ServiceType
	}
	if f.cfg.Category != "" {
		return f.cfg.Category
	}
	if guess := guessFromPath(f.cfg.PagePath); guess != "" {
		return guess
	}
	if f.cfg.PageTitle != "" {
		return f.cfg.PageTitle
	}
	return "Website"
}

func guessFromPath(path string) string {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return ""
	}
	last := strings.TrimSuffix(segments[len(segments)-1], ".html")
	last = strings.NewReplacer("-", " ", "_", " ").Replace(last)
	return strings.TrimSpace(last)
}

func pageURL(hostname, path string) string {
	if hostname == "" {
		return path
	}
	if path == "" {
		return "https://" + hostname
	}
	return "https://" + hostname + "/" + strings.TrimPrefix(path, "/")
}
