package models

// LeadSubmission is the canonical record every site form posts to the
// lead-intake endpoint. Optional fields unmarshal to the empty string.
// The phone aliases exist because older form variants used different
// naming conventions; RawPhone picks the first non-empty one.
type LeadSubmission struct {
	FirstName        string       `json:"first_name" form:"first_name"`
	LastName         string       `json:"last_name" form:"last_name"`
	DisplayName      string       `json:"display_name,omitempty" form:"display_name"`
	Phone            string       `json:"phone" form:"phone"`
	PhoneNumber      string       `json:"phone_number,omitempty" form:"phone_number"`
	PhoneNumberCamel string       `json:"phoneNumber,omitempty" form:"phoneNumber"`
	Email            string       `json:"email" form:"email"`
	StreetAddress    string       `json:"street_address" form:"street_address"`
	City             string       `json:"city" form:"city"`
	State            string       `json:"state" form:"state"`
	Zip              string       `json:"zip" form:"zip"`
	ServiceType      string       `json:"service_type" form:"service_type"`
	ReferralSource   string       `json:"referral_source" form:"referral_source"`
	Description      string       `json:"description" form:"description"`
	Page             string       `json:"page" form:"page"`
	Category         string       `json:"category,omitempty" form:"category"`
	ServiceCategory  string       `json:"service_category,omitempty" form:"service_category"`
	PageURL          string       `json:"page_url,omitempty" form:"page_url"`
	PageTitle        string       `json:"page_title,omitempty" form:"page_title"`
	Hostname         string       `json:"hostname,omitempty" form:"hostname"`
	SubmittedAt      string       `json:"submitted_at,omitempty" form:"submitted_at"`
	RecaptchaToken   string       `json:"recaptcha_token,omitempty" form:"recaptcha_token"`
	Attachments      []Attachment `json:"attachments,omitempty"`
}

// RawPhone returns the submitted phone value regardless of which field
// name the form used.
func (s *LeadSubmission) RawPhone() string {
	if s.PhoneNumber != "" {
		return s.PhoneNumber
	}
	if s.Phone != "" {
		return s.Phone
	}
	return s.PhoneNumberCamel
}

// Attachment is one base64-encoded file uploaded with a submission.
type Attachment struct {
	Filename string `json:"filename"`
	Type     string `json:"type,omitempty"`
	Data     string `json:"data"`
	Size     int64  `json:"size,omitempty"`
}

// ContactPayload is the contact record sent to the CRM. Address is the
// human-readable string the CRM shows in list views; the discrete fields
// are the canonical structured representation.
type ContactPayload struct {
	DisplayName    string `json:"display_name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PhoneFormatted string `json:"phone_formatted"`
	AddressLine1   string `json:"address_line1"`
	City           string `json:"city"`
	StateText      string `json:"state_text"`
	Zip            string `json:"zip"`
	Address        string `json:"address"`
	Description    string `json:"description"`
	ServiceType    string `json:"service_type"`
	ReferralSource string `json:"referral_source"`
	Source         string `json:"_source"`
	Version        string `json:"_version"`
}

// ErrorResponse is the endpoint's error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
