package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration values
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG"`

	// CRM contact-creation endpoint. The auth scheme is tenant-specific and
	// fixed at deployment time: "bearer", "raw" or "header".
	CRMAPIKey          string `envconfig:"CRM_API_KEY"`
	CRMContactEndpoint string `envconfig:"CRM_CONTACT_ENDPOINT"`
	CRMAuthScheme      string `envconfig:"CRM_AUTH_SCHEME" default:"bearer"`
	CRMAuthHeader      string `envconfig:"CRM_AUTH_HEADER" default:"X-Api-Key"`

	// CAPTCHA verification runs only when the secret is set.
	RecaptchaSecret string `envconfig:"RECAPTCHA_SECRET"`

	// Lead notification mail is sent only when all three are set.
	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	LeadNotifyFrom string `envconfig:"LEAD_NOTIFY_FROM"`
	LeadNotifyTo   string `envconfig:"LEAD_NOTIFY_TO"`

	AllowedOrigins      []string `envconfig:"ALLOWED_ORIGINS" default:"https://zenithroofingca.com,https://www.zenithroofingca.com,https://zenithroofingservices.com,https://www.zenithroofingservices.com,http://localhost:8888,http://localhost:5173"`
	PreviewOriginSuffix string   `envconfig:"PREVIEW_ORIGIN_SUFFIX" default:".netlify.app"`
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CRMConfigured reports whether the CRM call can be made at all.
func (c *Config) CRMConfigured() bool {
	return c.CRMAPIKey != "" && c.CRMContactEndpoint != ""
}

// CaptchaConfigured reports whether token verification is enabled.
func (c *Config) CaptchaConfigured() bool {
	return c.RecaptchaSecret != ""
}

// MailConfigured reports whether lead notification mail is enabled.
func (c *Config) MailConfigured() bool {
	return c.SendGridAPIKey != "" && c.LeadNotifyFrom != "" && c.LeadNotifyTo != ""
}
