// internal/pipeline/notify/config.go
package notify

import "cv-screening/internal/common/config"

const StageName = "notify"

// HandlerConfig holds notification channel settings.
type HandlerConfig struct {
	EmailEnabled bool
	FromEmail    string
	FromName     string

	SMSEnabled bool
	// DefaultCountryPrefix is prepended to local phone numbers.
	DefaultCountryPrefix string
}

func NewHandlerConfig(cfg *config.Config) *HandlerConfig {
	return &HandlerConfig{
		EmailEnabled:         cfg.Notifications.Email.Enabled,
		FromEmail:            cfg.Notifications.Email.FromEmail,
		FromName:             cfg.Notifications.Email.FromName,
		SMSEnabled:           cfg.Notifications.SMS.Enabled,
		DefaultCountryPrefix: cfg.Notifications.SMS.DefaultCountryPrefix,
	}
}
