// internal/pipeline/notify/handler.go

// Package notify dispatches candidate notifications over SES email and
// SNS SMS. Delivery is best effort: the pipeline outcome never depends
// on a notification going through.
package notify

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"cv-screening/internal/common/logger"
	"cv-screening/internal/common/metrics"
)

type Handler struct {
	config *HandlerConfig
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

func NewHandler(cfg *HandlerConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute sends one email and one SMS, a single attempt each. Channel
// failures are logged and reflected in the output, never returned.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	out := &Output{}
	log := h.logger.WithFields(map[string]interface{}{
		"variant":   string(input.Variant),
		"reference": input.Reference,
	})

	if h.config.EmailEnabled && input.Recipient.Email != "" {
		if err := h.sendEmail(ctx, input); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failure").Inc()
			log.WithError(err).Warn("email notification failed", map[string]interface{}{
				"recipient": input.Recipient.Email,
			})
		} else {
			metrics.NotificationsSent.WithLabelValues("email", "success").Inc()
			out.EmailSent = true
		}
	}

	if h.config.SMSEnabled && input.Recipient.Phone != "" {
		if err := h.sendSMS(ctx, input); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failure").Inc()
			log.WithError(err).Warn("sms notification failed", map[string]interface{}{
				"recipient": input.Recipient.Phone,
			})
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", "success").Inc()
			out.SmsSent = true
		}
	}

	log.Info("notification dispatched", map[string]interface{}{
		"email_sent": out.EmailSent,
		"sms_sent":   out.SmsSent,
	})
	return out
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject, htmlBody := renderEmail(input)

	source := h.config.FromEmail
	if h.config.FromName != "" {
		source = h.config.FromName + " <" + h.config.FromEmail + ">"
	}

	_, err := h.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &sestypes.Destination{
			ToAddresses: []string{input.Recipient.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &sestypes.Body{
				Html: &sestypes.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	phone := NormalizePhone(input.Recipient.Phone, h.config.DefaultCountryPrefix)

	_, err := h.sns.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(renderSMS(input)),
		PhoneNumber: aws.String(phone),
	})
	return err
}

// NormalizePhone strips separators and prepends the default country
// prefix when the number is not already international.
func NormalizePhone(phone, defaultPrefix string) string {
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return cleaned
	}

	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "00") {
		return "+" + cleaned[2:]
	}
	return defaultPrefix + cleaned
}
