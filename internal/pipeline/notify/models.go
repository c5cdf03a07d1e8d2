// internal/pipeline/notify/models.go
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"cv-screening/internal/pipeline/decide"
)

// Recipient identifies who receives the notification.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Input describes one dispatch request.
type Input struct {
	Variant   decide.Variant `json:"variant"`
	Recipient Recipient      `json:"recipient"`
	JobTitle  string         `json:"job_title"`
	Reference string         `json:"reference"`
}

// Output reports per-channel delivery. A false value means the channel
// was disabled, unaddressed or failed; it is never an error.
type Output struct {
	EmailSent bool `json:"email_sent"`
	SmsSent   bool `json:"sms_sent"`
}

// SESService abstracts the SES client for testing.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService abstracts the SNS client for testing.
type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}
