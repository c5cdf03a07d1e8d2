// internal/pipeline/notify/handler_test.go
package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-screening/internal/common/logger"
	"cv-screening/internal/pipeline/decide"
)

type fakeSES struct {
	lastInput *ses.SendEmailInput
	err       error
	calls     int
}

func (f *fakeSES) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	lastInput *sns.PublishInput
	err       error
	calls     int
}

func (f *fakeSNS) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func testConfig() *HandlerConfig {
	return &HandlerConfig{
		EmailEnabled:         true,
		FromEmail:            "rh@example.com",
		FromName:             "Équipe RH",
		SMSEnabled:           true,
		DefaultCountryPrefix: "+216",
	}
}

func testInput(variant decide.Variant) *Input {
	return &Input{
		Variant: variant,
		Recipient: Recipient{
			Name:  "Amina Ben Salah",
			Email: "amina@example.com",
			Phone: "20 123 456",
		},
		JobTitle:  "Développeur Go",
		Reference: "3f2a9c1d4e7b0",
	}
}

func TestExecute_BothChannels(t *testing.T) {
	sesMock, snsMock := &fakeSES{}, &fakeSNS{}
	h := NewHandler(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	out := h.Execute(context.Background(), testInput(decide.VariantAccepted))

	assert.True(t, out.EmailSent)
	assert.True(t, out.SmsSent)
	assert.Equal(t, 1, sesMock.calls)
	assert.Equal(t, 1, snsMock.calls)

	require.NotNil(t, sesMock.lastInput)
	assert.Equal(t, "Équipe RH <rh@example.com>", *sesMock.lastInput.Source)
	assert.Equal(t, []string{"amina@example.com"}, sesMock.lastInput.Destination.ToAddresses)
	assert.Contains(t, *sesMock.lastInput.Message.Subject.Data, "Candidature enregistrée")
	assert.Contains(t, *sesMock.lastInput.Message.Body.Html.Data, "3f2a9c1d4e7b0")

	require.NotNil(t, snsMock.lastInput)
	assert.Equal(t, "+21620123456", *snsMock.lastInput.PhoneNumber)
	assert.Contains(t, *snsMock.lastInput.Message, "réf 3f2a9c1d4e7b0")
}

func TestExecute_EmailFailureDoesNotBlockSMS(t *testing.T) {
	sesMock := &fakeSES{err: fmt.Errorf("ses throttled")}
	snsMock := &fakeSNS{}
	h := NewHandler(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	out := h.Execute(context.Background(), testInput(decide.VariantRejected))

	assert.False(t, out.EmailSent)
	assert.True(t, out.SmsSent)
	assert.Equal(t, 1, sesMock.calls)
	assert.Equal(t, 1, snsMock.calls)
}

func TestExecute_SingleAttemptPerChannel(t *testing.T) {
	sesMock := &fakeSES{err: fmt.Errorf("unreachable")}
	snsMock := &fakeSNS{err: fmt.Errorf("unreachable")}
	h := NewHandler(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	out := h.Execute(context.Background(), testInput(decide.VariantError))

	assert.False(t, out.EmailSent)
	assert.False(t, out.SmsSent)
	assert.Equal(t, 1, sesMock.calls)
	assert.Equal(t, 1, snsMock.calls)
}

func TestExecute_DisabledChannelsSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	sesMock, snsMock := &fakeSES{}, &fakeSNS{}
	h := NewHandler(cfg, sesMock, snsMock, logger.NewTestLogger(t))

	out := h.Execute(context.Background(), testInput(decide.VariantAccepted))

	assert.False(t, out.EmailSent)
	assert.False(t, out.SmsSent)
	assert.Zero(t, sesMock.calls)
	assert.Zero(t, snsMock.calls)
}

func TestExecute_MissingContactSkipsChannel(t *testing.T) {
	sesMock, snsMock := &fakeSES{}, &fakeSNS{}
	h := NewHandler(testConfig(), sesMock, snsMock, logger.NewTestLogger(t))

	in := testInput(decide.VariantAccepted)
	in.Recipient.Phone = ""
	out := h.Execute(context.Background(), in)

	assert.True(t, out.EmailSent)
	assert.False(t, out.SmsSent)
	assert.Zero(t, snsMock.calls)
}

func TestRenderEmail_Variants(t *testing.T) {
	for variant, fragment := range map[decide.Variant]string{
		decide.VariantAccepted: "en cours d'examen",
		decide.VariantRejected: "ne pouvons malheureusement pas donner",
		decide.VariantError:    "examiné manuellement",
	} {
		subject, body := renderEmail(testInput(variant))
		assert.NotEmpty(t, subject, string(variant))
		assert.Contains(t, body, fragment, string(variant))
		assert.Contains(t, body, "3f2a9c1d4e7b0", string(variant))
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20 123 456", "+21620123456"},
		{"+33 6 12 34 56 78", "+33612345678"},
		{"0021620123456", "+21620123456"},
		{"20-123-456", "+21620123456"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in, "+216"), tt.in)
	}
}
