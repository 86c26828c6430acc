// Package notify delivers fired alerts over the tenant's configured
// channels and reports one receipt per attempt. Delivery failures never
// fail the monitoring run; they are recorded on the receipt.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	demomodel "github.com/demoforge/demoforge/internal/demo/model"
	"github.com/demoforge/demoforge/internal/metrics"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

// Service fans one alert out to the requested channels.
type Service struct {
	resend    *resend.Client
	fromEmail string
	smsFrom   string
}

// New builds the notifier. An empty Resend API key leaves the email client
// nil; email deliveries then fail with a recorded receipt instead of
// panicking.
func New(resendAPIKey, fromEmail, smsFrom string) *Service {
	var client *resend.Client
	if resendAPIKey != "" {
		client = resend.NewClient(resendAPIKey)
	}
	return &Service{resend: client, fromEmail: fromEmail, smsFrom: smsFrom}
}

// Deliver attempts every requested channel and returns a receipt per
// attempt. The alert row itself is the in-app notification, so the in_app
// channel always succeeds once the alert is persisted.
func (s *Service) Deliver(ctx context.Context, alert *model.ContractorAlert, channels []model.Channel, demo *demomodel.Demo) []model.NotificationSent {
	data := templateData{
		Emoji:        severityEmoji(alert.Severity),
		Color:        severityColor(alert.Severity),
		Severity:     strings.ToUpper(string(alert.Severity)),
		BusinessName: demo.BusinessName,
		Title:        alert.Title,
		Message:      alert.Message,
		Actions:      alert.RecommendedActions,
	}

	receipts := make([]model.NotificationSent, 0, len(channels))
	for _, ch := range channels {
		receipt := model.NotificationSent{Channel: ch, Success: true, SentAt: time.Now().UTC()}
		var err error
		switch ch {
		case model.ChannelInApp:
			// nothing to send; the persisted alert is the in-app surface
		case model.ChannelEmail:
			err = s.sendEmail(ctx, demo, data)
		case model.ChannelSMS:
			err = s.sendSMS(demo, data)
		default:
			err = fmt.Errorf("unknown notification channel: %s", ch)
		}
		status := "ok"
		if err != nil {
			receipt.Success = false
			receipt.Error = err.Error()
			status = "error"
			log.Error().Err(err).Str("alert_id", alert.ID).Str("channel", string(ch)).Msg("notification delivery failed")
		}
		metrics.NotificationsSent.WithLabelValues(string(ch), status).Inc()
		receipts = append(receipts, receipt)
	}
	return receipts
}

func (s *Service) sendEmail(ctx context.Context, demo *demomodel.Demo, data templateData) error {
	if s.resend == nil {
		return fmt.Errorf("email notifier not configured")
	}
	if demo.ContactEmail == "" {
		return fmt.Errorf("tenant has no contact email")
	}
	subject, err := render(subjectTmpl, data)
	if err != nil {
		return err
	}
	html, err := render(htmlTmpl, data)
	if err != nil {
		return err
	}
	text, err := render(textTmpl, data)
	if err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{demo.ContactEmail},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	if _, err := s.resend.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// sendSMS is a logging stub; no SMS provider is wired yet.
// TODO: plug in Twilio once the account is provisioned.
func (s *Service) sendSMS(demo *demomodel.Demo, data templateData) error {
	if s.smsFrom == "" {
		return fmt.Errorf("sms notifier not configured")
	}
	if demo.ContactPhone == "" {
		return fmt.Errorf("tenant has no contact phone")
	}
	body, err := render(smsTmpl, data)
	if err != nil {
		return err
	}
	log.Info().Str("to", demo.ContactPhone).Str("from", s.smsFrom).Str("body", body).Msg("sms delivery (stub)")
	return nil
}
