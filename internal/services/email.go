package services

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/metrics"
	"github.com/arnold/smartgoals-api/internal/models"
)

var ErrEmailNotConfigured = errors.New("email is not configured")

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailService handles email sending via SendGrid
type EmailService struct {
	client   mailSender
	fromName string
	from     string
}

// Global email service instance
var Email = &EmailService{}

// InitEmail configures SendGrid. Without an API key email stays disabled.
func InitEmail(cfg config.EmailConfig) *EmailService {
	if cfg.SendGridAPIKey == "" {
		logger.L().Info("Email: no SendGrid API key, email notifications disabled")
		Email = &EmailService{}
		return Email
	}
	Email = &EmailService{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName: cfg.FromName,
		from:     cfg.FromEmail,
	}
	return Email
}

func (s *EmailService) Enabled() bool {
	return s != nil && s.client != nil
}

// Send delivers one message. The plain text body is also used for the
// HTML part, escaped and wrapped in a paragraph.
func (s *EmailService) Send(ctx context.Context, toName, toEmail, subject, text string) error {
	if !s.Enabled() {
		return ErrEmailNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(toName, toEmail)
	htmlContent := "<p>" + html.EscapeString(text) + "</p>"
	message := mail.NewSingleEmail(from, subject, to, text, htmlContent)

	response, err := s.client.Send(message)
	if err != nil {
		metrics.RecordNotification("email", "failed")
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		metrics.RecordNotification("email", "failed")
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	metrics.RecordNotification("email", "sent")
	return nil
}

func fullName(u *models.User) string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (s *EmailService) SendReminder(ctx context.Context, u *models.User, locale string, activeGoals int) error {
	return s.Send(ctx, fullName(u), u.Email,
		i18n.T(locale, i18n.ReminderEmailSubject),
		i18n.T(locale, i18n.ReminderBody, activeGoals))
}

func (s *EmailService) SendDigest(ctx context.Context, u *models.User, locale string, completedTasks int) error {
	return s.Send(ctx, fullName(u), u.Email,
		i18n.T(locale, i18n.DigestSubject),
		i18n.T(locale, i18n.DigestBody, u.DisplayName(), completedTasks))
}

func (s *EmailService) SendTest(ctx context.Context, u *models.User, locale string) error {
	return s.Send(ctx, fullName(u), u.Email,
		i18n.T(locale, i18n.EmailTestSubject),
		i18n.T(locale, i18n.EmailTestBody))
}
