// Package mailer sends the transactional emails of the account lifecycle:
// verification links, password reset links, and reset confirmations.
package mailer

import (
	"fmt"
	"log/slog"

	"github.com/vicentejluz/taskmanager/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends account lifecycle emails. Implementations must never leak
// token values into logs.
type Mailer interface {
	// SendVerificationEmail delivers an email verification token.
	SendVerificationEmail(to, name, token string) error

	// SendPasswordResetEmail delivers a password reset token.
	SendPasswordResetEmail(to, name, token string) error

	// SendPasswordResetSuccessEmail notifies the user their password was
	// changed through the reset flow, including the requesting IP.
	SendPasswordResetSuccessEmail(to, name, ip string) error
}

// SMTPMailer sends mail through an SMTP relay. When no host is configured
// it logs and skips sending, which keeps local development working without
// a mail server.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer using the given SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

var _ Mailer = (*SMTPMailer)(nil)

// SendVerificationEmail implements Mailer.SendVerificationEmail
func (m *SMTPMailer) SendVerificationEmail(to, name, token string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Verify your email</h2>
    <p>Hi %s,</p>
    <p>Use the token below to verify your email address and activate your account:</p>
    <div style="font-size: 20px; font-weight: bold; letter-spacing: 1px;">%s</div>
    <p>If you did not register, you can ignore this email.</p>
  </div>
</body>
</html>`, name, token)

	return m.send(to, "Verify your email", body, "verification")
}

// SendPasswordResetEmail implements Mailer.SendPasswordResetEmail
func (m *SMTPMailer) SendPasswordResetEmail(to, name, token string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Password reset</h2>
    <p>Hi %s,</p>
    <p>Use the token below to reset your password:</p>
    <div style="font-size: 20px; font-weight: bold; letter-spacing: 1px;">%s</div>
    <p>The token expires shortly. If you did not request a reset, you can ignore this email.</p>
  </div>
</body>
</html>`, name, token)

	return m.send(to, "Password reset", body, "password reset")
}

// SendPasswordResetSuccessEmail implements Mailer.SendPasswordResetSuccessEmail
func (m *SMTPMailer) SendPasswordResetSuccessEmail(to, name, ip string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Your password was changed</h2>
    <p>Hi %s,</p>
    <p>Your password was just reset from IP address %s.</p>
    <p>If this was not you, contact support immediately.</p>
  </div>
</body>
</html>`, name, ip)

	return m.send(to, "Your password was changed", body, "password reset confirmation")
}

func (m *SMTPMailer) send(to, subject, body, kind string) error {
	if m.cfg.Host == "" {
		m.logger.Warn("smtp host not configured, skipping email",
			slog.String("kind", kind),
			slog.String("to", to))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("email sent",
		slog.String("kind", kind),
		slog.String("to", to))
	return nil
}
