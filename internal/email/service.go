// Package email delivers registration review notifications over SMTP.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Config holds SMTP connection settings. An empty Host disables
// delivery entirely.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// Service sends approval outcome mail. It implements the notifier
// contract used by the registration workflow.
type Service struct {
	cfg    Config
	logger *slog.Logger
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// Enabled reports whether outbound mail is configured.
func (s *Service) Enabled() bool { return s.cfg.Host != "" }

// NotifyReviewed mails the applicant the outcome of their registration
// review.
func (s *Service) NotifyReviewed(email, displayName string, approved bool, notes string) error {
	if !s.Enabled() {
		s.logger.Debug("smtp disabled, skipping notification", "email", email)
		return nil
	}

	subject := "Your account request was approved"
	body := fmt.Sprintf("Hello %s,\n\nYour account has been approved. You can now log in.\n", displayName)
	if !approved {
		subject = "Your account request was declined"
		body = fmt.Sprintf("Hello %s,\n\nYour account request was declined.\n", displayName)
	}
	if notes != "" {
		body += fmt.Sprintf("\nReviewer notes: %s\n", notes)
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + email,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", email, err)
	}

	s.logger.Info("notification sent", "email", email, "approved", approved)
	return nil
}
