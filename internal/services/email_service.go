package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"teamjoin/internal/models"
)

// AdminNotifier шлёт администратору письма о результатах вступления.
type AdminNotifier interface {
	NotifyJoined(userID string, m models.Member) error
	NotifyExhausted(userID, email string, tried int) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
	admin  string
}

// NewEmailService returns nil when SMTP is not configured; callers treat a
// nil notifier as disabled.
func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, adminEmail string) AdminNotifier {
	if smtpHost == "" || adminEmail == "" {
		return nil
	}
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
		admin:  adminEmail,
	}
}

func (s *emailService) NotifyJoined(userID string, m models.Member) error {
	body := fmt.Sprintf(`
		<h3>New team member</h3>
		<p>Telegram user <strong>%s</strong> joined with <strong>%s</strong>.</p>
		<p>Joined: %s<br>Access valid till: %s</p>
	`, html.EscapeString(userID), html.EscapeString(m.Email), m.Joined, m.Expiry)

	if err := s.send("Team join succeeded", body); err != nil {
		return fmt.Errorf("failed to send join notification: %w", err)
	}
	return nil
}

func (s *emailService) NotifyExhausted(userID, email string, tried int) error {
	body := fmt.Sprintf(`
		<h3>No working invite links</h3>
		<p>Telegram user <strong>%s</strong> (%s) could not join: %d active invite(s) tried.</p>
		<p>Add fresh links to the invites file.</p>
	`, html.EscapeString(userID), html.EscapeString(email), tried)

	if err := s.send("Invite links exhausted", body); err != nil {
		return fmt.Errorf("failed to send exhausted notification: %w", err)
	}
	return nil
}

func (s *emailService) send(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.admin)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}
