// Package email sends transactional notifications via SMTP.
package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

func NewService(config Config) *Service {
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.Host),
	}
}

// IsConfigured reports whether sending is possible; callers skip email
// silently when it is not.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email.
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s", body)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// SendVerificationEmail delivers the account verification link.
func (s *Service) SendVerificationEmail(to, userName, verifyURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nConfirm your Inkwell account by opening the link below:\n\n%s\n\nThe link expires in 24 hours. If you did not sign up, ignore this message.\n",
		userName, verifyURL,
	)
	return s.SendEmail([]string{to}, "Verify your Inkwell account", body)
}

// SendPasswordResetEmail delivers the one-hour password reset link.
func (s *Service) SendPasswordResetEmail(to, userName, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nReset your Inkwell password using the link below:\n\n%s\n\nThe link expires in 1 hour. If you did not request this, your password is unchanged.\n",
		userName, resetURL,
	)
	return s.SendEmail([]string{to}, "Reset your Inkwell password", body)
}

// SendApprovalRequestedEmail notifies approvers that a page revision awaits
// their decision.
func (s *Service) SendApprovalRequestedEmail(to []string, requester, pageTitle, revision string) error {
	body := fmt.Sprintf(
		"%s requested approval for %q at revision %s.\n\nReview the pending revision in Inkwell to approve or reject it.\n",
		requester, pageTitle, revision,
	)
	return s.SendEmail(to, fmt.Sprintf("Approval requested: %s", pageTitle), body)
}

// SendSignatureRecordedEmail confirms to the requester that an approval was
// signed off.
func (s *Service) SendSignatureRecordedEmail(to, signerName, pageTitle, revision string) error {
	body := fmt.Sprintf(
		"%s signed off on %q at revision %s.\n\nThe signature and its content checksum are recorded in the audit trail.\n",
		signerName, pageTitle, revision,
	)
	return s.SendEmail([]string{to}, fmt.Sprintf("Signed: %s", pageTitle), body)
}
