package email

import (
	"strings"
	"testing"
)

func TestIsConfigured(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		want   bool
	}{
		{"fully configured", Config{Host: "smtp.example.com", Port: "587", From: "noreply@example.com"}, true},
		{"missing host", Config{Port: "587", From: "noreply@example.com"}, false},
		{"missing port", Config{Host: "smtp.example.com", From: "noreply@example.com"}, false},
		{"missing from", Config{Host: "smtp.example.com", Port: "587"}, false},
		{"empty", Config{}, false},
	}
	for _, tc := range cases {
		svc := NewService(tc.config)
		if got := svc.IsConfigured(); got != tc.want {
			t.Fatalf("%s: IsConfigured() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSendEmailFailsWhenUnconfigured(t *testing.T) {
	svc := NewService(Config{})
	err := svc.SendEmail([]string{"to@example.com"}, "Subject", "Body")
	if err == nil {
		t.Fatal("expected error when email is not configured")
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNotificationHelpersFailClosedWhenUnconfigured(t *testing.T) {
	svc := NewService(Config{})
	if err := svc.SendVerificationEmail("to@example.com", "Avery", "http://x/verify"); err == nil {
		t.Fatal("expected error from SendVerificationEmail")
	}
	if err := svc.SendPasswordResetEmail("to@example.com", "Avery", "http://x/reset"); err == nil {
		t.Fatal("expected error from SendPasswordResetEmail")
	}
	if err := svc.SendApprovalRequestedEmail([]string{"a@example.com"}, "Avery", "Runbook", "abc1234"); err == nil {
		t.Fatal("expected error from SendApprovalRequestedEmail")
	}
	if err := svc.SendSignatureRecordedEmail("to@example.com", "Morgan", "Runbook", "abc1234"); err == nil {
		t.Fatal("expected error from SendSignatureRecordedEmail")
	}
}
