package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/casting")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_CHANNEL_INTERNAL", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", "")
	t.Setenv("GOOGLE_CALENDAR_ID", "")
	t.Setenv("CALENDAR_REQUESTS_PER_MINUTE", "not-a-number")
	t.Setenv("THREAD_LOCK_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.IsSlackEnabled() {
		t.Fatal("slack should be disabled without token and channel")
	}
	if cfg.IsCalendarEnabled() {
		t.Fatal("calendar should be disabled without credentials")
	}
	if cfg.GetCalendarRequestsPerMinute() != 120 {
		t.Fatalf("expected calendar rate fallback of 120, got %d", cfg.GetCalendarRequestsPerMinute())
	}
	if cfg.GetThreadLockTTL() != 30*time.Second {
		t.Fatalf("expected thread lock ttl fallback, got %s", cfg.GetThreadLockTTL())
	}
	if cfg.GetCalendarTimeZone() != "Asia/Tokyo" {
		t.Fatalf("unexpected calendar time zone %q", cfg.GetCalendarTimeZone())
	}
}

func TestLoadSlackNeedsTokenAndChannel(t *testing.T) {
	setRequired(t)
	t.Setenv("SLACK_BOT_TOKEN", " xoxb-123 ")
	t.Setenv("SLACK_CHANNEL_INTERNAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsSlackEnabled() {
		t.Fatal("slack must stay disabled without a channel")
	}

	t.Setenv("SLACK_CHANNEL_INTERNAL", "C0123")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsSlackEnabled() || cfg.GetSlackBotToken() != "xoxb-123" {
		t.Fatalf("expected trimmed token and enabled slack, got %q", cfg.GetSlackBotToken())
	}
}

func TestLoadRejectsSMTPWithoutFromAddress(t *testing.T) {
	setRequired(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when SMTP is enabled without a from address")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard CORS with credentials")
	}
}
