package config

import (
	"testing"
	"time"
)

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "summersphone", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", DashboardPassword: "hunter2"},
		Twilio: TwilioConfig{
			AuthToken: "token",
		},
		OpenClaw: OpenClawConfig{
			GatewayURL:   "http://gateway.local:18789",
			GatewayToken: "bearer",
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected access TTL default, got %v", c.Auth.AccessTokenTTL)
	}
}

func TestValidate_RejectsRelativeGatewayURL(t *testing.T) {
	c := validBase()
	c.OpenClaw.GatewayURL = "gateway.local/api"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for relative gateway URL")
	}
}

func TestValidate_RequiresGatewayToken(t *testing.T) {
	c := validBase()
	c.OpenClaw.GatewayToken = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing gateway token")
	}
}
