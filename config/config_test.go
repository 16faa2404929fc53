package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("NOTIFICATION_BACKEND", "")
	t.Setenv("ENABLE_BOOTSTRAP", "")
	t.Setenv("ACTIVITY_RETENTION_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080 got %s", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl got %s", cfg.TokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:4200" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.TokenSecret == "" {
		t.Fatalf("memory backend should get a development secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("NOTIFICATION_BACKEND", "")
	t.Setenv("TOKEN_SECRET", "abc")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ENABLE_BOOTSTRAP", "yes")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "Adm1n!pass")
	t.Setenv("ACTIVITY_RETENTION_DAYS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != 2*time.Hour || !cfg.EnableBootstrap || cfg.ActivityRetentionDays != 30 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":    {"STORE_BACKEND": "mongo", "TOKEN_SECRET": ""},
		"unknown backend":   {"STORE_BACKEND": "redis", "TOKEN_SECRET": "x"},
		"cassandra no host": {"STORE_BACKEND": "memory", "NOTIFICATION_BACKEND": "cassandra", "CASS_DB": ""},
		"negative ttl":      {"STORE_BACKEND": "memory", "TOKEN_TTL_HOURS": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("NOTIFICATION_BACKEND", "")
			t.Setenv("ENABLE_BOOTSTRAP", "")
			t.Setenv("TOKEN_TTL_HOURS", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
