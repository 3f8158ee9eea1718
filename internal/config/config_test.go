package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "BBENVIRONMENT", "BBOAUTHURL", "BBAPIURL", "BBPAGESIZE", "BBTIMEOUT", "SYNCMAXYEAR", "TIMEZONE"} {
		t.Setenv(k, "")
	}
	cfg := New()

	if cfg.Port != "8080" || cfg.BBEnvironment != EnvSandbox {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BBPageSize != 200 || cfg.BBTimeout != 30*time.Second || cfg.SyncMaxYear != 2030 {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.Location() == time.UTC {
		t.Fatalf("expected %s, got UTC", cfg.Timezone)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("BBENVIRONMENT", "production")
	t.Setenv("BBAPIURL", "https://proxy.test")
	t.Setenv("BBPAGESIZE", "50")
	t.Setenv("BBTIMEOUT", "5s")
	t.Setenv("SYNCMAXYEAR", "nope")
	cfg := New()

	if cfg.BBPageSize != 50 || cfg.BBTimeout != 5*time.Second || cfg.SyncMaxYear != 2030 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	eps := cfg.BankEndpoints()
	if eps[EnvProduction].APIBaseURL != "https://proxy.test" || eps[EnvProduction].OAuthURL != "https://oauth.bb.com.br/oauth/token" {
		t.Fatalf("unexpected production endpoints: %+v", eps[EnvProduction])
	}
	if eps[EnvSandbox].APIBaseURL != "https://api.hm.bb.com.br" {
		t.Fatalf("sandbox endpoints changed: %+v", eps[EnvSandbox])
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Invalid"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
