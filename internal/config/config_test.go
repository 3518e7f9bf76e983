package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Errorf("expected default mode release, got %q", cfg.Mode)
	}
	if cfg.ReadLimit != 65536 {
		t.Errorf("expected default read limit 65536, got %d", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("expected default ping period 54s, got %s", cfg.PingPeriod)
	}
	if len(cfg.StunURLs) == 0 {
		t.Error("expected a default STUN server")
	}
}
