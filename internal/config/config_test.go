package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("HISTORY_LIMIT", "")

	cfg := Load()
	if cfg.Port != "3001" {
		t.Fatalf("expected default port 3001, got %q", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode by default")
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Fatalf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.HistoryLimit != 0 {
		t.Fatalf("expected unbounded history, got %d", cfg.HistoryLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("HISTORY_LIMIT", "500")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.IsDevelopment() {
		t.Fatal("expected production mode")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Fatalf("expected %v, got %v", want, cfg.AllowedOrigins)
	}
	if cfg.HistoryLimit != 500 {
		t.Fatalf("expected history limit 500, got %d", cfg.HistoryLimit)
	}
}

func TestLoadInvalidHistoryLimit(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "-5")

	cfg := Load()
	if cfg.HistoryLimit != 0 {
		t.Fatalf("negative limit should fall back to default, got %d", cfg.HistoryLimit)
	}
}
