package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("LIST_CACHE_TTL_SECONDS", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("address = %q", cfg.Address())
	}
	if cfg.IsProduction() {
		t.Fatalf("development must not report production")
	}
	if cfg.ListCacheTTLSeconds != 30 {
		t.Fatalf("cache ttl = %d, want 30", cfg.ListCacheTTLSeconds)
	}
}

func TestLoadRejectsBadCacheTTL(t *testing.T) {
	t.Setenv("LIST_CACHE_TTL_SECONDS", "not-a-number")
	if cfg := Load(); cfg.ListCacheTTLSeconds != 30 {
		t.Fatalf("cache ttl = %d, want fallback 30", cfg.ListCacheTTLSeconds)
	}

	t.Setenv("LIST_CACHE_TTL_SECONDS", "0")
	if cfg := Load(); cfg.ListCacheTTLSeconds != 30 {
		t.Fatalf("cache ttl = %d, want fallback 30", cfg.ListCacheTTLSeconds)
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	if cfg := Load(); !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
}
