package config

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("FASTSHIP_TEST_KEY", "  value  ")
	if got := Get("FASTSHIP_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	t.Setenv("FASTSHIP_TEST_KEY", "   ")
	if got := Get("FASTSHIP_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("FASTSHIP_TEST_INT", "12")
	if got := GetInt("FASTSHIP_TEST_INT", 3); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}

	t.Setenv("FASTSHIP_TEST_INT", "twelve")
	if got := GetInt("FASTSHIP_TEST_INT", 3); got != 3 {
		t.Fatalf("invalid integer should fall back, got %d", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "DB_PATH", "EVENTS_SINK", "DEFAULT_MAX_SHIPMENTS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.DatabaseURL != "" || cfg.DBPath != "" {
		t.Fatalf("expected no database by default")
	}
	if cfg.EventsSink != "log" || cfg.DefaultMaxShipments != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
