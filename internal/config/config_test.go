package config

import "testing"

// TestLoadDefaults tests the local-only defaults with a bare environment
func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("DB_DATABASE", "")
	t.Setenv("LOCAL_DB_PATH", "")
	t.Setenv("DEFAULT_WEEKLY_BUDGET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %s", cfg.Port)
	}
	if cfg.LocalDBPath != "teacal-local.db" {
		t.Errorf("Expected the default local store path, got %s", cfg.LocalDBPath)
	}
	if cfg.DefaultWeeklyBudget != 2000 {
		t.Errorf("Expected the default budget 2000, got %d", cfg.DefaultWeeklyBudget)
	}
	if cfg.RemoteConfigured() {
		t.Error("Expected local-only mode without DB_TYPE and DB_DATABASE")
	}
}

// TestRemoteConfigured tests the mode decision
func TestRemoteConfigured(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DATABASE", "teacal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.RemoteConfigured() {
		t.Error("Expected remote mode with DB_TYPE and DB_DATABASE set")
	}

	// Type without a database name is still local-only
	t.Setenv("DB_DATABASE", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RemoteConfigured() {
		t.Error("Expected local-only mode without DB_DATABASE")
	}
}

// TestEnvAsIntFallback tests tolerant integer parsing
func TestEnvAsIntFallback(t *testing.T) {
	t.Setenv("DB_CONNECTION_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBConnectionLimit != 5 {
		t.Errorf("Expected the default connection limit, got %d", cfg.DBConnectionLimit)
	}
}
