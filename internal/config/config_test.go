package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg := LoadFromEnv()

	if cfg.Server.Port != 3010 {
		t.Errorf("expected port 3010, got %d", cfg.Server.Port)
	}
	if cfg.Store.Source != "demo" {
		t.Errorf("expected demo source, got %s", cfg.Store.Source)
	}

	a := cfg.Analytics
	if a.LargeTransactionThreshold != 10000 {
		t.Errorf("expected threshold 10000, got %v", a.LargeTransactionThreshold)
	}
	if a.VelocityWindow != time.Hour {
		t.Errorf("expected 1h velocity window, got %s", a.VelocityWindow)
	}
	if a.DepositRatio != 0.8 || a.CapitalRatio != 12.5 || a.LiquidityRatio != 105.2 {
		t.Errorf("unexpected ratios: %v %v %v", a.DepositRatio, a.CapitalRatio, a.LiquidityRatio)
	}
	if len(a.CreditRiskBands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(a.CreditRiskBands))
	}
	if !math.IsInf(a.CreditRiskBands[4].UpperBound, 1) {
		t.Errorf("expected open top band, got %v", a.CreditRiskBands[4].UpperBound)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ANALYTICS_LARGE_TXN_THRESHOLD", "2500.5")
	t.Setenv("ANALYTICS_VELOCITY_WINDOW", "30m")
	t.Setenv("REDIS_ENABLED", "true")

	cfg := LoadFromEnv()

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Analytics.LargeTransactionThreshold != 2500.5 {
		t.Errorf("expected threshold 2500.5, got %v", cfg.Analytics.LargeTransactionThreshold)
	}
	if cfg.Analytics.VelocityWindow != 30*time.Minute {
		t.Errorf("expected 30m, got %s", cfg.Analytics.VelocityWindow)
	}
	if !cfg.Redis.Enabled {
		t.Error("expected redis enabled")
	}
}

func TestLoadFromEnv_InvalidValuesUseDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("ANALYTICS_VELOCITY_WINDOW", "soon")

	cfg := LoadFromEnv()

	if cfg.Server.Port != 3010 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Analytics.VelocityWindow != time.Hour {
		t.Errorf("expected default window, got %s", cfg.Analytics.VelocityWindow)
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8081
  jwt_secret: ${TEST_JWT_SECRET}
store:
  source: file
  file_path: /tmp/snapshot.yaml
analytics:
  large_transaction_threshold: 5000
  velocity_window: 2h
  credit_risk_bands:
    - upper_bound: 650
      category: High Risk
    - upper_bound: .inf
      category: Low Risk
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Server.Port)
	}
	if cfg.Server.JWTSecret != "s3cret" {
		t.Errorf("expected expanded secret, got %q", cfg.Server.JWTSecret)
	}
	if cfg.Store.Source != "file" {
		t.Errorf("expected file source, got %s", cfg.Store.Source)
	}
	if cfg.Analytics.LargeTransactionThreshold != 5000 {
		t.Errorf("expected 5000, got %v", cfg.Analytics.LargeTransactionThreshold)
	}
	if cfg.Analytics.VelocityWindow != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.Analytics.VelocityWindow)
	}
	if len(cfg.Analytics.CreditRiskBands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(cfg.Analytics.CreditRiskBands))
	}
	if !math.IsInf(cfg.Analytics.CreditRiskBands[1].UpperBound, 1) {
		t.Errorf("expected +Inf upper bound, got %v", cfg.Analytics.CreditRiskBands[1].UpperBound)
	}
	// untouched values keep their defaults
	if cfg.Analytics.DepositRatio != 0.8 {
		t.Errorf("expected default deposit ratio, got %v", cfg.Analytics.DepositRatio)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
