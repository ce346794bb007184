package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFreshBootstrapsDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")

	cfg, err := LoadFresh(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prior.Alpha0 != 1 || cfg.Prior.Beta0 != 1 {
		t.Errorf("expected default uniform prior, got %+v", cfg.Prior)
	}
	if cfg.AtlasPath == "" {
		t.Error("expected non-empty default atlas path")
	}

	again, err := LoadFresh(path)
	if err != nil {
		t.Fatalf("unexpected error on reload: %v", err)
	}
	if again.Thresholds != cfg.Thresholds {
		t.Errorf("expected bootstrapped file to round-trip identically, got %+v vs %+v", again, cfg)
	}
}

func TestLoadFreshRejectsInvalidThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")

	bad := `
prior:
  alpha0: 1
  beta0: 1
credible_level: 0.95
thresholds:
  auto_approve_mean: 1.5
  auto_approve_credible_lower: 0.8
  human_review_mean: 0.5
  reject_mean: 0.5
  hard_reject_mean: 0.25
  conservative_variance_cap: 0.05
loss:
  accept_loss_if_wrong: 1.0
  reject_loss_if_right: 0.3
  hold_loss: 0.15
atlas_path: atlas.toml
evidence_db_path: evidence.badger
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := LoadFresh(path)
	if err == nil {
		t.Fatal("expected validation error for out-of-range threshold")
	}
	if !IsInvalidConfig(err) {
		t.Errorf("expected IsInvalidConfig(err) to be true, got %v", err)
	}
}

func TestActiveSignalRulesSkipsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SignalRules = []SignalRuleConfig{
		{Name: "a", Condition: "true", Boost: 1, Enabled: true},
		{Name: "b", Condition: "true", Boost: 1, Enabled: false},
	}
	active := cfg.ActiveSignalRules()
	if len(active) != 1 || active[0].Name != "a" {
		t.Errorf("expected only rule a active, got %+v", active)
	}
}
