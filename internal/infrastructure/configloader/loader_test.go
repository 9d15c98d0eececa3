package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"token_sweeper/internal/domain/entity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
sweep:
  targetAssetId: target-mint
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != ":8080" {
		t.Errorf("server port = %q, want :8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("logging level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.LiteAPI.BaseURL != "https://lite-api.jup.ag" {
		t.Errorf("lite API base URL = %q, want the public endpoint", cfg.LiteAPI.BaseURL)
	}
	if cfg.LiteAPI.MaxIDsPerPriceRequest != 50 {
		t.Errorf("maxIdsPerPriceRequest = %d, want 50", cfg.LiteAPI.MaxIDsPerPriceRequest)
	}
	if cfg.Sweep.MinValueUSD.String() != "0.01" {
		t.Errorf("minValueUsd = %s, want 0.01", cfg.Sweep.MinValueUSD)
	}
	if cfg.Sweep.NotSellableTag != "NOT_SELLABLE" {
		t.Errorf("notSellableTag = %q, want NOT_SELLABLE", cfg.Sweep.NotSellableTag)
	}
	if cfg.Sweep.ShieldChunkSize != 10 {
		t.Errorf("shieldChunkSize = %d, want 10", cfg.Sweep.ShieldChunkSize)
	}
	if cfg.Sweep.DefaultSelectionPolicy != entity.PolicySelectNone {
		t.Errorf("defaultSelectionPolicy = %q, want %q",
			cfg.Sweep.DefaultSelectionPolicy, entity.PolicySelectNone)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
liteAPI:
  baseURL: http://localhost:9999
  rateLimitPerSecond: 2.5
sweep:
  targetAssetId: target-mint
  nativeAssetId: SOL
  wrappedNativeAssetId: wrapped-native
  minValueUsd: "0.05"
  defaultSelectionPolicy: all_except_protected
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != ":9090" {
		t.Errorf("server port = %q, want :9090", cfg.Server.Port)
	}
	if cfg.LiteAPI.RateLimitPerSecond != 2.5 {
		t.Errorf("rateLimitPerSecond = %v, want 2.5", cfg.LiteAPI.RateLimitPerSecond)
	}
	if cfg.Sweep.MinValueUSD.String() != "0.05" {
		t.Errorf("minValueUsd = %s, want 0.05", cfg.Sweep.MinValueUSD)
	}
	if cfg.Sweep.DefaultSelectionPolicy != entity.PolicyAllExceptProtected {
		t.Errorf("defaultSelectionPolicy = %q, want all_except_protected",
			cfg.Sweep.DefaultSelectionPolicy)
	}

	protected := cfg.Sweep.ProtectedAssetIDs()
	if len(protected) != 2 || protected[0] != "target-mint" || protected[1] != "wrapped-native" {
		t.Errorf("protected ids = %v, want [target-mint wrapped-native]", protected)
	}
}

func TestLoadRequiresTargetAssetID(t *testing.T) {
	path := writeConfig(t, `
sweep:
  nativeAssetId: SOL
  wrappedNativeAssetId: wrapped-native
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a missing targetAssetId, got nil")
	}
}

func TestLoadRequiresWrappedNativeWhenNativeSet(t *testing.T) {
	path := writeConfig(t, `
sweep:
  targetAssetId: target-mint
  nativeAssetId: SOL
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a native id without its wrapped counterpart, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file, got nil")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "sweep: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML, got nil")
	}
}
