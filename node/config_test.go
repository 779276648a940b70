package node

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crStiv/miden-base/kernel"
)

func TestValidateConfigOK(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfigRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty network":  func(c *Config) { c.Network = " " },
		"empty data dir": func(c *Config) { c.DataDir = "" },
		"log level":      func(c *Config) { c.LogLevel = "verbose" },
		"hasher":         func(c *Config) { c.Hasher = "sha1" },
		"backend":        func(c *Config) { c.StoreBackend = "sqlite" },
		"nonce ordering": func(c *Config) { c.NonceOrdering = "whenever" },
		"empty hrp":      func(c *Config) { c.AccountHRP = "" },
		"uppercase hrp":  func(c *Config) { c.AccountHRP = "MDEV" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := ValidateConfig(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseNonceOrdering(t *testing.T) {
	for _, o := range []kernel.NonceOrdering{kernel.NonceBeforeVerify, kernel.NonceAfterVerify} {
		got, err := ParseNonceOrdering(o.String())
		if err != nil || got != o {
			t.Fatalf("ParseNonceOrdering(%s)=%v,%v", o, got, err)
		}
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.json")
	body := `{"network":"testnet","hasher":"mimc","log_level":"DEBUG","nonce_ordering":"post_verify"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" || cfg.Hasher != "mimc" || cfg.LogLevel != "debug" || cfg.NonceOrdering != "post_verify" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.StoreBackend != DefaultConfig().StoreBackend {
		t.Fatalf("default backend lost: %q", cfg.StoreBackend)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"bind_addr":"0.0.0.0:1"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected read error")
	}
}
