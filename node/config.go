package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crStiv/miden-base/crypto"
	"github.com/crStiv/miden-base/kernel"
	"github.com/crStiv/miden-base/node/store"
)

type Config struct {
	Network       string `json:"network"`
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	Hasher        string `json:"hasher"`
	StoreBackend  string `json:"store_backend"`
	NonceOrdering string `json:"nonce_ordering"`
	AccountHRP    string `json:"account_hrp"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedBackends = map[string]struct{}{
	store.BackendBolt:    {},
	store.BackendLevelDB: {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".miden-auth"
	}
	return filepath.Join(home, ".miden-auth")
}

func DefaultConfig() Config {
	return Config{
		Network:       "devnet",
		DataDir:       DefaultDataDir(),
		LogLevel:      "info",
		Hasher:        crypto.HasherPoseidon,
		StoreBackend:  store.BackendBolt,
		NonceOrdering: kernel.NonceBeforeVerify.String(),
		AccountHRP:    "mdev",
	}
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if _, err := crypto.NewHashCompressor(cfg.Hasher); err != nil {
		return fmt.Errorf("invalid hasher: %w", err)
	}
	if _, ok := allowedBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store_backend %q", cfg.StoreBackend)
	}
	if _, err := ParseNonceOrdering(cfg.NonceOrdering); err != nil {
		return err
	}
	if cfg.AccountHRP == "" || strings.ToLower(cfg.AccountHRP) != cfg.AccountHRP {
		return fmt.Errorf("invalid account_hrp %q", cfg.AccountHRP)
	}
	return nil
}

func ParseNonceOrdering(s string) (kernel.NonceOrdering, error) {
	switch s {
	case kernel.NonceBeforeVerify.String():
		return kernel.NonceBeforeVerify, nil
	case kernel.NonceAfterVerify.String():
		return kernel.NonceAfterVerify, nil
	default:
		return 0, fmt.Errorf("invalid nonce_ordering %q", s)
	}
}

// LoadConfig overlays the JSON file at path onto DefaultConfig. Unknown keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := readFileByPath(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}
