package node

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/crStiv/miden-base/crypto"
	"github.com/crStiv/miden-base/kernel"
	"github.com/crStiv/miden-base/node/store"
)

// Host bundles an opened store with the executor built over it.
type Host struct {
	Config   Config
	Store    store.AccountStore
	Hasher   kernel.HashCompressor
	Executor *Executor
}

// OpenHost opens the configured store, pins the hasher in its manifest on
// first use and wires a Falcon-512 authenticator over it.
func OpenHost(cfg Config, logger *slog.Logger) (*Host, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = NewLogger(cfg.LogLevel, os.Stderr)
	}
	h, err := crypto.NewHashCompressor(cfg.Hasher)
	if err != nil {
		return nil, err
	}
	ordering, err := ParseNonceOrdering(cfg.NonceOrdering)
	if err != nil {
		return nil, err
	}
	s, err := store.OpenBackend(cfg.StoreBackend, cfg.DataDir, cfg.Network)
	if err != nil {
		return nil, err
	}
	if err := bindHasher(s, cfg.Hasher); err != nil {
		_ = s.Close()
		return nil, err
	}
	auth, err := kernel.NewAuthenticator(h, crypto.Falcon512Oracle{Hasher: h},
		kernel.WithLogger(logger),
		kernel.WithNonceOrdering(ordering),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	exec, err := NewExecutor(s, auth, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return &Host{Config: cfg, Store: s, Hasher: h, Executor: exec}, nil
}

func (h *Host) Close() error {
	if h == nil || h.Store == nil {
		return nil
	}
	return h.Store.Close()
}

func bindHasher(s store.AccountStore, name string) error {
	m := s.Manifest()
	if m == nil {
		return fmt.Errorf("store has no manifest")
	}
	if m.Hasher == name {
		return nil
	}
	if m.Hasher != "" {
		return fmt.Errorf("datadir uses hasher %q, config asks for %q", m.Hasher, name)
	}
	next := *m
	next.Hasher = name
	return s.SetManifest(&next)
}
