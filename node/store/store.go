// Package store persists account state for the authentication host. Every
// backend runs Update inside one storage transaction, so a rejected
// authentication leaves no trace on disk.
package store

import (
	"fmt"

	"github.com/crStiv/miden-base/kernel"
)

const (
	BackendBolt    = "bbolt"
	BackendLevelDB = "leveldb"
)

type AccountStore interface {
	GetAccount(id kernel.AccountID) (*kernel.AccountState, bool, error)
	PutAccount(st *kernel.AccountState) error
	// Update runs fn against the stored account and commits its mutations
	// only when fn returns nil. A missing account fails with
	// AUTH_ERR_ACCOUNT_MISSING without calling fn.
	Update(id kernel.AccountID, fn func(kernel.AccountStateView) error) error
	Manifest() *Manifest
	SetManifest(m *Manifest) error
	Close() error
}

// OpenBackend opens the named backend under datadir for network.
func OpenBackend(backend, datadir, network string) (AccountStore, error) {
	switch backend {
	case BackendBolt:
		return Open(datadir, network)
	case BackendLevelDB:
		return OpenLevel(datadir, network)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

var (
	_ AccountStore = (*DB)(nil)
	_ AccountStore = (*LevelDB)(nil)
)
