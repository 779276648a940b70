package store

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/crStiv/miden-base/kernel"
)

var bucketAccounts = []byte("accounts_by_id")

// DB is the bbolt-backed AccountStore.
type DB struct {
	dir      string
	db       *bolt.DB
	manifest *Manifest
}

func Open(datadir string, network string) (*DB, error) {
	if err := checkOpenArgs(datadir, network); err != nil {
		return nil, err
	}
	dir := NetworkDir(datadir, network)
	if err := ensureDir(filepath.Join(dir, "db")); err != nil {
		return nil, err
	}
	m, err := loadOrInitManifest(dir, network, BackendBolt)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "db", "accounts.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open bbolt")
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAccounts); err != nil {
			return errors.Wrapf(err, "create bucket %s", string(bucketAccounts))
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &DB{dir: dir, db: bdb, manifest: m}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Dir() string { return d.dir }

func (d *DB) Manifest() *Manifest {
	if d == nil {
		return nil
	}
	return d.manifest
}

func (d *DB) SetManifest(m *Manifest) error {
	if d == nil {
		return errors.New("db: nil")
	}
	if err := writeManifestAtomic(d.dir, m); err != nil {
		return err
	}
	d.manifest = m
	return nil
}

func (d *DB) GetAccount(id kernel.AccountID) (*kernel.AccountState, bool, error) {
	var out *kernel.AccountState
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketAccounts).Get(encodeAccountKey(id))
		if v == nil {
			return nil
		}
		st, err := decodeAccountRecord(v)
		if err != nil {
			return err
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (d *DB) PutAccount(st *kernel.AccountState) error {
	val, err := encodeAccountRecord(st)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAccounts).Put(encodeAccountKey(st.ID), val)
	})
}

// Update holds the bbolt write lock for the whole of fn; returning an error
// from the closure rolls the transaction back.
func (d *DB) Update(id kernel.AccountID, fn func(kernel.AccountStateView) error) error {
	if fn == nil {
		return errors.New("db: nil update func")
	}
	key := encodeAccountKey(id)
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAccounts)
		v := b.Get(key)
		if v == nil {
			return accountMissing(id)
		}
		st, err := decodeAccountRecord(v)
		if err != nil {
			return err
		}
		if err := fn(&recordView{st: st}); err != nil {
			return err
		}
		val, err := encodeAccountRecord(st)
		if err != nil {
			return err
		}
		return b.Put(key, val)
	})
}
