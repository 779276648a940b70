package store

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/crStiv/miden-base/kernel"
)

// LevelDB is the goleveldb-backed AccountStore. Update runs in a leveldb
// transaction, which blocks other writers until it commits or discards.
type LevelDB struct {
	dir      string
	db       *leveldb.DB
	manifest *Manifest
}

func OpenLevel(datadir string, network string) (*LevelDB, error) {
	if err := checkOpenArgs(datadir, network); err != nil {
		return nil, err
	}
	dir := NetworkDir(datadir, network)
	if err := ensureDir(filepath.Join(dir, "db")); err != nil {
		return nil, err
	}
	m, err := loadOrInitManifest(dir, network, BackendLevelDB)
	if err != nil {
		return nil, err
	}
	o := new(opt.Options)
	o.Compression = opt.NoCompression
	lvdb, err := leveldb.OpenFile(filepath.Join(dir, "db", "accounts.ldb"), o)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{dir: dir, db: lvdb, manifest: m}, nil
}

func (l *LevelDB) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *LevelDB) Dir() string { return l.dir }

func (l *LevelDB) Manifest() *Manifest {
	if l == nil {
		return nil
	}
	return l.manifest
}

func (l *LevelDB) SetManifest(m *Manifest) error {
	if l == nil {
		return errors.New("leveldb: nil")
	}
	if err := writeManifestAtomic(l.dir, m); err != nil {
		return err
	}
	l.manifest = m
	return nil
}

func (l *LevelDB) GetAccount(id kernel.AccountID) (*kernel.AccountState, bool, error) {
	v, err := l.db.Get(encodeAccountKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	st, err := decodeAccountRecord(v)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

func (l *LevelDB) PutAccount(st *kernel.AccountState) error {
	val, err := encodeAccountRecord(st)
	if err != nil {
		return err
	}
	return l.db.Put(encodeAccountKey(st.ID), val, &opt.WriteOptions{Sync: true})
}

func (l *LevelDB) Update(id kernel.AccountID, fn func(kernel.AccountStateView) error) error {
	if fn == nil {
		return errors.New("leveldb: nil update func")
	}
	tr, err := l.db.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "leveldb: open transaction")
	}
	key := encodeAccountKey(id)
	v, err := tr.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		tr.Discard()
		return accountMissing(id)
	}
	if err != nil {
		tr.Discard()
		return err
	}
	st, err := decodeAccountRecord(v)
	if err != nil {
		tr.Discard()
		return err
	}
	if err := fn(&recordView{st: st}); err != nil {
		tr.Discard()
		return err
	}
	val, err := encodeAccountRecord(st)
	if err != nil {
		tr.Discard()
		return err
	}
	if err := tr.Put(key, val, nil); err != nil {
		tr.Discard()
		return err
	}
	return errors.Wrap(tr.Commit(), "leveldb: commit")
}
