package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
)

func openBoth(t *testing.T) map[string]AccountStore {
	t.Helper()
	out := map[string]AccountStore{}
	for _, backend := range []string{BackendBolt, BackendLevelDB} {
		s, err := OpenBackend(backend, t.TempDir(), "devnet")
		if err != nil {
			t.Fatalf("open %s: %v", backend, err)
		}
		t.Cleanup(func() { _ = s.Close() })
		out[backend] = s
	}
	return out
}

func testAccount() *kernel.AccountState {
	st := kernel.NewAccountState(0x1111111111111111, felt.NewWord(1, 2, 3, 4))
	st.Nonce = 5
	st.Storage[7] = felt.NewWord(9, 9, 9, 9)
	return st
}

func TestAccountStore_PutGet(t *testing.T) {
	for name, s := range openBoth(t) {
		if _, ok, err := s.GetAccount(1); err != nil || ok {
			t.Fatalf("%s: empty get ok=%v err=%v", name, ok, err)
		}
		want := testAccount()
		if err := s.PutAccount(want); err != nil {
			t.Fatalf("%s: PutAccount: %v", name, err)
		}
		got, ok, err := s.GetAccount(want.ID)
		if err != nil || !ok {
			t.Fatalf("%s: GetAccount ok=%v err=%v", name, ok, err)
		}
		if got.ID != want.ID || got.Nonce != want.Nonce || len(got.Storage) != 2 || got.Storage[7] != want.Storage[7] {
			t.Fatalf("%s: got %+v want %+v", name, got, want)
		}
	}
}

func TestAccountStore_UpdateCommitsAndRollsBack(t *testing.T) {
	for name, s := range openBoth(t) {
		st := testAccount()
		if err := s.PutAccount(st); err != nil {
			t.Fatalf("%s: PutAccount: %v", name, err)
		}

		err := s.Update(st.ID, func(v kernel.AccountStateView) error {
			return v.IncrNonce(1)
		})
		if err != nil {
			t.Fatalf("%s: Update: %v", name, err)
		}
		got, _, _ := s.GetAccount(st.ID)
		if got.Nonce != 6 {
			t.Fatalf("%s: nonce=%d want 6", name, got.Nonce)
		}

		boom := errors.New("boom")
		err = s.Update(st.ID, func(v kernel.AccountStateView) error {
			if err := v.IncrNonce(1); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("%s: err=%v", name, err)
		}
		got, _, _ = s.GetAccount(st.ID)
		if got.Nonce != 6 {
			t.Fatalf("%s: nonce=%d after rollback, want 6", name, got.Nonce)
		}

		err = s.Update(42, func(kernel.AccountStateView) error {
			t.Fatalf("%s: fn called for missing account", name)
			return nil
		})
		if kernel.CodeOf(err) != kernel.AUTH_ERR_ACCOUNT_MISSING {
			t.Fatalf("%s: missing account err=%v", name, err)
		}
	}
}

func TestAccountStore_ViewReadsSlots(t *testing.T) {
	for name, s := range openBoth(t) {
		st := testAccount()
		if err := s.PutAccount(st); err != nil {
			t.Fatalf("%s: PutAccount: %v", name, err)
		}
		err := s.Update(st.ID, func(v kernel.AccountStateView) error {
			if v.ID() != st.ID || v.Nonce() != 5 {
				t.Fatalf("%s: view id=%s nonce=%d", name, v.ID(), v.Nonce())
			}
			w, err := v.Item(kernel.AuthKeySlot)
			if err != nil || w != felt.NewWord(1, 2, 3, 4) {
				t.Fatalf("%s: slot 0=%s err=%v", name, w, err)
			}
			_, err = v.Item(3)
			return err
		})
		if kernel.CodeOf(err) != kernel.AUTH_ERR_STORAGE_READ {
			t.Fatalf("%s: unset slot err=%v", name, err)
		}
	}
}

func TestManifestWrittenAndChecked(t *testing.T) {
	datadir := t.TempDir()
	db, err := Open(datadir, "devnet")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m := db.Manifest()
	if m == nil || m.SchemaVersion != SchemaVersionV1 || m.Network != "devnet" || m.Backend != BackendBolt {
		t.Fatalf("manifest=%+v", m)
	}
	m.Hasher = "poseidon"
	if err := db.SetManifest(m); err != nil {
		t.Fatalf("SetManifest: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(NetworkDir(datadir, "devnet"), "MANIFEST.json")); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}

	db, err = Open(datadir, "devnet")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if db.Manifest().Hasher != "poseidon" {
		t.Fatalf("hasher not persisted")
	}
	_ = db.Close()

	if _, err := OpenLevel(datadir, "devnet"); err == nil {
		t.Fatalf("expected backend mismatch")
	}
}

func TestOpenRejectsBadArgs(t *testing.T) {
	if _, err := Open("", "devnet"); err == nil {
		t.Fatalf("expected datadir error")
	}
	if _, err := Open(t.TempDir(), ""); err == nil {
		t.Fatalf("expected network error")
	}
	if _, err := OpenLevel(t.TempDir(), "../x"); err == nil {
		t.Fatalf("expected invalid network error")
	}
	if _, err := OpenBackend("sqlite", t.TempDir(), "devnet"); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
