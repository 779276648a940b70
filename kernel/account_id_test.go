package kernel

import (
	"testing"

	"github.com/crStiv/miden-base/felt"
)

func TestAccountIDBits(t *testing.T) {
	cases := []struct {
		v      uint64
		typ    AccountType
		mode   StorageMode
		faucet bool
	}{
		{0x0000000000000001, AccountRegularImmutableCode, StoragePublic, false},
		{0x1111111111111111, AccountRegularUpdatableCode, StoragePublic, false},
		{0x2000000000000000, AccountFungibleFaucet, StoragePublic, true},
		{0xB000000000000000, AccountNonFungibleFaucet, StoragePrivate, true},
	}
	for _, c := range cases {
		id, err := NewAccountID(c.v)
		if err != nil {
			t.Fatalf("NewAccountID(%#x): %v", c.v, err)
		}
		if id.Type() != c.typ || id.StorageMode() != c.mode || id.IsFaucet() != c.faucet {
			t.Fatalf("%s: type=%s mode=%d faucet=%v", id, id.Type(), id.StorageMode(), id.IsFaucet())
		}
	}
	if _, err := NewAccountID(felt.Modulus); err == nil {
		t.Fatalf("expected error for id >= p")
	}
}

func TestAccountIDText(t *testing.T) {
	id := AccountID(0x1111111111111111)
	if id.String() != "0x1111111111111111" {
		t.Fatalf("String=%s", id)
	}
	got, err := ParseAccountIDHex(id.String())
	if err != nil || got != id {
		t.Fatalf("hex round trip=%s,%v", got, err)
	}
	if _, err := ParseAccountIDHex("0x"); err == nil {
		t.Fatalf("expected error for empty hex")
	}
	if _, err := ParseAccountIDHex("ffffffffffffffff"); err == nil {
		t.Fatalf("expected error for non-field id")
	}

	enc, err := id.Bech32("mtst")
	if err != nil {
		t.Fatalf("Bech32: %v", err)
	}
	got, err = ParseAccountIDBech32(enc, "mtst")
	if err != nil || got != id {
		t.Fatalf("bech32 round trip=%s,%v", got, err)
	}
	if _, err := ParseAccountIDBech32(enc, "mm"); err == nil {
		t.Fatalf("expected hrp mismatch")
	}

	for _, s := range []string{enc, "0x1111111111111111", "1111111111111111"} {
		got, err := ParseAccountID(s, "mtst")
		if err != nil || got != id {
			t.Fatalf("ParseAccountID(%q)=%s,%v", s, got, err)
		}
	}
}
