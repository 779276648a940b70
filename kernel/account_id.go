package kernel

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/crStiv/miden-base/felt"
)

// AccountID identifies the authenticating account. It is a single field
// element; the top four bits carry the account type and storage mode.
type AccountID felt.Felt

type AccountType uint8

const (
	AccountRegularImmutableCode AccountType = 0
	AccountRegularUpdatableCode AccountType = 1
	AccountFungibleFaucet       AccountType = 2
	AccountNonFungibleFaucet    AccountType = 3
)

type StorageMode uint8

const (
	StoragePublic  StorageMode = 0
	StoragePrivate StorageMode = 2
)

const (
	accountTypeShift    = 60
	accountStorageShift = 62
	accountIsFaucetMask = uint64(0b10) << accountTypeShift
)

func (t AccountType) String() string {
	switch t {
	case AccountRegularImmutableCode:
		return "regular-immutable"
	case AccountRegularUpdatableCode:
		return "regular-updatable"
	case AccountFungibleFaucet:
		return "fungible-faucet"
	case AccountNonFungibleFaucet:
		return "non-fungible-faucet"
	default:
		return "unknown"
	}
}

func (id AccountID) Felt() felt.Felt { return felt.Felt(id) }

func (id AccountID) Uint64() uint64 { return uint64(id) }

func (id AccountID) Type() AccountType {
	return AccountType((uint64(id) >> accountTypeShift) & 0b11)
}

func (id AccountID) StorageMode() StorageMode {
	return StorageMode((uint64(id) >> accountStorageShift) & 0b11)
}

func (id AccountID) IsFaucet() bool {
	return uint64(id)&accountIsFaucetMask != 0
}

// String renders the id as 0x-prefixed, zero-padded hex.
func (id AccountID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// NewAccountID rejects values outside the field.
func NewAccountID(v uint64) (AccountID, error) {
	if v >= felt.Modulus {
		return 0, fmt.Errorf("account id %#x is not a field element", v)
	}
	return AccountID(v), nil
}

func ParseAccountIDHex(s string) (AccountID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" || len(s) > 16 {
		return 0, fmt.Errorf("account id: expected 1..16 hex digits, got %d", len(s))
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}
	return NewAccountID(v)
}

// Bech32 encodes the big-endian id bytes under the given human-readable part.
func (id AccountID) Bech32(hrp string) (string, error) {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(id))
	conv, err := bech32.ConvertBits(raw[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, conv)
}

func ParseAccountIDBech32(s, wantHRP string) (AccountID, error) {
	hrp, data, err := bech32.Decode(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}
	if hrp != wantHRP {
		return 0, fmt.Errorf("account id: hrp %q, want %q", hrp, wantHRP)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("account id: expected 8 bytes, got %d", len(raw))
	}
	return NewAccountID(binary.BigEndian.Uint64(raw))
}

// ParseAccountID accepts either the hex or the bech32 form.
func ParseAccountID(s, hrp string) (AccountID, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), hrp+"1") {
		return ParseAccountIDBech32(s, hrp)
	}
	return ParseAccountIDHex(s)
}
