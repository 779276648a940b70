package node

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
)

// AdviceBundle is the on-disk form of a witness channel: what a signer hands
// to the host alongside a transaction.
type AdviceBundle struct {
	Entries []AdviceEntry `json:"entries"`
}

type AdviceEntry struct {
	KeyHex     string `json:"key"`
	WitnessHex string `json:"witness_hex"`
}

func (b *AdviceBundle) Add(key felt.Word, witness []byte) {
	b.Entries = append(b.Entries, AdviceEntry{KeyHex: key.Hex(), WitnessHex: hex.EncodeToString(witness)})
}

func (b *AdviceBundle) AdviceMap() (*kernel.AdviceMap, error) {
	m := kernel.NewAdviceMap()
	for i, e := range b.Entries {
		key, err := felt.ParseWordHex(e.KeyHex)
		if err != nil {
			return nil, fmt.Errorf("advice entry %d: key: %w", i, err)
		}
		blob, err := hex.DecodeString(e.WitnessHex)
		if err != nil {
			return nil, fmt.Errorf("advice entry %d: witness: %w", i, err)
		}
		m.Insert(key, blob)
	}
	return m, nil
}

func LoadAdviceBundle(path string) (*AdviceBundle, error) {
	raw, err := ReadInputFile(path)
	if err != nil {
		return nil, err
	}
	var b AdviceBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("advice bundle: %w", err)
	}
	return &b, nil
}

func WriteAdviceBundle(path string, b *AdviceBundle) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o600)
}
