package store

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
)

const accountHeaderLen = 8 + 8 + 1

// encodeAccountKey is big-endian so backends iterate accounts in id order.
func encodeAccountKey(id kernel.AccountID) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, id.Uint64())
	return out
}

func encodeAccountRecord(st *kernel.AccountState) ([]byte, error) {
	if st == nil {
		return nil, fmt.Errorf("account: nil state")
	}
	if _, err := kernel.NewAccountID(st.ID.Uint64()); err != nil {
		return nil, err
	}
	if st.Nonce > kernel.MaxNonce {
		return nil, fmt.Errorf("account: nonce %d is not a field element", st.Nonce)
	}
	slots := make([]int, 0, len(st.Storage))
	for s := range st.Storage {
		if int(s) >= kernel.NumStorageSlots {
			return nil, fmt.Errorf("account: slot %d out of range", s)
		}
		slots = append(slots, int(s))
	}
	sort.Ints(slots)

	// Layout:
	// id u64le | nonce u64le | slot_count u8 | (slot u8 | word 32B)*
	out := make([]byte, accountHeaderLen, accountHeaderLen+len(slots)*(1+felt.WordBytes))
	binary.LittleEndian.PutUint64(out[0:8], st.ID.Uint64())
	binary.LittleEndian.PutUint64(out[8:16], uint64(st.Nonce))
	out[16] = byte(len(slots)) // #nosec G115 -- bounded by NumStorageSlots.
	for _, s := range slots {
		w := st.Storage[uint8(s)].Bytes() // #nosec G115 -- s < NumStorageSlots.
		out = append(out, byte(s))
		out = append(out, w[:]...)
	}
	return out, nil
}

func decodeAccountRecord(b []byte) (*kernel.AccountState, error) {
	if len(b) < accountHeaderLen {
		return nil, fmt.Errorf("account: truncated")
	}
	id, err := kernel.NewAccountID(binary.LittleEndian.Uint64(b[0:8]))
	if err != nil {
		return nil, err
	}
	nonce := kernel.Nonce(binary.LittleEndian.Uint64(b[8:16]))
	if nonce > kernel.MaxNonce {
		return nil, fmt.Errorf("account: nonce not canonical")
	}
	n := int(b[16])
	if len(b) != accountHeaderLen+n*(1+felt.WordBytes) {
		return nil, fmt.Errorf("account: bad slot_count %d for %d bytes", n, len(b))
	}
	st := &kernel.AccountState{ID: id, Nonce: nonce, Storage: make(map[uint8]felt.Word, n)}
	off := accountHeaderLen
	prev := -1
	for i := 0; i < n; i++ {
		slot := int(b[off])
		if slot <= prev || slot >= kernel.NumStorageSlots {
			return nil, fmt.Errorf("account: slot %d out of order", slot)
		}
		w, err := felt.WordFromBytes(b[off+1 : off+1+felt.WordBytes])
		if err != nil {
			return nil, fmt.Errorf("account: slot %d: %w", slot, err)
		}
		st.Storage[uint8(slot)] = w
		prev = slot
		off += 1 + felt.WordBytes
	}
	return st, nil
}
