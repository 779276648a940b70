package kernel

import "github.com/crStiv/miden-base/felt"

// AdviceMap is an in-memory witness channel keyed by SignatureAdviceKey.
// It is not safe for concurrent use; one map serves one transaction.
type AdviceMap struct {
	entries map[felt.Word][]byte
}

func NewAdviceMap() *AdviceMap {
	return &AdviceMap{entries: make(map[felt.Word][]byte)}
}

func (m *AdviceMap) Insert(key felt.Word, blob []byte) {
	if m.entries == nil {
		m.entries = make(map[felt.Word][]byte)
	}
	m.entries[key] = append([]byte(nil), blob...)
}

// PopSignature returns and removes the blob stored under key.
func (m *AdviceMap) PopSignature(key felt.Word) ([]byte, bool) {
	if m == nil || m.entries == nil {
		return nil, false
	}
	blob, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	delete(m.entries, key)
	return blob, true
}

func (m *AdviceMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}
