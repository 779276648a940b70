package node

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/crStiv/miden-base/felt"
)

func TestAdviceBundleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advice.json")
	key := felt.NewWord(1, 2, 3, 4)
	var b AdviceBundle
	b.Add(key, []byte{0xde, 0xad})
	if err := WriteAdviceBundle(path, &b); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadAdviceBundle(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, err := got.AdviceMap()
	if err != nil {
		t.Fatalf("AdviceMap: %v", err)
	}
	blob, ok := m.PopSignature(key)
	if !ok || !bytes.Equal(blob, []byte{0xde, 0xad}) {
		t.Fatalf("entry lost: ok=%v blob=%x", ok, blob)
	}

	bad := AdviceBundle{Entries: []AdviceEntry{{KeyHex: "00", WitnessHex: ""}}}
	if _, err := bad.AdviceMap(); err == nil {
		t.Fatalf("expected bad key error")
	}
	bad = AdviceBundle{Entries: []AdviceEntry{{KeyHex: key.Hex(), WitnessHex: "zz"}}}
	if _, err := bad.AdviceMap(); err == nil {
		t.Fatalf("expected bad witness error")
	}
}
