package felt

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestNewFeltReduces(t *testing.T) {
	if got := NewFelt(Modulus); got != 0 {
		t.Fatalf("NewFelt(p)=%d", got)
	}
	if got := NewFelt(Modulus + 5); got != 5 {
		t.Fatalf("NewFelt(p+5)=%d", got)
	}
	if got := NewFelt(^uint64(0)); got.Uint64() != ^uint64(0)-Modulus {
		t.Fatalf("NewFelt(max)=%d", got)
	}
	if !NewFelt(Modulus - 1).IsCanonical() {
		t.Fatalf("p-1 must be canonical")
	}
	if Felt(Modulus).IsCanonical() {
		t.Fatalf("p must not be canonical")
	}
}

func TestWordBytesRoundTrip(t *testing.T) {
	w := NewWord(1, 2, 3, Modulus-1)
	b := w.Bytes()
	if binary.LittleEndian.Uint64(b[0:8]) != 1 || binary.LittleEndian.Uint64(b[24:32]) != Modulus-1 {
		t.Fatalf("unexpected layout: %x", b)
	}
	got, err := WordFromBytes(b[:])
	if err != nil {
		t.Fatalf("WordFromBytes: %v", err)
	}
	if got != w {
		t.Fatalf("got=%v want=%v", got, w)
	}
}

func TestWordFromBytesRejects(t *testing.T) {
	if _, err := WordFromBytes(make([]byte, 31)); err == nil {
		t.Fatalf("expected length error")
	}
	b := make([]byte, WordBytes)
	binary.LittleEndian.PutUint64(b[8:16], Modulus)
	if _, err := WordFromBytes(b); err == nil {
		t.Fatalf("expected non-canonical error")
	}
}

func TestWordFromDigestIsCanonical(t *testing.T) {
	var d [32]byte
	for i := range d {
		d[i] = 0xff
	}
	w := WordFromDigest(d)
	for i, f := range w {
		if !f.IsCanonical() {
			t.Fatalf("limb %d not canonical", i)
		}
	}
}

func TestParseWordHex(t *testing.T) {
	w := NewWord(7, 0, 0, 9)
	got, err := ParseWordHex("0x" + w.Hex())
	if err != nil || got != w {
		t.Fatalf("ParseWordHex: got=%v err=%v", got, err)
	}
	if _, err := ParseWordHex(strings.Repeat("zz", 32)); err == nil {
		t.Fatalf("expected bad hex error")
	}
	if _, err := ParseWordHex("00"); err == nil {
		t.Fatalf("expected length error")
	}
	if ZeroWord.IsZero() != true || w.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}
