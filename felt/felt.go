// Package felt implements elements of the 64-bit prime field used for all
// account and note commitments, and the four-element Word that carries every
// digest in the authentication gate.
package felt

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Modulus is p = 2^64 - 2^32 + 1.
const Modulus uint64 = 0xFFFFFFFF00000001

// WordBytes is the size of the canonical little-endian Word encoding.
const WordBytes = 32

// Felt is a field element in canonical form (< Modulus).
type Felt uint64

// NewFelt reduces v into the field.
func NewFelt(v uint64) Felt {
	if v >= Modulus {
		v -= Modulus
	}
	return Felt(v)
}

func (f Felt) Uint64() uint64 { return uint64(f) }

func (f Felt) IsCanonical() bool { return uint64(f) < Modulus }

// Word is four field elements.
type Word [4]Felt

var ZeroWord Word

func NewWord(a, b, c, d uint64) Word {
	return Word{NewFelt(a), NewFelt(b), NewFelt(c), NewFelt(d)}
}

func (w Word) IsZero() bool { return w == ZeroWord }

// Bytes returns the four limbs as u64 little-endian.
func (w Word) Bytes() [WordBytes]byte {
	var out [WordBytes]byte
	for i, f := range w {
		binary.LittleEndian.PutUint64(out[i*8:(i+1)*8], uint64(f))
	}
	return out
}

func (w Word) Hex() string {
	b := w.Bytes()
	return hex.EncodeToString(b[:])
}

func (w Word) String() string { return w.Hex() }

// WordFromBytes decodes the Bytes encoding and rejects non-canonical limbs.
func WordFromBytes(b []byte) (Word, error) {
	if len(b) != WordBytes {
		return Word{}, fmt.Errorf("word: expected %d bytes, got %d", WordBytes, len(b))
	}
	var w Word
	for i := range w {
		v := binary.LittleEndian.Uint64(b[i*8 : (i+1)*8])
		if v >= Modulus {
			return Word{}, fmt.Errorf("word: limb %d not canonical", i)
		}
		w[i] = Felt(v)
	}
	return w, nil
}

// WordFromDigest maps a 32-byte hash output into the field by reducing each
// little-endian u64 limb.
func WordFromDigest(d [32]byte) Word {
	var w Word
	for i := range w {
		w[i] = NewFelt(binary.LittleEndian.Uint64(d[i*8 : (i+1)*8]))
	}
	return w
}

func ParseWordHex(s string) (Word, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 2*WordBytes {
		return Word{}, fmt.Errorf("word: expected %d hex chars, got %d", 2*WordBytes, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Word{}, fmt.Errorf("word: %w", err)
	}
	return WordFromBytes(raw)
}
