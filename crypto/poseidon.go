package crypto

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/crStiv/miden-base/felt"
)

// PoseidonCompressor hashes the eight limbs of (a, b) with Poseidon over the
// BN254 scalar field and maps the result back into a Word.
type PoseidonCompressor struct{}

func (PoseidonCompressor) Merge(a, b felt.Word) felt.Word {
	in := make([]*big.Int, 0, 8)
	for _, w := range [2]felt.Word{a, b} {
		for _, f := range w {
			in = append(in, new(big.Int).SetUint64(f.Uint64()))
		}
	}
	out, err := poseidon.Hash(in)
	if err != nil {
		// eight u64 inputs are always in range
		panic("crypto: poseidon: " + err.Error())
	}
	var d [32]byte
	out.FillBytes(d[:])
	return felt.WordFromDigest(d)
}
