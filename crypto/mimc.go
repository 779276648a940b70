package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/mimc"

	"github.com/crStiv/miden-base/felt"
)

// MiMCCompressor absorbs each limb of (a, b) as one BLS12-377 scalar and maps
// the MiMC sum into a Word.
type MiMCCompressor struct{}

func (MiMCCompressor) Merge(a, b felt.Word) felt.Word {
	h := mimc.NewMiMC()
	var e fr.Element
	for _, w := range [2]felt.Word{a, b} {
		for _, f := range w {
			e.SetUint64(f.Uint64())
			buf := e.Bytes()
			if _, err := h.Write(buf[:]); err != nil {
				panic("crypto: mimc: " + err.Error())
			}
		}
	}
	var d [32]byte
	copy(d[:], h.Sum(nil))
	return felt.WordFromDigest(d)
}
