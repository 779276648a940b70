package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/crStiv/miden-base/felt"
)

func SHA3_256(input []byte) [32]byte {
	h := sha3.New256()
	_, _ = h.Write(input)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PublicKeyCommitment is the Word stored in the auth slot for an encoded
// verifying key.
func PublicKeyCommitment(pub []byte) felt.Word {
	return felt.WordFromDigest(SHA3_256(pub))
}
