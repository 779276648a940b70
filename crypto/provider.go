package crypto

import (
	"fmt"
	"sort"

	"github.com/crStiv/miden-base/kernel"
)

const (
	HasherPoseidon = "poseidon"
	HasherMiMC     = "mimc"
)

var hashers = map[string]func() kernel.HashCompressor{
	HasherPoseidon: func() kernel.HashCompressor { return PoseidonCompressor{} },
	HasherMiMC:     func() kernel.HashCompressor { return MiMCCompressor{} },
}

// NewHashCompressor returns the 2-to-1 compressor registered under name.
// Every party to an account must agree on it: the message, the advice key
// and the note commitments all depend on the choice.
func NewHashCompressor(name string) (kernel.HashCompressor, error) {
	mk, ok := hashers[name]
	if !ok {
		return nil, fmt.Errorf("crypto: unknown hasher %q (have %v)", name, HasherNames())
	}
	return mk(), nil
}

func HasherNames() []string {
	out := make([]string, 0, len(hashers))
	for name := range hashers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
