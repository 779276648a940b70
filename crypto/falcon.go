package crypto

import (
	"errors"
	"fmt"
	"io"

	fndsa "github.com/pornin/go-fn-dsa"

	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
)

const (
	falconLogN = 9

	Falcon512PublicKeyBytes = 897
	Falcon512SecretKeyBytes = 1281
	Falcon512SignatureBytes = 666

	// SignatureWitnessBytes is the advice blob size: public key then signature.
	SignatureWitnessBytes = Falcon512PublicKeyBytes + Falcon512SignatureBytes
)

type Falcon512Keypair struct {
	Public []byte
	Secret []byte
}

// GenerateFalcon512Keypair draws a fresh key pair. A nil rng uses crypto/rand.
func GenerateFalcon512Keypair(rng io.Reader) (*Falcon512Keypair, error) {
	sk, pk, err := fndsa.KeyGen(falconLogN, rng)
	if err != nil {
		return nil, fmt.Errorf("falcon512 keygen: %w", err)
	}
	return &Falcon512Keypair{Public: pk, Secret: sk}, nil
}

// Commitment is the value to place in the account's auth slot.
func (k *Falcon512Keypair) Commitment() felt.Word {
	return PublicKeyCommitment(k.Public)
}

// SignMessage signs the canonical 32-byte encoding of msg.
func (k *Falcon512Keypair) SignMessage(msg felt.Word) ([]byte, error) {
	if k == nil || len(k.Secret) != Falcon512SecretKeyBytes {
		return nil, errors.New("falcon512: missing or malformed secret key")
	}
	data := msg.Bytes()
	sig, err := fndsa.Sign(nil, k.Secret, fndsa.DOMAIN_NONE, 0, data[:])
	if err != nil {
		return nil, fmt.Errorf("falcon512 sign: %w", err)
	}
	return sig, nil
}

// Witness signs msg and packs the result for the advice channel.
func (k *Falcon512Keypair) Witness(msg felt.Word) ([]byte, error) {
	sig, err := k.SignMessage(msg)
	if err != nil {
		return nil, err
	}
	return EncodeSignatureWitness(k.Public, sig)
}

func EncodeSignatureWitness(pub, sig []byte) ([]byte, error) {
	if len(pub) != Falcon512PublicKeyBytes {
		return nil, fmt.Errorf("witness: public key is %d bytes, want %d", len(pub), Falcon512PublicKeyBytes)
	}
	if len(sig) != Falcon512SignatureBytes {
		return nil, fmt.Errorf("witness: signature is %d bytes, want %d", len(sig), Falcon512SignatureBytes)
	}
	out := make([]byte, 0, SignatureWitnessBytes)
	out = append(out, pub...)
	return append(out, sig...), nil
}

// DecodeSignatureWitness splits a witness blob. It fails with
// AUTH_ERR_SIG_NONCANONICAL on any size or header mismatch.
func DecodeSignatureWitness(blob []byte) (pub, sig []byte, err error) {
	if len(blob) != SignatureWitnessBytes {
		return nil, nil, kernel.NewTxError(kernel.AUTH_ERR_SIG_NONCANONICAL,
			fmt.Sprintf("witness is %d bytes, want %d", len(blob), SignatureWitnessBytes))
	}
	pub = blob[:Falcon512PublicKeyBytes]
	sig = blob[Falcon512PublicKeyBytes:]
	if pub[0] != falconLogN {
		return nil, nil, kernel.NewTxError(kernel.AUTH_ERR_SIG_NONCANONICAL,
			fmt.Sprintf("public key header 0x%02x", pub[0]))
	}
	return pub, sig, nil
}

// Falcon512Oracle verifies Falcon-512 signatures taken from the advice
// channel against the key commitment read from the account.
type Falcon512Oracle struct {
	Hasher kernel.HashCompressor
}

func (o Falcon512Oracle) Verify(pubKey, message felt.Word, advice kernel.AdviceProvider) error {
	if advice == nil {
		return kernel.NewTxError(kernel.AUTH_ERR_MISSING_WITNESS, "no advice provider")
	}
	blob, ok := advice.PopSignature(kernel.SignatureAdviceKey(o.Hasher, pubKey, message))
	if !ok {
		return kernel.NewTxError(kernel.AUTH_ERR_MISSING_WITNESS, "no signature for key and message")
	}
	pub, sig, err := DecodeSignatureWitness(blob)
	if err != nil {
		return err
	}
	if PublicKeyCommitment(pub) != pubKey {
		return kernel.NewTxError(kernel.AUTH_ERR_SIG_INVALID, "public key does not match stored commitment")
	}
	data := message.Bytes()
	if !fndsa.Verify(pub, fndsa.DOMAIN_NONE, 0, data[:], sig) {
		return kernel.NewTxError(kernel.AUTH_ERR_SIG_INVALID, "falcon512 signature rejected")
	}
	return nil
}
