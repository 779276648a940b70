package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crStiv/miden-base/crypto"
	"github.com/crStiv/miden-base/node"
)

const (
	keystoreVersion = "MAKSv1"
	keystoreScheme  = "falcon512"
	keystoreSealAlg = "scrypt-xchacha20poly1305"

	defaultPassphraseEnv = "MIDEN_AUTH_PASSPHRASE"
)

type KeyStoreV1 struct {
	Version       string `json:"version"`
	Scheme        string `json:"scheme"`
	PubkeyHex     string `json:"pubkey_hex"`
	CommitmentHex string `json:"commitment_hex"`
	SealAlg       string `json:"seal_alg"`
	SealedSKHex   string `json:"sealed_sk_hex"`
}

func passphraseFromEnv(name string) ([]byte, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, fmt.Errorf("passphrase env %s is empty", name)
	}
	return []byte(v), nil
}

func readKeystore(path string) (*KeyStoreV1, error) {
	raw, err := node.ReadInputFile(path)
	if err != nil {
		return nil, err
	}
	var ks KeyStoreV1
	if err := json.Unmarshal(raw, &ks); err != nil {
		return nil, err
	}
	if ks.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported keystore version: %q", ks.Version)
	}
	if ks.Scheme != keystoreScheme {
		return nil, fmt.Errorf("unsupported scheme: %q", ks.Scheme)
	}
	if !strings.EqualFold(ks.SealAlg, keystoreSealAlg) {
		return nil, fmt.Errorf("unsupported seal_alg: %q", ks.SealAlg)
	}
	return &ks, nil
}

// checkCommitment recomputes the key commitment and compares it with the one
// embedded in the keystore.
func (ks *KeyStoreV1) checkCommitment() ([]byte, error) {
	pub, err := hex.DecodeString(ks.PubkeyHex)
	if err != nil {
		return nil, fmt.Errorf("pubkey_hex: %w", err)
	}
	if len(pub) != crypto.Falcon512PublicKeyBytes {
		return nil, fmt.Errorf("pubkey must be %d bytes (got %d)", crypto.Falcon512PublicKeyBytes, len(pub))
	}
	got := crypto.PublicKeyCommitment(pub).Hex()
	if ks.CommitmentHex != "" && !strings.EqualFold(ks.CommitmentHex, got) {
		return nil, fmt.Errorf("keystore commitment mismatch: embedded=%s computed=%s", ks.CommitmentHex, got)
	}
	return pub, nil
}

func unlockKeystore(path, passEnv string) (*crypto.Falcon512Keypair, error) {
	ks, err := readKeystore(path)
	if err != nil {
		return nil, err
	}
	pub, err := ks.checkCommitment()
	if err != nil {
		return nil, err
	}
	sealed, err := hex.DecodeString(ks.SealedSKHex)
	if err != nil {
		return nil, fmt.Errorf("sealed_sk_hex: %w", err)
	}
	pass, err := passphraseFromEnv(passEnv)
	if err != nil {
		return nil, err
	}
	sk, err := crypto.OpenSecretKey(pass, sealed)
	if err != nil {
		return nil, err
	}
	return &crypto.Falcon512Keypair{Public: pub, Secret: sk}, nil
}

func cmdKeygen(argv []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	out := fs.String("out", "", "output keystore json path")
	passEnv := fs.String("passphrase-env", defaultPassphraseEnv, "environment variable holding the keystore passphrase")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("missing required flag: --out")
	}
	pass, err := passphraseFromEnv(*passEnv)
	if err != nil {
		return err
	}
	kp, err := crypto.GenerateFalcon512Keypair(nil)
	if err != nil {
		return err
	}
	sealed, err := crypto.SealSecretKey(pass, kp.Secret)
	if err != nil {
		return err
	}
	ks := KeyStoreV1{
		Version:       keystoreVersion,
		Scheme:        keystoreScheme,
		PubkeyHex:     hex.EncodeToString(kp.Public),
		CommitmentHex: kp.Commitment().Hex(),
		SealAlg:       keystoreSealAlg,
		SealedSKHex:   hex.EncodeToString(sealed),
	}
	b, err := json.Marshal(ks)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.WriteFile(*out, b, 0o600); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, ks.CommitmentHex)
	return nil
}

func cmdVerifyKeystore(argv []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("verify-keystore", flag.ContinueOnError)
	in := fs.String("in", "", "input keystore json path")
	expected := fs.String("expected-commitment", "", "optional expected key commitment hex")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("missing required flag: --in")
	}
	ks, err := readKeystore(*in)
	if err != nil {
		return err
	}
	pub, err := ks.checkCommitment()
	if err != nil {
		return err
	}
	got := crypto.PublicKeyCommitment(pub).Hex()
	if *expected != "" {
		exp := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(*expected), "0x"))
		if exp != got {
			return fmt.Errorf("expected commitment mismatch: expected=%s computed=%s", exp, got)
		}
	}
	_, _ = fmt.Fprintln(stdout, got)
	return nil
}
