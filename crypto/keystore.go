package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Sealed secret key layout:
//
//	magic "MSK1" | salt (16) | nonce (24) | XChaCha20-Poly1305(secret)
const (
	keystoreMagic   = "MSK1"
	keystoreSaltLen = 16
)

// Scrypt cost for SealSecretKey. Tests lower it.
var (
	ScryptN = 1 << 15
	ScryptR = 8
	ScryptP = 1
)

func deriveKEK(passphrase, salt []byte) ([]byte, error) {
	return scrypt.Key(passphrase, salt, ScryptN, ScryptR, ScryptP, chacha20poly1305.KeySize)
}

// SealSecretKey encrypts sk under a key derived from passphrase.
func SealSecretKey(passphrase, sk []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("keystore: empty passphrase")
	}
	salt := make([]byte, keystoreSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: salt: %w", err)
	}
	kek, err := deriveKEK(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("keystore: kdf: %w", err)
	}
	aead, err := chacha20poly1305.NewX(kek)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: nonce: %w", err)
	}
	out := make([]byte, 0, len(keystoreMagic)+len(salt)+len(nonce)+len(sk)+aead.Overhead())
	out = append(out, keystoreMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, sk, []byte(keystoreMagic)), nil
}

func OpenSecretKey(passphrase, sealed []byte) ([]byte, error) {
	hdr := len(keystoreMagic) + keystoreSaltLen + chacha20poly1305.NonceSizeX
	if len(sealed) < hdr+chacha20poly1305.Overhead {
		return nil, errors.New("keystore: sealed key too short")
	}
	if string(sealed[:len(keystoreMagic)]) != keystoreMagic {
		return nil, errors.New("keystore: bad magic")
	}
	salt := sealed[len(keystoreMagic) : len(keystoreMagic)+keystoreSaltLen]
	nonce := sealed[len(keystoreMagic)+keystoreSaltLen : hdr]
	kek, err := deriveKEK(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("keystore: kdf: %w", err)
	}
	aead, err := chacha20poly1305.NewX(kek)
	if err != nil {
		return nil, err
	}
	sk, err := aead.Open(nil, nonce, sealed[hdr:], []byte(keystoreMagic))
	if err != nil {
		return nil, errors.New("keystore: wrong passphrase or corrupted key")
	}
	return sk, nil
}
