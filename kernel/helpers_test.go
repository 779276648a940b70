package kernel

import (
	"bytes"
	"crypto/sha256"
	"io"
	"log/slog"
	"testing"

	"github.com/crStiv/miden-base/felt"
)

// refHasher is a reference 2-to-1 compressor: SHA-256 over both encodings.
type refHasher struct{}

func (refHasher) Merge(a, b felt.Word) felt.Word {
	ab := a.Bytes()
	bb := b.Bytes()
	return felt.WordFromDigest(sha256.Sum256(append(ab[:], bb[:]...)))
}

// toyKey stands in for a real signature scheme: the witness carries the
// secret and a keyed hash over the message.
type toyKey struct {
	secret felt.Word
}

func newToyKey(seed uint64) toyKey {
	return toyKey{secret: felt.NewWord(seed, seed+1, seed+2, seed+3)}
}

func (k toyKey) pubKey() felt.Word {
	return refHasher{}.Merge(k.secret, felt.ZeroWord)
}

func (k toyKey) witness(msg felt.Word) []byte {
	s := k.secret.Bytes()
	sig := refHasher{}.Merge(k.secret, msg).Bytes()
	return append(s[:], sig[:]...)
}

type toyOracle struct {
	calls int
}

func (o *toyOracle) Verify(pubKey, message felt.Word, advice AdviceProvider) error {
	o.calls++
	blob, ok := advice.PopSignature(SignatureAdviceKey(refHasher{}, pubKey, message))
	if !ok {
		return txerr(AUTH_ERR_MISSING_WITNESS, "no signature on advice channel")
	}
	if len(blob) != 2*felt.WordBytes {
		return txerr(AUTH_ERR_SIG_NONCANONICAL, "bad witness length")
	}
	secret, err := felt.WordFromBytes(blob[:felt.WordBytes])
	if err != nil {
		return txerr(AUTH_ERR_SIG_NONCANONICAL, err.Error())
	}
	k := toyKey{secret: secret}
	if k.pubKey() != pubKey {
		return txerr(AUTH_ERR_SIG_INVALID, "key binding mismatch")
	}
	want := refHasher{}.Merge(secret, message).Bytes()
	if !bytes.Equal(blob[felt.WordBytes:], want[:]) {
		return txerr(AUTH_ERR_SIG_INVALID, "signature invalid")
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustAuthenticator(t *testing.T, oracle SignatureOracle, opts ...Option) *Authenticator {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	a, err := NewAuthenticator(refHasher{}, oracle, opts...)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

// signedAdvice returns an advice map holding k's witness for the message the
// gate will compose from st and notes.
func signedAdvice(st *AccountState, notes NotesCommitmentSource, k toyKey) *AdviceMap {
	msg := ComposeMessage(refHasher{}, notes.OutputNotesHash(), notes.InputNotesCommitment(), st.ID, st.Nonce)
	m := NewAdviceMap()
	m.Insert(SignatureAdviceKey(refHasher{}, k.pubKey(), msg), k.witness(msg))
	return m
}

// runAtomic mirrors what a host does: authenticate inside ExecuteAtomic and
// turn a rejection into an error so the working copy is dropped.
func runAtomic(a *Authenticator, st *AccountState, notes NotesCommitmentSource, advice AdviceProvider) Outcome {
	var out Outcome
	_ = ExecuteAtomic(st, func(view AccountStateView) error {
		out = a.Authenticate(TransactionContext{Account: view, Notes: notes}, advice)
		return out.Reason
	})
	return out
}

type recordingView struct {
	AccountStateView
	incrCalls int
}

func (v *recordingView) IncrNonce(delta uint64) error {
	v.incrCalls++
	return v.AccountStateView.IncrNonce(delta)
}
