// Package kernel implements the single-key transaction authentication gate:
// it folds the transaction's note commitments and the account's identity and
// nonce into one message, advances the nonce, and hands the message to a
// signature oracle that pulls its witness from an out-of-band channel.
//
// The gate never rolls anything back itself. Callers run it inside an atomic
// host (ExecuteAtomic, or a store transaction) that discards every effect when
// the returned Outcome is not authorized.
package kernel

import "github.com/crStiv/miden-base/felt"

// Nonce is the per-account replay counter. It is always a canonical field
// element, so MaxNonce is p-1.
type Nonce uint64

const MaxNonce Nonce = Nonce(felt.Modulus - 1)

// AuthKeySlot is the storage index holding the public-key commitment.
// Deployed accounts depend on this value.
const AuthKeySlot uint8 = 0

const NumStorageSlots = 255

// AccountStateView is the account accessor the gate runs against. Reads have
// no side effects; IncrNonce is observable only once the host commits.
type AccountStateView interface {
	ID() AccountID
	Nonce() Nonce
	Item(slot uint8) (felt.Word, error)
	IncrNonce(delta uint64) error
}

// NotesCommitmentSource supplies the transaction's note commitments.
type NotesCommitmentSource interface {
	OutputNotesHash() felt.Word
	InputNotesCommitment() felt.Word
}

// HashCompressor is the fixed 2-to-1 compression function H.
type HashCompressor interface {
	Merge(a, b felt.Word) felt.Word
}

// AdviceProvider is the witness channel. A blob is handed out at most once.
type AdviceProvider interface {
	PopSignature(key felt.Word) ([]byte, bool)
}

// SignatureOracle checks a signature, taken from advice, over message against
// the key committed to by pubKey. It returns nil or a *TxError.
type SignatureOracle interface {
	Verify(pubKey, message felt.Word, advice AdviceProvider) error
}

// TransactionContext bundles the host state the gate reads. Signature bytes
// never travel through it.
type TransactionContext struct {
	Account AccountStateView
	Notes   NotesCommitmentSource
}
