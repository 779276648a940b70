package kernel

import "github.com/crStiv/miden-base/felt"

// InputNote is the part of a consumed note the commitment covers.
type InputNote struct {
	Nullifier  felt.Word
	ScriptRoot felt.Word
}

// OutputNote is the part of a produced note the commitment covers.
type OutputNote struct {
	NoteID   felt.Word
	Metadata felt.Word
}

// TransactionNotes derives both commitments from the note lists on every call;
// nothing is cached between calls.
type TransactionNotes struct {
	Hasher HashCompressor
	Input  []InputNote
	Output []OutputNote
}

func (n TransactionNotes) InputNotesCommitment() felt.Word {
	acc := felt.ZeroWord
	for _, in := range n.Input {
		acc = n.Hasher.Merge(acc, n.Hasher.Merge(in.Nullifier, in.ScriptRoot))
	}
	return acc
}

func (n TransactionNotes) OutputNotesHash() felt.Word {
	acc := felt.ZeroWord
	for _, out := range n.Output {
		acc = n.Hasher.Merge(acc, n.Hasher.Merge(out.NoteID, out.Metadata))
	}
	return acc
}

// StaticCommitments passes through commitments the enclosing kernel already
// computed.
type StaticCommitments struct {
	Output felt.Word
	Input  felt.Word
}

func (s StaticCommitments) OutputNotesHash() felt.Word      { return s.Output }
func (s StaticCommitments) InputNotesCommitment() felt.Word { return s.Input }
