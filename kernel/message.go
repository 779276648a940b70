package kernel

import "github.com/crStiv/miden-base/felt"

// ComposeMessage derives the signed message
//
//	H(outputHash, H(inputCommitment, H(0,0,0,0, id,0,0,nonce)))
//
// The nesting and operand order are part of the wire contract.
func ComposeMessage(h HashCompressor, outputHash, inputCommitment felt.Word, id AccountID, nonce Nonce) felt.Word {
	m := h.Merge(felt.ZeroWord, padAccountNonce(id, nonce))
	m = h.Merge(inputCommitment, m)
	return h.Merge(outputHash, m)
}

func padAccountNonce(id AccountID, nonce Nonce) felt.Word {
	return felt.Word{id.Felt(), 0, 0, felt.Felt(nonce)}
}

// SignatureAdviceKey is where a prover places the signature witness for the
// (pubKey, message) pair.
func SignatureAdviceKey(h HashCompressor, pubKey, message felt.Word) felt.Word {
	return h.Merge(pubKey, message)
}
