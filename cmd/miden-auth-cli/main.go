package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crStiv/miden-base/crypto"
	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
	"github.com/crStiv/miden-base/node"
)

type NoteJSON struct {
	A string `json:"a"`
	B string `json:"b"`
}

type Request struct {
	Op     string `json:"op"`
	Hasher string `json:"hasher,omitempty"`

	AccountID       string `json:"account_id,omitempty"`
	Nonce           uint64 `json:"nonce,omitempty"`
	Delta           uint64 `json:"delta,omitempty"`
	OutputHash      string `json:"output_hash,omitempty"`
	InputCommitment string `json:"input_commitment,omitempty"`
	PubKey          string `json:"pubkey_commitment,omitempty"`
	Message         string `json:"message,omitempty"`
	PubKeyHex       string `json:"pubkey_hex,omitempty"`
	WitnessHex      string `json:"witness_hex,omitempty"`
	Ordering        string `json:"nonce_ordering,omitempty"`

	InputNotes  []NoteJSON `json:"input_notes,omitempty"`
	OutputNotes []NoteJSON `json:"output_notes,omitempty"`
}

type Response struct {
	Ok              bool    `json:"ok"`
	Err             string  `json:"err,omitempty"`
	Message         string  `json:"message,omitempty"`
	Commitment      string  `json:"commitment,omitempty"`
	AdviceKey       string  `json:"advice_key,omitempty"`
	InputCommitment string  `json:"input_commitment,omitempty"`
	OutputHash      string  `json:"output_hash,omitempty"`
	Nonce           *uint64 `json:"nonce,omitempty"`
	Phase           string  `json:"phase,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func writeAuthErr(w io.Writer, err error) {
	if code := kernel.CodeOf(err); code != "" {
		writeResp(w, Response{Ok: false, Err: string(code)})
		return
	}
	writeResp(w, Response{Ok: false, Err: err.Error()})
}

func hasherFor(req Request) (kernel.HashCompressor, error) {
	name := req.Hasher
	if name == "" {
		name = crypto.HasherPoseidon
	}
	return crypto.NewHashCompressor(name)
}

func parseWords(fields ...*string) ([]felt.Word, error) {
	out := make([]felt.Word, 0, len(fields))
	for _, f := range fields {
		w, err := felt.ParseWordHex(*f)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func parseNotes(items []NoteJSON) ([][2]felt.Word, error) {
	out := make([][2]felt.Word, 0, len(items))
	for _, n := range items {
		ws, err := parseWords(&n.A, &n.B)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]felt.Word{ws[0], ws[1]})
	}
	return out, nil
}

func u64ptr(v uint64) *uint64 { return &v }

func run(r io.Reader, w io.Writer) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		writeResp(w, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return
	}
	h, err := hasherFor(req)
	if err != nil {
		writeResp(w, Response{Ok: false, Err: "bad hasher"})
		return
	}

	switch req.Op {
	case "compose_message":
		ws, err := parseWords(&req.OutputHash, &req.InputCommitment)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad word"})
			return
		}
		id, err := kernel.ParseAccountIDHex(req.AccountID)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad account_id"})
			return
		}
		msg := kernel.ComposeMessage(h, ws[0], ws[1], id, kernel.Nonce(req.Nonce))
		writeResp(w, Response{Ok: true, Message: msg.Hex()})

	case "key_commitment":
		pub, err := hex.DecodeString(req.PubKeyHex)
		if err != nil || len(pub) != crypto.Falcon512PublicKeyBytes {
			writeResp(w, Response{Ok: false, Err: "bad pubkey"})
			return
		}
		writeResp(w, Response{Ok: true, Commitment: crypto.PublicKeyCommitment(pub).Hex()})

	case "advice_key":
		ws, err := parseWords(&req.PubKey, &req.Message)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad word"})
			return
		}
		writeResp(w, Response{Ok: true, AdviceKey: kernel.SignatureAdviceKey(h, ws[0], ws[1]).Hex()})

	case "notes_commitments":
		ins, err := parseNotes(req.InputNotes)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad input note"})
			return
		}
		outs, err := parseNotes(req.OutputNotes)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad output note"})
			return
		}
		notes := kernel.TransactionNotes{Hasher: h}
		for _, n := range ins {
			notes.Input = append(notes.Input, kernel.InputNote{Nullifier: n[0], ScriptRoot: n[1]})
		}
		for _, n := range outs {
			notes.Output = append(notes.Output, kernel.OutputNote{NoteID: n[0], Metadata: n[1]})
		}
		writeResp(w, Response{
			Ok:              true,
			InputCommitment: notes.InputNotesCommitment().Hex(),
			OutputHash:      notes.OutputNotesHash().Hex(),
		})

	case "next_nonce":
		next, err := kernel.NextNonce(kernel.Nonce(req.Nonce), req.Delta)
		if err != nil {
			writeAuthErr(w, err)
			return
		}
		writeResp(w, Response{Ok: true, Nonce: u64ptr(uint64(next))})

	case "verify":
		ws, err := parseWords(&req.PubKey, &req.Message)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad word"})
			return
		}
		advice, err := adviceFor(h, ws[0], ws[1], req.WitnessHex)
		if err != nil {
			writeResp(w, Response{Ok: false, Err: "bad witness_hex"})
			return
		}
		if err := (crypto.Falcon512Oracle{Hasher: h}).Verify(ws[0], ws[1], advice); err != nil {
			writeAuthErr(w, err)
			return
		}
		writeResp(w, Response{Ok: true})

	case "authenticate":
		runAuthenticate(w, h, req)

	default:
		writeResp(w, Response{Ok: false, Err: "unknown op"})
	}
}

// adviceFor files the witness where the gate will look for it. An empty
// witness yields an empty channel.
func adviceFor(h kernel.HashCompressor, pubKey, msg felt.Word, witnessHex string) (*kernel.AdviceMap, error) {
	advice := kernel.NewAdviceMap()
	if witnessHex == "" {
		return advice, nil
	}
	blob, err := hex.DecodeString(witnessHex)
	if err != nil {
		return nil, err
	}
	advice.Insert(kernel.SignatureAdviceKey(h, pubKey, msg), blob)
	return advice, nil
}

func runAuthenticate(w io.Writer, h kernel.HashCompressor, req Request) {
	ws, err := parseWords(&req.PubKey, &req.OutputHash, &req.InputCommitment)
	if err != nil {
		writeResp(w, Response{Ok: false, Err: "bad word"})
		return
	}
	id, err := kernel.ParseAccountIDHex(req.AccountID)
	if err != nil {
		writeResp(w, Response{Ok: false, Err: "bad account_id"})
		return
	}
	ordering := kernel.NonceBeforeVerify
	if req.Ordering == kernel.NonceAfterVerify.String() {
		ordering = kernel.NonceAfterVerify
	}
	st := kernel.NewAccountState(id, ws[0])
	st.Nonce = kernel.Nonce(req.Nonce)
	notes := kernel.StaticCommitments{Output: ws[1], Input: ws[2]}

	msg := kernel.ComposeMessage(h, notes.Output, notes.Input, id, st.Nonce)
	advice, err := adviceFor(h, ws[0], msg, req.WitnessHex)
	if err != nil {
		writeResp(w, Response{Ok: false, Err: "bad witness_hex"})
		return
	}
	auth, err := kernel.NewAuthenticator(h, crypto.Falcon512Oracle{Hasher: h},
		kernel.WithLogger(node.NewLogger("warn", os.Stderr)),
		kernel.WithNonceOrdering(ordering),
	)
	if err != nil {
		writeResp(w, Response{Ok: false, Err: err.Error()})
		return
	}

	var out kernel.Outcome
	_ = kernel.ExecuteAtomic(st, func(view kernel.AccountStateView) error {
		out = auth.Authenticate(kernel.TransactionContext{Account: view, Notes: notes}, advice)
		return out.Reason
	})
	resp := Response{
		Ok:      out.Authorized(),
		Message: out.Message.Hex(),
		Nonce:   u64ptr(uint64(st.Nonce)),
		Phase:   out.FailedAt.String(),
	}
	if !resp.Ok {
		resp.Err = string(out.Code())
	} else {
		resp.Phase = out.Phase.String()
	}
	writeResp(w, resp)
}

func main() {
	run(os.Stdin, os.Stdout)
}
