package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/crStiv/miden-base/felt"
)

// AccountState is the slice of account state the gate touches.
type AccountState struct {
	ID      AccountID
	Nonce   Nonce
	Storage map[uint8]felt.Word
}

func NewAccountState(id AccountID, pubKey felt.Word) *AccountState {
	return &AccountState{
		ID:      id,
		Storage: map[uint8]felt.Word{AuthKeySlot: pubKey},
	}
}

func (s *AccountState) Clone() *AccountState {
	if s == nil {
		return nil
	}
	out := &AccountState{
		ID:      s.ID,
		Nonce:   s.Nonce,
		Storage: make(map[uint8]felt.Word, len(s.Storage)),
	}
	for k, v := range s.Storage {
		out.Storage[k] = v
	}
	return out
}

// NextNonce applies a nonce increment with the gate's rules: delta must fit
// u32 and the result must stay a field element.
func NextNonce(cur Nonce, delta uint64) (Nonce, error) {
	if delta > math.MaxUint32 {
		return cur, txerr(AUTH_ERR_NONCE_DELTA, fmt.Sprintf("delta %d exceeds u32", delta))
	}
	if uint64(cur) > uint64(MaxNonce)-delta {
		return cur, txerr(AUTH_ERR_NONCE_OVERFLOW, fmt.Sprintf("nonce %d + %d exceeds %d", cur, delta, MaxNonce))
	}
	return cur + Nonce(delta), nil
}

// ReadSlot returns the word at slot or AUTH_ERR_STORAGE_READ when unset.
func ReadSlot(storage map[uint8]felt.Word, slot uint8) (felt.Word, error) {
	w, ok := storage[slot]
	if !ok {
		return felt.Word{}, txerr(AUTH_ERR_STORAGE_READ, fmt.Sprintf("storage slot %d unset", slot))
	}
	return w, nil
}

type memoryView struct {
	st *AccountState
}

func (v memoryView) ID() AccountID                      { return v.st.ID }
func (v memoryView) Nonce() Nonce                       { return v.st.Nonce }
func (v memoryView) Item(slot uint8) (felt.Word, error) { return ReadSlot(v.st.Storage, slot) }

func (v memoryView) IncrNonce(delta uint64) error {
	next, err := NextNonce(v.st.Nonce, delta)
	if err != nil {
		return err
	}
	v.st.Nonce = next
	return nil
}

// ExecuteAtomic runs fn against a working copy of state and swaps the copy in
// only when fn returns nil.
func ExecuteAtomic(state *AccountState, fn func(AccountStateView) error) error {
	if state == nil {
		return errors.New("nil account state")
	}
	work := state.Clone()
	if err := fn(memoryView{st: work}); err != nil {
		return err
	}
	*state = *work
	return nil
}
