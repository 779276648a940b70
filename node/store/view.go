package store

import (
	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
)

// recordView exposes a decoded record to the gate. Mutations land in st and
// are written back only when the surrounding transaction commits.
type recordView struct {
	st *kernel.AccountState
}

func (v *recordView) ID() kernel.AccountID { return v.st.ID }
func (v *recordView) Nonce() kernel.Nonce  { return v.st.Nonce }

func (v *recordView) Item(slot uint8) (felt.Word, error) {
	return kernel.ReadSlot(v.st.Storage, slot)
}

func (v *recordView) IncrNonce(delta uint64) error {
	next, err := kernel.NextNonce(v.st.Nonce, delta)
	if err != nil {
		return err
	}
	v.st.Nonce = next
	return nil
}

func accountMissing(id kernel.AccountID) error {
	return kernel.NewTxError(kernel.AUTH_ERR_ACCOUNT_MISSING, "no account "+id.String())
}
