package node

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
	"github.com/crStiv/miden-base/node/store"
)

// Executor is the host for the authentication gate: it runs every
// authentication inside one store transaction and commits the nonce advance
// only for authorized outcomes.
type Executor struct {
	store  store.AccountStore
	auth   *kernel.Authenticator
	logger *slog.Logger
}

func NewExecutor(s store.AccountStore, auth *kernel.Authenticator, logger *slog.Logger) (*Executor, error) {
	if s == nil {
		return nil, errors.New("executor: nil store")
	}
	if auth == nil {
		return nil, errors.New("executor: nil authenticator")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: s, auth: auth, logger: logger}, nil
}

// Authenticate runs the gate for account id. The returned error is non-nil
// only for host failures; a rejection is reported in the Outcome.
func (e *Executor) Authenticate(id kernel.AccountID, notes kernel.NotesCommitmentSource, advice kernel.AdviceProvider) (kernel.Outcome, error) {
	var out kernel.Outcome
	ran := false
	err := e.store.Update(id, func(view kernel.AccountStateView) error {
		ran = true
		out = e.auth.Authenticate(kernel.TransactionContext{Account: view, Notes: notes}, advice)
		return out.Reason
	})
	if !ran {
		if kernel.CodeOf(err) == kernel.AUTH_ERR_ACCOUNT_MISSING {
			out = kernel.Outcome{Phase: kernel.PhaseRejected, Account: id, Reason: err}
			e.logger.Warn("transaction rejected", "account", id.String(), "code", string(kernel.AUTH_ERR_ACCOUNT_MISSING))
			return out, nil
		}
		return out, errors.Wrapf(err, "executor: load account %s", id)
	}
	if out.Authorized() {
		if err != nil {
			return out, errors.Wrapf(err, "executor: commit account %s", id)
		}
		e.logger.Info("nonce committed", "account", id.String(), "nonce", uint64(out.Nonce)+1)
	}
	return out, nil
}

// CreateAccount seeds a new account at nonce 0 with pubKey in the auth slot.
func (e *Executor) CreateAccount(id kernel.AccountID, pubKey felt.Word) (*kernel.AccountState, error) {
	if _, ok, err := e.store.GetAccount(id); err != nil {
		return nil, err
	} else if ok {
		return nil, errors.Errorf("executor: account %s already exists", id)
	}
	st := kernel.NewAccountState(id, pubKey)
	if err := e.store.PutAccount(st); err != nil {
		return nil, err
	}
	e.logger.Info("account created", "account", id.String(), "key", pubKey.Hex())
	return st, nil
}

func (e *Executor) Account(id kernel.AccountID) (*kernel.AccountState, bool, error) {
	return e.store.GetAccount(id)
}
