package kernel

import (
	"errors"
	"log/slog"

	"github.com/crStiv/miden-base/felt"
)

// Phase is the last step the gate reached.
type Phase uint8

const (
	PhaseStart Phase = iota
	PhaseGatherCommitments
	PhaseComposeMessage
	PhaseFetchKey
	PhaseAdvanceNonce
	PhaseVerify
	PhaseAuthorized
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "START"
	case PhaseGatherCommitments:
		return "GATHER_COMMITMENTS"
	case PhaseComposeMessage:
		return "COMPOSE_MESSAGE"
	case PhaseFetchKey:
		return "FETCH_KEY"
	case PhaseAdvanceNonce:
		return "ADVANCE_NONCE"
	case PhaseVerify:
		return "VERIFY"
	case PhaseAuthorized:
		return "AUTHORIZED"
	case PhaseRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// NonceOrdering selects where the nonce advance sits relative to Verify.
type NonceOrdering uint8

const (
	// NonceBeforeVerify advances before the signature check and relies on
	// the host discarding the advance on rejection.
	NonceBeforeVerify NonceOrdering = iota
	// NonceAfterVerify advances only once the signature checked out, for
	// hosts without atomic rollback.
	NonceAfterVerify
)

func (o NonceOrdering) String() string {
	if o == NonceAfterVerify {
		return "post_verify"
	}
	return "pre_verify"
}

// Outcome is Authorized or Rejected(Reason).
type Outcome struct {
	// Phase is PhaseAuthorized or PhaseRejected once Authenticate returns.
	Phase Phase
	// FailedAt is the step that rejected; PhaseStart when authorized.
	FailedAt Phase
	Account  AccountID
	// Nonce is the pre-increment value the message was built over.
	Nonce   Nonce
	Message felt.Word
	Reason  error
}

func (o Outcome) Authorized() bool { return o.Reason == nil && o.Phase == PhaseAuthorized }

// Code is the rejection code, or "" when authorized.
func (o Outcome) Code() ErrorCode { return CodeOf(o.Reason) }

type Authenticator struct {
	hasher   HashCompressor
	oracle   SignatureOracle
	ordering NonceOrdering
	logger   *slog.Logger
}

type Option func(*Authenticator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithNonceOrdering(o NonceOrdering) Option {
	return func(a *Authenticator) { a.ordering = o }
}

func NewAuthenticator(h HashCompressor, oracle SignatureOracle, opts ...Option) (*Authenticator, error) {
	if h == nil {
		return nil, errors.New("kernel: nil hash compressor")
	}
	if oracle == nil {
		return nil, errors.New("kernel: nil signature oracle")
	}
	a := &Authenticator{
		hasher:   h,
		oracle:   oracle,
		ordering: NonceBeforeVerify,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Authenticator) Hasher() HashCompressor { return a.hasher }

func (a *Authenticator) Ordering() NonceOrdering { return a.ordering }

// Authenticate runs the gate once for one transaction. It must run inside a
// host that commits the account's mutations only when the outcome is
// authorized.
func (a *Authenticator) Authenticate(tx TransactionContext, advice AdviceProvider) Outcome {
	out := Outcome{Phase: PhaseStart}
	if tx.Account == nil || tx.Notes == nil {
		return a.reject(out, txerr(AUTH_ERR_ACCOUNT_MISSING, "transaction context incomplete"))
	}
	acct := tx.Account
	out.Account = acct.ID()

	out.Phase = PhaseGatherCommitments
	outputHash := tx.Notes.OutputNotesHash()
	inputCommitment := tx.Notes.InputNotesCommitment()

	out.Phase = PhaseComposeMessage
	out.Nonce = acct.Nonce()
	out.Message = ComposeMessage(a.hasher, outputHash, inputCommitment, out.Account, out.Nonce)
	a.logger.Debug("auth message composed",
		"account", out.Account.String(),
		"nonce", uint64(out.Nonce),
		"message", out.Message.Hex(),
	)

	out.Phase = PhaseFetchKey
	pubKey, err := acct.Item(AuthKeySlot)
	if err != nil {
		return a.reject(out, err)
	}

	if a.ordering == NonceBeforeVerify {
		out.Phase = PhaseAdvanceNonce
		if err := acct.IncrNonce(1); err != nil {
			return a.reject(out, err)
		}
	}

	out.Phase = PhaseVerify
	if err := a.oracle.Verify(pubKey, out.Message, advice); err != nil {
		return a.reject(out, err)
	}

	if a.ordering == NonceAfterVerify {
		out.Phase = PhaseAdvanceNonce
		if err := acct.IncrNonce(1); err != nil {
			return a.reject(out, err)
		}
	}

	out.Phase = PhaseAuthorized
	a.logger.Debug("transaction authorized", "account", out.Account.String(), "nonce", uint64(out.Nonce)+1)
	return out
}

func (a *Authenticator) reject(out Outcome, err error) Outcome {
	if CodeOf(err) == "" {
		// uncoded errors only come from the host's storage layer
		err = &TxError{Code: AUTH_ERR_STORAGE_READ, Msg: err.Error()}
	}
	out.Reason = err
	out.FailedAt = out.Phase
	out.Phase = PhaseRejected
	a.logger.Warn("transaction rejected",
		"account", out.Account.String(),
		"phase", out.FailedAt.String(),
		"code", string(CodeOf(err)),
		"err", err,
	)
	return out
}
