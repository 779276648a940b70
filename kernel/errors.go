package kernel

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	AUTH_ERR_STORAGE_READ     ErrorCode = "AUTH_ERR_STORAGE_READ"
	AUTH_ERR_MISSING_WITNESS  ErrorCode = "AUTH_ERR_MISSING_WITNESS"
	AUTH_ERR_SIG_NONCANONICAL ErrorCode = "AUTH_ERR_SIG_NONCANONICAL"
	AUTH_ERR_SIG_INVALID      ErrorCode = "AUTH_ERR_SIG_INVALID"
	AUTH_ERR_NONCE_OVERFLOW   ErrorCode = "AUTH_ERR_NONCE_OVERFLOW"
	AUTH_ERR_NONCE_DELTA      ErrorCode = "AUTH_ERR_NONCE_DELTA"
	AUTH_ERR_ACCOUNT_MISSING  ErrorCode = "AUTH_ERR_ACCOUNT_MISSING"
)

// TxError is the only failure value the gate produces. Every code means the
// enclosing transaction is rejected as a unit.
type TxError struct {
	Code ErrorCode
	Msg  string
}

func (e *TxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func txerr(code ErrorCode, msg string) error {
	return &TxError{Code: code, Msg: msg}
}

// NewTxError is txerr for collaborators outside the package (oracles, stores).
func NewTxError(code ErrorCode, msg string) error {
	return txerr(code, msg)
}

// CodeOf returns the code of the first *TxError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var te *TxError
	if errors.As(err, &te) && te != nil {
		return te.Code
	}
	return ""
}
