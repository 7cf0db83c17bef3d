package identity

import "errors"

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidPath      = errors.New("invalid derivation path")
	ErrInvalidCount     = errors.New("account count out of range")
	ErrInvalidIndex     = errors.New("account index out of range")
	ErrNotConnected     = errors.New("no account selected")
	ErrAccountMismatch  = errors.New("account does not match derived account")
	ErrUnknownAccount   = errors.New("address is not a derived account")
	ErrInvalidSignature = errors.New("invalid signature")
)
