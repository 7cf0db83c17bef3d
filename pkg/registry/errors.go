package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("document not registered")
	ErrIndexOutOfRange   = errors.New("registry index out of range")
	ErrAlreadyRegistered = errors.New("document already registered")
	ErrRangeUnsupported  = errors.New("registry does not support range reads")
)

type Kind string

const (
	KindUnreachable Kind = "unreachable"
	KindDecode      Kind = "decode"
	KindRejected    Kind = "rejected"
)

// StorageError reports a failed round trip to the ledger.
type StorageError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("registry %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Hint is a short remediation message for the operator.
func (e *StorageError) Hint() string {
	switch e.Kind {
	case KindDecode:
		return "the registry answered with data that could not be decoded; check that the configured contract address and network are correct"
	case KindRejected:
		return "the registry rejected the request; check the account balance and the record contents"
	default:
		return "the registry could not be reached; check that the node or mirror endpoint is running and reachable"
	}
}

func NewStorageError(op string, kind Kind, err error) *StorageError {
	return &StorageError{Op: op, Kind: kind, Err: err}
}

// Classify wraps a backend failure in a StorageError. Registry sentinels,
// existing StorageErrors, and context errors are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrAlreadyRegistered) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "could not decode"),
		strings.Contains(message, "abi:"),
		strings.Contains(message, "unmarshal"),
		strings.Contains(message, "invalid character"):
		return NewStorageError(op, KindDecode, err)
	case strings.Contains(message, "execution reverted"),
		strings.Contains(message, "insufficient funds"),
		strings.Contains(message, "nonce too low"):
		return NewStorageError(op, KindRejected, err)
	default:
		return NewStorageError(op, KindUnreachable, err)
	}
}

// IsConnectivity reports whether err is a storage failure rather than a
// registry outcome such as ErrNotFound.
func IsConnectivity(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
