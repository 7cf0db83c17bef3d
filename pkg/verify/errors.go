package verify

import (
	"errors"
	"fmt"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
)

var (
	ErrInvalidSigner = errors.New("invalid signer address")
	ErrMissingFile   = errors.New("no document provided")
)

// ConsistencyError reports a registry that claims a digest exists but cannot
// return its record.
type ConsistencyError struct {
	Digest digest.Digest
	Err    error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("registry inconsistent for %s: exists but lookup failed: %v", e.Digest.Hex(), e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// FailedError wraps a registry failure during verification. It is never a
// verdict about the document.
type FailedError struct {
	Op  string
	Err error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("verification failed during %s: %v", e.Op, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}
