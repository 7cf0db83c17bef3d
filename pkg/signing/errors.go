package signing

import (
	"errors"
	"fmt"
)

var ErrDeclined = errors.New("declined by user")

// PendingError carries a record that was signed but not stored. Pass
// Pending to Workflow.Store to retry without signing again.
type PendingError struct {
	Pending Pending
	Err     error
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("document %s signed but not stored: %v", e.Pending.Record.Digest.Hex(), e.Err)
}

func (e *PendingError) Unwrap() error {
	return e.Err
}
