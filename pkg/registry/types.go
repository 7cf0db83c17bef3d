package registry

import (
	"context"
	"fmt"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Record is a signed document fingerprint as stored in a registry.
type Record struct {
	Digest    digest.Digest  `json:"digest" yaml:"digest"`
	Signer    common.Address `json:"signer" yaml:"signer"`
	Timestamp uint64         `json:"timestamp" yaml:"timestamp"`
	Signature hexutil.Bytes  `json:"signature" yaml:"signature"`
}

// Validate checks the fields every backend requires before an append.
func (r Record) Validate() error {
	if r.Digest.IsZero() {
		return fmt.Errorf("record digest is required")
	}
	if r.Signer == (common.Address{}) {
		return fmt.Errorf("record signer is required")
	}
	if len(r.Signature) == 0 {
		return fmt.Errorf("record signature is required")
	}
	return nil
}

// Receipt acknowledges a successful append.
type Receipt struct {
	TransactionID string `json:"transactionId" yaml:"transactionId"`
	Index         uint64 `json:"index" yaml:"index"`
	IndexKnown    bool   `json:"indexKnown" yaml:"indexKnown"`
	Backend       string `json:"backend" yaml:"backend"`
}

// Entry is one position of the registry's history.
type Entry struct {
	Index  uint64 `json:"index" yaml:"index"`
	Record Record `json:"record" yaml:"record"`
}

// Registry is the query/command contract of an append-only fingerprint
// ledger. Lookup returns ErrNotFound for absent digests and Exists is true
// exactly when Lookup returns a record.
type Registry interface {
	Count(ctx context.Context) (uint64, error)
	DigestAt(ctx context.Context, index uint64) (digest.Digest, error)
	Lookup(ctx context.Context, d digest.Digest) (Record, error)
	Exists(ctx context.Context, d digest.Digest) (bool, error)
	Append(ctx context.Context, record Record) (Receipt, error)
}

// RangeReader is implemented by backends that can return a window of
// records in one round trip.
type RangeReader interface {
	Records(ctx context.Context, offset uint64, limit uint64) ([]Record, error)
}
