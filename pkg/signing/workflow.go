package signing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/rs/zerolog"
)

type Stage string

const (
	StageSign  Stage = "sign"
	StageStore Stage = "store"
)

// Signer is the part of identity.Provider the workflow uses.
type Signer interface {
	Active() (identity.Account, bool)
	SignAs(ctx context.Context, account identity.Account, message []byte) (identity.Signature, error)
}

// Prompt describes what the user is asked to approve.
type Prompt struct {
	Stage   Stage
	Digest  digest.Digest
	Account identity.Account
	Message string
	Record  *registry.Record
}

type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// Observer receives workflow counters.
type Observer interface {
	ObserveSignature()
	ObserveAppend(result string)
}

// Pending is a signed record that has not been stored yet.
type Pending struct {
	Record  registry.Record  `json:"record" yaml:"record"`
	Account identity.Account `json:"account" yaml:"account"`
	Message string           `json:"message" yaml:"message"`
}

type Workflow struct {
	signer    Signer
	registry  registry.Registry
	confirmer Confirmer
	observer  Observer
	clock     func() time.Time
	logger    zerolog.Logger
}

type Option func(*Workflow)

// WithConfirmer gates signing and storing behind confirmer.
func WithConfirmer(confirmer Confirmer) Option {
	return func(w *Workflow) { w.confirmer = confirmer }
}

func WithClock(clock func() time.Time) Option {
	return func(w *Workflow) { w.clock = clock }
}

func WithObserver(observer Observer) Option {
	return func(w *Workflow) { w.observer = observer }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

// New creates a new Workflow.
func New(signer Signer, reg registry.Registry, options ...Option) (*Workflow, error) {
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	workflow := &Workflow{
		signer:   signer,
		registry: reg,
		clock:    time.Now,
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(workflow)
	}
	return workflow, nil
}

// SignAndStore signs d with account and appends the record. account must be
// the active account. On append failure the returned error is a
// *PendingError and the signed record is returned alongside it.
func (w *Workflow) SignAndStore(ctx context.Context, d digest.Digest, account identity.Account) (registry.Record, registry.Receipt, error) {
	pending, err := w.Sign(ctx, d, account)
	if err != nil {
		return registry.Record{}, registry.Receipt{}, err
	}
	receipt, err := w.Store(ctx, pending)
	if err != nil {
		return pending.Record, registry.Receipt{}, err
	}
	return pending.Record, receipt, nil
}

// Sign produces a signed record without storing it.
func (w *Workflow) Sign(ctx context.Context, d digest.Digest, account identity.Account) (Pending, error) {
	active, ok := w.signer.Active()
	if !ok {
		return Pending{}, identity.ErrNotConnected
	}
	if active != account {
		return Pending{}, fmt.Errorf("%w: account %s is not the active account", identity.ErrNotConnected, account.Address.Hex())
	}

	message := Message(d)
	if err := w.confirm(ctx, Prompt{Stage: StageSign, Digest: d, Account: account, Message: message}); err != nil {
		return Pending{}, err
	}

	signature, err := w.signer.SignAs(ctx, account, []byte(message))
	if err != nil {
		return Pending{}, fmt.Errorf("failed to sign document: %w", err)
	}
	if w.observer != nil {
		w.observer.ObserveSignature()
	}

	record := registry.Record{
		Digest:    d,
		Signer:    account.Address,
		Timestamp: uint64(w.clock().Unix()),
		Signature: []byte(signature),
	}
	w.logger.Info().Str("digest", d.Hex()).Str("signer", account.Address.Hex()).Msg("document signed")
	return Pending{Record: record, Account: account, Message: message}, nil
}

// Store appends a previously signed record. It makes exactly one append
// attempt and never signs.
func (w *Workflow) Store(ctx context.Context, pending Pending) (registry.Receipt, error) {
	record := pending.Record
	if err := w.confirm(ctx, Prompt{Stage: StageStore, Digest: record.Digest, Account: pending.Account, Message: pending.Message, Record: &record}); err != nil {
		return registry.Receipt{}, &PendingError{Pending: pending, Err: err}
	}

	receipt, err := w.registry.Append(ctx, record)
	w.observeAppend(err)
	if err != nil {
		w.logger.Warn().Err(err).Str("digest", record.Digest.Hex()).Msg("document not stored")
		return registry.Receipt{}, &PendingError{Pending: pending, Err: err}
	}

	w.logger.Info().
		Str("digest", record.Digest.Hex()).
		Str("transaction_id", receipt.TransactionID).
		Str("backend", receipt.Backend).
		Msg("document stored")
	return receipt, nil
}

func (w *Workflow) confirm(ctx context.Context, prompt Prompt) error {
	if w.confirmer == nil {
		return nil
	}
	approved, err := w.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("%s: %w", prompt.Stage, ErrDeclined)
	}
	return nil
}

func (w *Workflow) observeAppend(err error) {
	if w.observer == nil {
		return
	}
	w.observer.ObserveAppend(appendResult(err))
}

func appendResult(err error) string {
	var storageErr *registry.StorageError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, registry.ErrAlreadyRegistered):
		return "duplicate"
	case errors.As(err, &storageErr):
		return string(storageErr.Kind)
	default:
		return "error"
	}
}
