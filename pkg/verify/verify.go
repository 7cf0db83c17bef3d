package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

type Reason string

const (
	ReasonNone             Reason = "none"
	ReasonNotRegistered    Reason = "not_registered"
	ReasonSignerMismatch   Reason = "signer_mismatch"
	ReasonInconsistent     Reason = "inconsistent"
	ReasonSignatureInvalid Reason = "signature_invalid"
)

// Verdict is the outcome of a verification. Record is set whenever the
// registry returned one.
type Verdict struct {
	Valid  bool             `json:"valid" yaml:"valid"`
	Record *registry.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Reason Reason           `json:"reason" yaml:"reason"`
	Digest digest.Digest    `json:"digest" yaml:"digest"`
}

// Observer receives one call per completed verification.
type Observer interface {
	ObserveVerification(reason string)
}

type Engine struct {
	registry       registry.Registry
	checkSignature bool
	observer       Observer
	logger         zerolog.Logger
}

type Option func(*Engine)

// WithSignatureCheck also recovers the signer from the stored signature.
func WithSignatureCheck() Option {
	return func(e *Engine) { e.checkSignature = true }
}

func WithObserver(observer Observer) Option {
	return func(e *Engine) { e.observer = observer }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates a new Engine.
func New(reg registry.Registry, options ...Option) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	engine := &Engine{registry: reg, logger: zerolog.Nop()}
	for _, option := range options {
		option(engine)
	}
	return engine, nil
}

// ParseSigner validates a claimed signer address. Comparison is on the
// 20-byte value so hex case does not matter.
func ParseSigner(raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidSigner, raw)
	}
	address := common.HexToAddress(trimmed)
	if address == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: zero address", ErrInvalidSigner)
	}
	return address, nil
}

// Verify hashes input and checks it against the registry.
func (e *Engine) Verify(ctx context.Context, input io.Reader, claimedSigner string) (Verdict, error) {
	signer, err := ParseSigner(claimedSigner)
	if err != nil {
		return Verdict{}, err
	}
	if input == nil {
		return Verdict{}, ErrMissingFile
	}
	d, err := digest.Hash(ctx, input)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to hash document: %w", err)
	}
	return e.verify(ctx, d, signer)
}

func (e *Engine) VerifyFile(ctx context.Context, path string, claimedSigner string) (Verdict, error) {
	signer, err := ParseSigner(claimedSigner)
	if err != nil {
		return Verdict{}, err
	}
	if strings.TrimSpace(path) == "" {
		return Verdict{}, ErrMissingFile
	}
	d, err := digest.HashFile(ctx, path)
	if errors.Is(err, digest.ErrEmptyPath) || errors.Is(err, os.ErrNotExist) {
		return Verdict{}, fmt.Errorf("%w: %w", ErrMissingFile, err)
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to hash document: %w", err)
	}
	return e.verify(ctx, d, signer)
}

// VerifyDigest checks an already computed digest.
func (e *Engine) VerifyDigest(ctx context.Context, d digest.Digest, claimedSigner string) (Verdict, error) {
	signer, err := ParseSigner(claimedSigner)
	if err != nil {
		return Verdict{}, err
	}
	return e.verify(ctx, d, signer)
}

func (e *Engine) verify(ctx context.Context, d digest.Digest, signer common.Address) (Verdict, error) {
	verdict, err := e.decide(ctx, d, signer)
	if err == nil || verdict.Reason == ReasonInconsistent {
		e.observe(verdict.Reason)
	}
	event := e.logger.Info()
	if err != nil {
		event = e.logger.Warn().Err(err)
	}
	event.Str("digest", d.Hex()).
		Str("signer", signer.Hex()).
		Bool("valid", verdict.Valid).
		Str("reason", string(verdict.Reason)).
		Msg("document verified")
	return verdict, err
}

func (e *Engine) decide(ctx context.Context, d digest.Digest, signer common.Address) (Verdict, error) {
	exists, err := e.registry.Exists(ctx, d)
	if err != nil {
		return Verdict{Digest: d}, failed("exists", err)
	}
	if !exists {
		return Verdict{Digest: d, Reason: ReasonNotRegistered}, nil
	}

	record, err := e.registry.Lookup(ctx, d)
	if errors.Is(err, registry.ErrNotFound) {
		return Verdict{Digest: d, Reason: ReasonInconsistent}, &ConsistencyError{Digest: d, Err: err}
	}
	if err != nil {
		return Verdict{Digest: d}, failed("lookup", err)
	}

	verdict := Verdict{Digest: d, Record: &record}
	if record.Signer != signer {
		verdict.Reason = ReasonSignerMismatch
		return verdict, nil
	}
	if e.checkSignature {
		recovered, err := identity.RecoverAddress([]byte(signing.Message(d)), record.Signature)
		if err != nil || recovered != record.Signer {
			verdict.Reason = ReasonSignatureInvalid
			return verdict, nil
		}
	}
	verdict.Valid = true
	verdict.Reason = ReasonNone
	return verdict, nil
}

func (e *Engine) observe(reason Reason) {
	if e.observer != nil {
		e.observer.ObserveVerification(string(reason))
	}
}

func failed(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &FailedError{Op: op, Err: registry.Classify(op, err)}
}
