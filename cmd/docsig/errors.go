package main

import (
	"errors"
	"fmt"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/verify"
)

var errUsage = errors.New("invalid usage")

// exitError carries an explicit process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func notVerified(reason verify.Reason) error {
	return &exitError{code: exitNotVerified, err: fmt.Errorf("document not verified: %s", reason)}
}

func exitCode(err error) int {
	var explicit *exitError
	var consistencyErr *verify.ConsistencyError
	var failedErr *verify.FailedError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &explicit):
		return explicit.code
	case errors.Is(err, signing.ErrDeclined):
		return exitDeclined
	case errors.As(err, &consistencyErr):
		return exitInconsistent
	case errors.As(err, &failedErr), registry.IsConnectivity(err):
		return exitRegistryError
	case errors.Is(err, errUsage),
		errors.Is(err, digest.ErrEmptyPath),
		errors.Is(err, digest.ErrInvalidDigest),
		errors.Is(err, identity.ErrInvalidMnemonic),
		errors.Is(err, identity.ErrInvalidIndex),
		errors.Is(err, identity.ErrInvalidCount),
		errors.Is(err, identity.ErrInvalidPath),
		errors.Is(err, verify.ErrInvalidSigner),
		errors.Is(err, verify.ErrMissingFile):
		return exitInvalidInput
	default:
		return exitFailure
	}
}

// storageHint returns the actionable hint of a registry failure, if any.
func storageHint(err error) string {
	var storageErr *registry.StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Hint()
	}
	return ""
}
