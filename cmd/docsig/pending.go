package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
)

const defaultPendingFile = ".docsig/pending.json"

func savePending(path string, pending signing.Pending) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create pending directory: %w", err)
	}
	payload, err := json.MarshalIndent(pending, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pending record: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write pending record: %w", err)
	}
	return nil
}

// loadPending reads a pending record and checks that its signature still
// recovers to its signer.
func loadPending(path string) (signing.Pending, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return signing.Pending{}, fmt.Errorf("failed to read pending record: %w", err)
	}
	var pending signing.Pending
	if err := json.Unmarshal(payload, &pending); err != nil {
		return signing.Pending{}, fmt.Errorf("failed to decode pending record: %w", err)
	}

	record := pending.Record
	if err := record.Validate(); err != nil {
		return signing.Pending{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if pending.Message != signing.Message(record.Digest) {
		return signing.Pending{}, fmt.Errorf("%w: pending message does not match its digest", errUsage)
	}
	if !identity.VerifySignature([]byte(pending.Message), record.Signature, record.Signer) {
		return signing.Pending{}, fmt.Errorf("%w: %s", identity.ErrInvalidSignature, path)
	}
	return pending, nil
}
