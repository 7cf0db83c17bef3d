package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/verify"
	"gopkg.in/yaml.v3"
)

const (
	testMnemonic = "test test test test test test test test test test test junk"
	account1     = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	account2     = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DOCSIG_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("DOCSIG_MNEMONIC", testMnemonic)
	t.Setenv("DOCSIG_ACCOUNT_COUNT", "3")
	t.Setenv("DOCSIG_REGISTRY", "leveldb")
	t.Setenv("DOCSIG_LEVELDB_PATH", filepath.Join(dir, "registry"))
	t.Setenv("DOCSIG_LOG_LEVEL", "error")
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	err := app.RunContext(context.Background(), append([]string{"docsig"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

func TestHashCommand(t *testing.T) {
	dir := setupEnv(t)
	path := writeDocument(t, dir, "abc.txt", "abc")

	stdout, _, err := runCLI(t, "", "hash", path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected digest output %q", stdout)
	}

	stdout, _, err = runCLI(t, "", "-o", "json", "hash", path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	var result hashResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if result.Digest != digest.Sum([]byte("abc")) || result.Message != signing.Message(result.Digest) {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, _, err := runCLI(t, "", "hash"); exitCode(err) != exitInvalidInput {
		t.Fatalf("expected invalid input exit code, got %d (%v)", exitCode(err), err)
	}
}

func TestAccountsCommand(t *testing.T) {
	setupEnv(t)

	stdout, _, err := runCLI(t, "", "-o", "yaml", "accounts")
	if err != nil {
		t.Fatalf("accounts failed: %v", err)
	}
	var accounts []identity.Account
	if err := yaml.Unmarshal([]byte(stdout), &accounts); err != nil {
		t.Fatalf("invalid yaml output: %v\n%s", err, stdout)
	}
	if len(accounts) != 2 || accounts[0].Index != 1 || accounts[0].Address.Hex() != account1 {
		t.Fatalf("unexpected accounts %+v", accounts)
	}

	stdout, _, err = runCLI(t, "", "accounts", "--all")
	if err != nil {
		t.Fatalf("accounts failed: %v", err)
	}
	if !strings.Contains(stdout, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266") {
		t.Fatalf("expected default account in output:\n%s", stdout)
	}
}

func TestSignVerifyHistory(t *testing.T) {
	dir := setupEnv(t)
	path := writeDocument(t, dir, "contract.pdf", "master services agreement")

	stdout, _, err := runCLI(t, "", "--yes", "-o", "json", "sign", "--account", "1", path)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	var stored storeResult
	if err := json.Unmarshal([]byte(stdout), &stored); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if stored.Record.Signer.Hex() != account1 || stored.Receipt.Backend != "leveldb" {
		t.Fatalf("unexpected store result %+v", stored)
	}

	stdout, _, err = runCLI(t, "", "-o", "json", "verify", "--signer", strings.ToLower(account1), "--check-signature", path)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	var verdict verify.Verdict
	if err := json.Unmarshal([]byte(stdout), &verdict); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if !verdict.Valid || verdict.Reason != verify.ReasonNone {
		t.Fatalf("unexpected verdict %+v", verdict)
	}

	stdout, _, err = runCLI(t, "", "verify", "--signer", account2, path)
	if exitCode(err) != exitNotVerified || !strings.Contains(stdout, "signer_mismatch") {
		t.Fatalf("expected signer mismatch, got %q (%v)", stdout, err)
	}

	other := writeDocument(t, dir, "other.pdf", "master services agreement v2")
	stdout, _, err = runCLI(t, "", "verify", "--signer", account1, other)
	if exitCode(err) != exitNotVerified || !strings.Contains(stdout, "not_registered") {
		t.Fatalf("expected not registered, got %q (%v)", stdout, err)
	}

	stdout, _, err = runCLI(t, "", "-o", "json", "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	var entries []registry.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if len(entries) != 1 || entries[0].Record.Digest != stored.Record.Digest {
		t.Fatalf("unexpected history %+v", entries)
	}

	_, _, err = runCLI(t, "", "--yes", "sign", "--account", "2", path)
	if !errors.Is(err, registry.ErrAlreadyRegistered) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestSignPrompts(t *testing.T) {
	dir := setupEnv(t)
	path := writeDocument(t, dir, "memo.txt", "board memo")

	_, stderr, err := runCLI(t, "n\n", "sign", "--account", "1", path)
	if exitCode(err) != exitDeclined {
		t.Fatalf("expected declined exit code, got %d (%v)", exitCode(err), err)
	}
	if !strings.Contains(stderr, signing.Message(digest.Sum([]byte("board memo")))) {
		t.Fatalf("expected the signing message in the prompt:\n%s", stderr)
	}

	_, _, err = runCLI(t, "y\nn\n", "sign", "--account", "1", "--pending-file", filepath.Join(dir, "pending.json"), path)
	if exitCode(err) != exitDeclined {
		t.Fatalf("expected declined store, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "pending.json")); statErr != nil {
		t.Fatalf("expected pending record to be kept: %v", statErr)
	}

	if _, _, err := runCLI(t, "y\n", "store", "--pending-file", filepath.Join(dir, "pending.json")); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if _, _, err := runCLI(t, "", "verify", "--signer", account1, path); err != nil {
		t.Fatalf("verify after store failed: %v", err)
	}
}

func TestSignOnlyThenStore(t *testing.T) {
	dir := setupEnv(t)
	pendingFile := filepath.Join(dir, "pending.json")
	d := digest.Sum([]byte("invoice 42"))

	if _, _, err := runCLI(t, "", "--yes", "sign", "--account", "2", "--no-store", "--pending-file", pendingFile, "--digest", d.Hex()); err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, _, err := runCLI(t, "", "verify", "--signer", account2, "--digest", d.Hex()); exitCode(err) != exitNotVerified {
		t.Fatalf("record must not be stored yet, got %v", err)
	}

	stdout, _, err := runCLI(t, "", "--yes", "store", "--pending-file", pendingFile)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if !strings.Contains(stdout, "stored "+d.Hex()) {
		t.Fatalf("unexpected store output %q", stdout)
	}
	if _, err := os.Stat(pendingFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected pending file to be removed, got %v", err)
	}
	if _, _, err := runCLI(t, "", "verify", "--signer", account2, "--digest", d.Hex()); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestStoreRejectsTamperedPending(t *testing.T) {
	dir := setupEnv(t)
	pendingFile := filepath.Join(dir, "pending.json")
	d := digest.Sum([]byte("tamper"))

	if _, _, err := runCLI(t, "", "--yes", "sign", "--account", "1", "--no-store", "--pending-file", pendingFile, "--digest", d.Hex()); err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	payload, err := os.ReadFile(pendingFile)
	if err != nil {
		t.Fatalf("failed to read pending file: %v", err)
	}
	tampered := strings.ReplaceAll(string(payload), strings.ToLower(account1), strings.ToLower(account2))
	if tampered == string(payload) {
		t.Fatal("expected the signer address in the pending file")
	}
	if err := os.WriteFile(pendingFile, []byte(tampered), 0o600); err != nil {
		t.Fatalf("failed to write pending file: %v", err)
	}

	_, _, err = runCLI(t, "", "--yes", "store", "--pending-file", pendingFile)
	if !errors.Is(err, identity.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestInvalidInputExitCodes(t *testing.T) {
	dir := setupEnv(t)
	path := writeDocument(t, dir, "a.txt", "a")

	testCases := []struct {
		name string
		args []string
	}{
		{name: "bad signer", args: []string{"verify", "--signer", "0x1234", path}},
		{name: "bad digest", args: []string{"verify", "--signer", account1, "--digest", "0xabc"}},
		{name: "bad account", args: []string{"--yes", "sign", "--account", "9", path}},
		{name: "bad output", args: []string{"-o", "xml", "accounts"}},
		{name: "bad registry", args: []string{"--registry", "postgres", "history"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tc.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.name == "bad registry" {
				return
			}
			if code := exitCode(err); code != exitInvalidInput {
				t.Fatalf("expected exit code %d, got %d (%v)", exitInvalidInput, code, err)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{err: nil, want: exitOK},
		{err: notVerified(verify.ReasonSignerMismatch), want: exitNotVerified},
		{err: fmt.Errorf("sign: %w", signing.ErrDeclined), want: exitDeclined},
		{err: &verify.ConsistencyError{Err: registry.ErrNotFound}, want: exitInconsistent},
		{err: &verify.FailedError{Op: "exists", Err: errors.New("boom")}, want: exitRegistryError},
		{err: &signing.PendingError{Err: registry.NewStorageError("append", registry.KindUnreachable, errors.New("refused"))}, want: exitRegistryError},
		{err: verify.ErrInvalidSigner, want: exitInvalidInput},
		{err: errors.New("unexpected"), want: exitFailure},
	}
	for _, tc := range testCases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
