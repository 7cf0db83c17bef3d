package langchaingo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/verify"
)

func newTool(t *testing.T, document []byte) (*DocumentVerifierTool, identity.Account) {
	t.Helper()
	provider, err := identity.New(identity.Config{
		Mnemonic: shared.Secret("test test test test test test test test test test test junk"),
		Count:    2,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	account, _ := provider.Select(1)
	reg := registry.NewMemory()
	workflow, _ := signing.New(provider, reg)
	if _, _, err := workflow.SignAndStore(context.Background(), digest.Sum(document), account); err != nil {
		t.Fatalf("failed to store document: %v", err)
	}
	engine, _ := verify.New(reg)
	return NewDocumentVerifierTool(engine), account
}

func TestDocumentVerifierTool(t *testing.T) {
	document := []byte("engagement letter")
	tool, account := newTool(t, document)
	path := filepath.Join(t.TempDir(), "letter.txt")
	if err := os.WriteFile(path, document, 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	if tool.Name() == "" || !strings.Contains(tool.Description(), "signer") {
		t.Fatal("expected tool name and description")
	}

	input := fmt.Sprintf(`{"path": %q, "signer": %q}`, path, account.Address.Hex())
	output, err := tool.Call(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var verdict verify.Verdict
	if err := json.Unmarshal([]byte(output), &verdict); err != nil {
		t.Fatalf("expected JSON verdict, got %q", output)
	}
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got %+v", verdict)
	}

	input = fmt.Sprintf(`{"digest": %q, "signer": "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"}`, digest.Sum(document).Hex())
	output, _ = tool.Call(context.Background(), input)
	if !strings.Contains(output, string(verify.ReasonSignerMismatch)) {
		t.Fatalf("expected signer mismatch, got %q", output)
	}
}

func TestDocumentVerifierToolReportsInputErrors(t *testing.T) {
	tool, _ := newTool(t, []byte("x"))
	for _, input := range []string{"not json", `{"digest": "0x12", "signer": "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"}`, `{"path": "", "signer": "nope"}`} {
		output, err := tool.Call(context.Background(), input)
		if err != nil {
			t.Fatalf("input problems must not be returned as errors: %v", err)
		}
		if !strings.HasPrefix(output, "Failed to verify document") {
			t.Fatalf("unexpected output %q", output)
		}
	}
}
