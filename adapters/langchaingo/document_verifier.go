package langchaingo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/verify"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/tools"
)

// DocumentVerifierTool is a langchaingo compatible Tool that checks whether a
// document was signed by a claimed account.
type DocumentVerifierTool struct {
	engine    *verify.Engine
	Callbacks callbacks.Handler
}

var _ tools.Tool = &DocumentVerifierTool{}

// VerifyRequest is the JSON input the tool expects. Either Path or Digest
// must be set.
type VerifyRequest struct {
	Path   string `json:"path,omitempty"`
	Digest string `json:"digest,omitempty"`
	Signer string `json:"signer"`
}

// NewDocumentVerifierTool creates a new langchaingo tool backed by engine.
func NewDocumentVerifierTool(engine *verify.Engine) *DocumentVerifierTool {
	return &DocumentVerifierTool{engine: engine}
}

func (t *DocumentVerifierTool) Name() string {
	return "Document_Signature_Verifier"
}

func (t *DocumentVerifierTool) Description() string {
	return `Checks whether a document was signed by an Ethereum-style address according to the document registry.
Input is JSON: {"path": "<file path>", "signer": "0x..."} or {"digest": "0x<sha256 hex>", "signer": "0x..."}.
The answer is a JSON verdict with "valid" and "reason" (none, not_registered, signer_mismatch, inconsistent, signature_invalid).`
}

// Call executes the tool. Input problems and registry failures are reported
// to the agent as text rather than returned as errors.
func (t *DocumentVerifierTool) Call(ctx context.Context, input string) (string, error) {
	if t.Callbacks != nil {
		t.Callbacks.HandleToolStart(ctx, input)
	}

	verdict, err := t.verify(ctx, input)
	if err != nil {
		if t.Callbacks != nil {
			t.Callbacks.HandleToolError(ctx, err)
		}
		return fmt.Sprintf("Failed to verify document: %v", err), nil
	}

	jsonData, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode verdict to JSON: %w", err)
	}
	output := string(jsonData)

	if t.Callbacks != nil {
		t.Callbacks.HandleToolEnd(ctx, output)
	}
	return output, nil
}

func (t *DocumentVerifierTool) verify(ctx context.Context, input string) (verify.Verdict, error) {
	if t.engine == nil {
		return verify.Verdict{}, fmt.Errorf("no verification engine configured")
	}
	var request VerifyRequest
	if err := json.Unmarshal([]byte(strings.TrimSpace(input)), &request); err != nil {
		return verify.Verdict{}, fmt.Errorf("input must be a JSON object: %w", err)
	}

	if raw := strings.TrimSpace(request.Digest); raw != "" {
		d, err := digest.Parse(raw)
		if err != nil {
			return verify.Verdict{}, err
		}
		return t.engine.VerifyDigest(ctx, d, request.Signer)
	}
	return t.engine.VerifyFile(ctx, request.Path, request.Signer)
}
