package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
)

// promptConfirmer asks on out and reads y/N answers from in.
func promptConfirmer(in io.Reader, out io.Writer) signing.Confirmer {
	reader := bufio.NewReader(in)
	return signing.ConfirmFunc(func(ctx context.Context, prompt signing.Prompt) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		switch prompt.Stage {
		case signing.StageSign:
			fmt.Fprintf(out, "Sign with account %d (%s)?\n  %s\n", prompt.Account.Index, prompt.Account.Address.Hex(), prompt.Message)
		case signing.StageStore:
			fmt.Fprintf(out, "Store signed record for %s in the registry?\n", prompt.Digest.Hex())
			if prompt.Record != nil {
				fmt.Fprintf(out, "  signer:    %s\n  timestamp: %s\n  signature: %s\n",
					prompt.Record.Signer.Hex(),
					time.Unix(int64(prompt.Record.Timestamp), 0).UTC().Format(time.RFC3339),
					prompt.Record.Signature.String(),
				)
			}
		}
		fmt.Fprint(out, "[y/N] ")

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}
