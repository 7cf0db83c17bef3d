// Command docsig hashes documents, signs their digests with an HD-derived
// account, stores the signed records in a registry and verifies them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

const (
	exitOK            = 0
	exitNotVerified   = 1
	exitFailure       = 2
	exitInvalidInput  = 10
	exitRegistryError = 20
	exitInconsistent  = 30
	exitDeclined      = 40
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

func newApp(stdin io.Reader, stdout io.Writer, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "docsig",
		Usage:     "sign document digests and verify them against a registry",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   formatText,
				Usage:   "output format: text, json or yaml",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "registry backend (memory, leveldb, evm, hcs); overrides DOCSIG_REGISTRY",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level; overrides DOCSIG_LOG_LEVEL",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "approve signing and storing without prompting",
			},
		},
		Commands: []*cli.Command{
			accountsCommand(),
			hashCommand(),
			signCommand(),
			storeCommand(),
			verifyCommand(),
			historyCommand(),
			registryCommand(),
			metricsCommand(),
		},
		HideHelpCommand: true,
	}
}
