package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/hcsregistry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/verify"
	"github.com/urfave/cli/v2"
)

type hashResult struct {
	Path    string        `json:"path" yaml:"path"`
	Digest  digest.Digest `json:"digest" yaml:"digest"`
	Message string        `json:"message" yaml:"message"`
}

type storeResult struct {
	Record  registry.Record  `json:"record" yaml:"record"`
	Receipt registry.Receipt `json:"receipt" yaml:"receipt"`
}

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "list the accounts derived from the configured mnemonic",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "include the default account at index 0"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			provider, err := rt.provider()
			if err != nil {
				return err
			}
			accounts := provider.Selectable()
			if c.Bool("all") {
				accounts = provider.Accounts()
			}
			return rt.printer.print(accounts, func(w io.Writer) {
				for _, account := range accounts {
					fmt.Fprintf(w, "%3d  %s  %s\n", account.Index, account.Address.Hex(), account.Path)
				}
			})
		},
	}
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "print the SHA-256 digest of a file",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			output, err := newPrinter(c.App.Writer, c.String("output"))
			if err != nil {
				return err
			}
			path := trimmedArg(c)
			d, err := digest.HashFile(c.Context, path)
			if err != nil {
				return err
			}
			result := hashResult{Path: path, Digest: d, Message: signing.Message(d)}
			return output.print(result, func(w io.Writer) {
				fmt.Fprintln(w, d.Hex())
			})
		},
	}
}

// resolveDigest takes the digest from --digest or hashes the FILE argument.
func resolveDigest(c *cli.Context) (digest.Digest, error) {
	if raw := strings.TrimSpace(c.String("digest")); raw != "" {
		return digest.Parse(raw)
	}
	return digest.HashFile(c.Context, trimmedArg(c))
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:      "sign",
		Usage:     "sign a document digest and store it in the registry",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "account", Aliases: []string{"a"}, Usage: "index of the signing account", Required: true},
			&cli.StringFlag{Name: "digest", Usage: "sign this digest instead of hashing FILE"},
			&cli.BoolFlag{Name: "no-store", Usage: "sign only and write the record to the pending file"},
			&cli.StringFlag{Name: "pending-file", Value: defaultPendingFile, Usage: "where unstored records are kept for 'docsig store'"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			d, err := resolveDigest(c)
			if err != nil {
				return err
			}
			provider, err := rt.provider()
			if err != nil {
				return err
			}
			account, err := provider.Select(c.Int("account"))
			if err != nil {
				return err
			}
			reg, err := rt.openRegistry(c.Context, provider)
			if err != nil {
				return err
			}
			workflow, err := rt.workflow(provider, reg)
			if err != nil {
				return err
			}

			pendingFile := c.String("pending-file")
			if c.Bool("no-store") {
				pending, err := workflow.Sign(c.Context, d, account)
				if err != nil {
					return err
				}
				if err := savePending(pendingFile, pending); err != nil {
					return err
				}
				return rt.printer.print(pending, func(w io.Writer) {
					fmt.Fprintf(w, "signed %s as %s\nsignature %s\npending record written to %s\n",
						d.Hex(), account.Address.Hex(), pending.Record.Signature.String(), pendingFile)
				})
			}

			record, receipt, err := workflow.SignAndStore(c.Context, d, account)
			if errors.Is(err, registry.ErrAlreadyRegistered) {
				return err
			}
			var pendingErr *signing.PendingError
			if errors.As(err, &pendingErr) {
				if saveErr := savePending(pendingFile, pendingErr.Pending); saveErr != nil {
					return errors.Join(err, saveErr)
				}
				if hint := storageHint(err); hint != "" {
					fmt.Fprintln(c.App.ErrWriter, hint)
				}
				fmt.Fprintf(c.App.ErrWriter, "signed record kept in %s; retry with 'docsig store'\n", pendingFile)
				return err
			}
			if err != nil {
				return err
			}
			return printStored(rt, record, receipt)
		},
	}
}

func storeCommand() *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "store a previously signed record without signing again",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pending-file", Value: defaultPendingFile, Usage: "record written by 'docsig sign'"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			pendingFile := c.String("pending-file")
			pending, err := loadPending(pendingFile)
			if err != nil {
				return err
			}
			var provider *identity.Provider
			if rt.config.Registry == shared.RegistryEVM {
				if provider, err = rt.provider(); err != nil {
					return err
				}
			}
			reg, err := rt.openRegistry(c.Context, provider)
			if err != nil {
				return err
			}
			workflow, err := rt.workflow(pendingSigner{}, reg)
			if err != nil {
				return err
			}

			receipt, err := workflow.Store(c.Context, pending)
			if err != nil {
				if hint := storageHint(err); hint != "" {
					fmt.Fprintln(c.App.ErrWriter, hint)
				}
				return err
			}
			if err := os.Remove(pendingFile); err != nil {
				rt.logger.Warn().Err(err).Str("path", pendingFile).Msg("failed to remove pending record")
			}
			return printStored(rt, pending.Record, receipt)
		},
	}
}

// pendingSigner backs a workflow that only stores records signed earlier.
type pendingSigner struct{}

func (pendingSigner) Active() (identity.Account, bool) {
	return identity.Account{}, false
}

func (pendingSigner) SignAs(context.Context, identity.Account, []byte) (identity.Signature, error) {
	return nil, identity.ErrNotConnected
}

func printStored(rt *runtime, record registry.Record, receipt registry.Receipt) error {
	return rt.printer.print(storeResult{Record: record, Receipt: receipt}, func(w io.Writer) {
		fmt.Fprintf(w, "stored %s\nsigner    %s\nbackend   %s\ntx        %s\n",
			record.Digest.Hex(), record.Signer.Hex(), receipt.Backend, receipt.TransactionID)
		if receipt.IndexKnown {
			fmt.Fprintf(w, "index     %d\n", receipt.Index)
		}
	})
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "check that a document was signed by an account",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "signer", Aliases: []string{"s"}, Usage: "claimed signer address", Required: true},
			&cli.StringFlag{Name: "digest", Usage: "verify this digest instead of hashing FILE"},
			&cli.BoolFlag{Name: "check-signature", Usage: "also recover the signer from the stored signature"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := verify.ParseSigner(c.String("signer")); err != nil {
				return err
			}
			reg, err := rt.openRegistry(c.Context, nil)
			if err != nil {
				return err
			}
			options := []verify.Option{verify.WithObserver(rt.metrics), verify.WithLogger(rt.logger)}
			if c.Bool("check-signature") {
				options = append(options, verify.WithSignatureCheck())
			}
			engine, err := verify.New(reg, options...)
			if err != nil {
				return err
			}

			var verdict verify.Verdict
			if raw := strings.TrimSpace(c.String("digest")); raw != "" {
				d, err := digest.Parse(raw)
				if err != nil {
					return err
				}
				verdict, err = engine.VerifyDigest(c.Context, d, c.String("signer"))
				if err != nil {
					return err
				}
			} else {
				verdict, err = engine.VerifyFile(c.Context, trimmedArg(c), c.String("signer"))
				if err != nil {
					return err
				}
			}

			if err := rt.printer.print(verdict, func(w io.Writer) { printVerdict(w, verdict) }); err != nil {
				return err
			}
			if !verdict.Valid {
				return notVerified(verdict.Reason)
			}
			return nil
		},
	}
}

func printVerdict(w io.Writer, verdict verify.Verdict) {
	if verdict.Valid {
		fmt.Fprintf(w, "VALID  %s\n", verdict.Digest.Hex())
	} else {
		fmt.Fprintf(w, "INVALID  %s (%s)\n", verdict.Digest.Hex(), verdict.Reason)
	}
	if verdict.Record != nil {
		fmt.Fprintf(w, "signer     %s\nsigned at  %s\n",
			verdict.Record.Signer.Hex(),
			time.Unix(int64(verdict.Record.Timestamp), 0).UTC().Format(time.RFC3339))
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list stored records in registry order",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "offset", Usage: "first index to list"},
			&cli.Uint64Flag{Name: "limit", Usage: "maximum records to list, 0 for all"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			reg, err := rt.openRegistry(c.Context, nil)
			if err != nil {
				return err
			}
			entries, err := registry.List(c.Context, reg, registry.ListOptions{
				Offset:  c.Uint64("offset"),
				Limit:   c.Uint64("limit"),
				Limiter: rt.limiter(),
			})
			if err != nil {
				if hint := storageHint(err); hint != "" {
					fmt.Fprintln(c.App.ErrWriter, hint)
				}
				return err
			}
			return rt.printer.print(entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "no documents stored")
					return
				}
				for _, entry := range entries {
					fmt.Fprintf(w, "%5d  %s  %s  %s\n",
						entry.Index,
						entry.Record.Digest.Hex(),
						entry.Record.Signer.Hex(),
						time.Unix(int64(entry.Record.Timestamp), 0).UTC().Format(time.RFC3339))
				}
			})
		},
	}
}

func registryCommand() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "manage registry backends",
		Subcommands: []*cli.Command{
			{
				Name:  "create-topic",
				Usage: "create a Hedera consensus topic for the hcs registry",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "ttl", Value: hcsregistry.DefaultTTL, Usage: "cache TTL advertised in the topic memo, in seconds"},
					&cli.BoolFlag{Name: "admin", Value: true, Usage: "use the operator key as admin key"},
					&cli.BoolFlag{Name: "restrict-submit", Usage: "use the operator key as submit key"},
				},
				Action: func(c *cli.Context) error {
					rt, err := loadRuntime(c)
					if err != nil {
						return err
					}
					client, err := rt.openHCS()
					if err != nil {
						return err
					}
					result, err := client.CreateRegistry(c.Context, hcsregistry.CreateRegistryOptions{
						TTL:                 c.Int64("ttl"),
						UseOperatorAsAdmin:  c.Bool("admin"),
						UseOperatorAsSubmit: c.Bool("restrict-submit"),
					})
					if err != nil {
						return err
					}
					return rt.printer.print(result, func(w io.Writer) {
						fmt.Fprintf(w, "created registry topic %s (%s)\nset %sHCS_TOPIC_ID=%s\n",
							result.TopicID, result.TransactionID, shared.EnvPrefix, result.TopicID)
					})
				},
			},
		},
	}
}

func metricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "serve prometheus metrics and a registry health check",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "listen address; defaults to DOCSIG_METRICS_ADDR"},
		},
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			reg, err := rt.openRegistry(c.Context, nil)
			if err != nil {
				return err
			}
			listen := rt.config.MetricsAddr
			if c.IsSet("listen") {
				listen = c.String("listen")
			}

			server := &http.Server{
				Addr:              listen,
				Handler:           metricsMux(rt, reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errs := make(chan error, 1)
			go func() {
				errs <- server.ListenAndServe()
			}()
			rt.logger.Info().Str("addr", listen).Str("registry", rt.config.Registry).Msg("serving metrics")

			select {
			case err := <-errs:
				return err
			case <-c.Context.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func metricsMux(rt *runtime, reg registry.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		count, err := reg.Count(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, "ok %d\n", count)
	})
	return mux
}
