package main

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/evmregistry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/hcsregistry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/identity"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/levelregistry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/signing"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/telemetry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

// runtime holds what one command invocation needs. close releases any
// registry handles it opened.
type runtime struct {
	config  shared.Config
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	printer printer
	cli     *cli.Context
	closers []func()
}

func loadRuntime(c *cli.Context) (*runtime, error) {
	config, err := shared.LoadConfig()
	if err != nil {
		return nil, err
	}
	if c.IsSet("registry") {
		config.Registry = c.String("registry")
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	if c.IsSet("log-level") {
		config.LogLevel = c.String("log-level")
	}

	logger, err := telemetry.NewLogger(c.App.ErrWriter, config.LogLevel, config.LogFormat)
	if err != nil {
		return nil, err
	}
	output, err := newPrinter(c.App.Writer, c.String("output"))
	if err != nil {
		return nil, err
	}

	return &runtime{
		config:  config,
		logger:  logger,
		metrics: telemetry.NewMetrics(),
		printer: output,
		cli:     c,
	}, nil
}

func (r *runtime) close() {
	for index := len(r.closers) - 1; index >= 0; index-- {
		r.closers[index]()
	}
	r.closers = nil
}

func (r *runtime) provider() (*identity.Provider, error) {
	if r.config.Mnemonic.IsEmpty() {
		return nil, fmt.Errorf("%w: %sMNEMONIC is not set", identity.ErrInvalidMnemonic, shared.EnvPrefix)
	}
	return identity.New(identity.Config{
		Mnemonic:   r.config.Mnemonic,
		Passphrase: r.config.Passphrase,
		Count:      r.config.AccountCount,
		BasePath:   r.config.DerivationPath,
		Logger:     &r.logger,
	})
}

func (r *runtime) limiter() *rate.Limiter {
	if r.config.HistoryRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(r.config.HistoryRate), 1)
}

// openRegistry opens the configured backend. provider may be nil for
// read-only commands; the evm backend then cannot append.
func (r *runtime) openRegistry(ctx context.Context, provider *identity.Provider) (registry.Registry, error) {
	var reg registry.Registry
	switch r.config.Registry {
	case shared.RegistryMemory:
		r.logger.Warn().Msg("memory registry selected; records are discarded when the command exits")
		reg = registry.NewMemory()
	case shared.RegistryLevelDB:
		store, err := levelregistry.Open(r.config.LevelDBPath, levelregistry.Options{Logger: &r.logger})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, func() {
			if err := store.Close(); err != nil {
				r.logger.Warn().Err(err).Msg("failed to close leveldb registry")
			}
		})
		reg = store
	case shared.RegistryEVM:
		client, err := r.openEVM(ctx, provider)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, client.Close)
		reg = client
	case shared.RegistryHCS:
		client, err := r.openHCS()
		if err != nil {
			return nil, err
		}
		reg = client
	default:
		return nil, fmt.Errorf("unsupported registry backend %q", r.config.Registry)
	}
	return registry.Instrument(reg, r.metrics, &r.logger), nil
}

func (r *runtime) openEVM(ctx context.Context, provider *identity.Provider) (*evmregistry.Client, error) {
	if !common.IsHexAddress(r.config.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", r.config.ContractAddress)
	}
	config := evmregistry.ClientConfig{
		Address:        common.HexToAddress(r.config.ContractAddress),
		WaitForReceipt: r.config.WaitForReceipt,
		Logger:         &r.logger,
	}
	if r.config.ChainID > 0 {
		config.ChainID = big.NewInt(r.config.ChainID)
	}
	if provider != nil {
		config.Signer = txSigners(provider)
	}
	return evmregistry.Dial(ctx, r.config.RPCURL, config)
}

func txSigners(provider *identity.Provider) evmregistry.SignerFunc {
	return func(address common.Address) (evmregistry.TxSigner, error) {
		signer, err := provider.TxSignerFor(address)
		if err != nil {
			return nil, err
		}
		return signer, nil
	}
}

func (r *runtime) openHCS() (*hcsregistry.Client, error) {
	operator, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return hcsregistry.NewClient(hcsregistry.ClientConfig{
		OperatorAccountID:  operator.AccountID,
		OperatorPrivateKey: operator.PrivateKey,
		Network:            operator.Network,
		TopicID:            r.config.TopicID,
		MirrorBaseURL:      r.config.MirrorBaseURL,
		MirrorAPIKey:       r.config.MirrorAPIKey,
		Limiter:            r.limiter(),
		Logger:             &r.logger,
	})
}

func (r *runtime) workflow(provider signing.Signer, reg registry.Registry) (*signing.Workflow, error) {
	options := []signing.Option{
		signing.WithObserver(r.metrics),
		signing.WithLogger(r.logger),
	}
	if !r.cli.Bool("yes") {
		options = append(options, signing.WithConfirmer(promptConfirmer(r.cli.App.Reader, r.cli.App.ErrWriter)))
	}
	return signing.New(provider, reg, options...)
}

func trimmedArg(c *cli.Context) string {
	return strings.TrimSpace(c.Args().First())
}
