package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/shared"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/tyler-smith/go-bip39"
)

const (
	DefaultAccountCount = 20
	DefaultBasePath     = "m/44'/60'/0'/0"
	MaxAccountCount     = 1000
	noSelection         = -1
)

// Config configures account derivation.
type Config struct {
	Mnemonic   shared.Secret
	Passphrase shared.Secret
	Count      int
	BasePath   string
	Logger     *zerolog.Logger
}

// Account is a derived signing identity. It carries no key material.
type Account struct {
	Index   uint32         `json:"index" yaml:"index"`
	Address common.Address `json:"address" yaml:"address"`
	Path    string         `json:"path" yaml:"path"`
}

// Provider holds the derived accounts and the session's active selection.
type Provider struct {
	accounts []Account
	keys     []*btcec.PrivateKey
	logger   zerolog.Logger

	mu     sync.RWMutex
	active int
}

// New derives Count accounts from the mnemonic. The returned provider starts
// with no account selected.
func New(config Config) (*Provider, error) {
	mnemonic := strings.Join(strings.Fields(strings.ToLower(config.Mnemonic.Reveal())), " ")
	if mnemonic == "" || !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	count := config.Count
	if count == 0 {
		count = DefaultAccountCount
	}
	if count < 1 || count > MaxAccountCount {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCount, count, MaxAccountCount)
	}

	basePath := strings.TrimRight(strings.TrimSpace(config.BasePath), "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	segments, err := parsePath(basePath)
	if err != nil {
		return nil, err
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, config.Passphrase.Reveal())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	parent, err := deriveParent(seed, segments)
	if err != nil {
		return nil, fmt.Errorf("failed to derive %s: %w", basePath, err)
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	provider := &Provider{
		accounts: make([]Account, 0, count),
		keys:     make([]*btcec.PrivateKey, 0, count),
		logger:   logger,
		active:   noSelection,
	}
	for i := 0; i < count; i++ {
		key, err := childKey(parent, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s/%d: %w", basePath, i, err)
		}
		provider.keys = append(provider.keys, key)
		provider.accounts = append(provider.accounts, Account{
			Index:   uint32(i),
			Address: addressFromKey(key),
			Path:    fmt.Sprintf("%s/%d", basePath, i),
		})
	}

	logger.Debug().Int("count", count).Str("path", basePath).Msg("derived accounts")
	return provider, nil
}

// Len returns the number of derived accounts.
func (p *Provider) Len() int {
	return len(p.accounts)
}

// Accounts returns every derived account in index order.
func (p *Provider) Accounts() []Account {
	out := make([]Account, len(p.accounts))
	copy(out, p.accounts)
	return out
}

// Selectable returns the accounts offered for interactive selection. Index 0
// is the default deployer account and is left out.
func (p *Provider) Selectable() []Account {
	if len(p.accounts) <= 1 {
		return nil
	}
	out := make([]Account, len(p.accounts)-1)
	copy(out, p.accounts[1:])
	return out
}

func (p *Provider) Account(index int) (Account, error) {
	if index < 0 || index >= len(p.accounts) {
		return Account{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, index, len(p.accounts))
	}
	return p.accounts[index], nil
}

// Lookup finds the derived account with the given address.
func (p *Provider) Lookup(address common.Address) (Account, error) {
	for _, account := range p.accounts {
		if account.Address == address {
			return account, nil
		}
	}
	return Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, address.Hex())
}

// Select makes index the active account. An invalid index leaves the current
// selection untouched.
func (p *Provider) Select(index int) (Account, error) {
	account, err := p.Account(index)
	if err != nil {
		return Account{}, err
	}

	p.mu.Lock()
	p.active = index
	p.mu.Unlock()

	p.logger.Info().Int("index", index).Str("address", account.Address.Hex()).Msg("account selected")
	return account, nil
}

// Active returns the selected account, if any.
func (p *Provider) Active() (Account, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.active == noSelection {
		return Account{}, false
	}
	return p.accounts[p.active], true
}

// Deselect clears the selection. Calling it with nothing selected is a no-op.
func (p *Provider) Deselect() {
	p.mu.Lock()
	p.active = noSelection
	p.mu.Unlock()
}

// Sign signs message with the account that is active when the call starts.
// A concurrent Select does not change the signer of an in-flight call.
func (p *Provider) Sign(ctx context.Context, message []byte) (Signature, Account, error) {
	account, ok := p.Active()
	if !ok {
		return nil, Account{}, ErrNotConnected
	}
	signature, err := p.SignAs(ctx, account, message)
	if err != nil {
		return nil, Account{}, err
	}
	return signature, account, nil
}

// SignAs signs message with the key of account, which must be one of the
// provider's derived accounts.
func (p *Provider) SignAs(ctx context.Context, account Account, message []byte) (Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := p.keyFor(account)
	if err != nil {
		return nil, err
	}
	signature := signMessage(key, message)
	p.logger.Debug().Uint32("index", account.Index).Str("address", account.Address.Hex()).Msg("message signed")
	return signature, nil
}

func (p *Provider) keyFor(account Account) (*btcec.PrivateKey, error) {
	index := int(account.Index)
	if index >= len(p.accounts) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, index, len(p.accounts))
	}
	if p.accounts[index].Address != account.Address {
		return nil, fmt.Errorf("%w: index %d is %s, not %s", ErrAccountMismatch, index, p.accounts[index].Address.Hex(), account.Address.Hex())
	}
	return p.keys[index], nil
}
