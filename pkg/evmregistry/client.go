package evmregistry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/registry"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

var ErrNoSigner = errors.New("no transaction signer configured")

// Client talks to one deployed DocumentRegistry contract.
type Client struct {
	address        common.Address
	backend        Backend
	contract       *bind.BoundContract
	signer         SignerFunc
	waitForReceipt bool
	receiptTimeout time.Duration
	gasLimit       uint64
	logger         zerolog.Logger
	closer         func()

	chainMu sync.Mutex
	chainID *big.Int
}

// NewClient creates a new Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if config.Address == (common.Address{}) {
		return nil, fmt.Errorf("contract address is required")
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	receiptTimeout := config.ReceiptTimeout
	if receiptTimeout <= 0 {
		receiptTimeout = DefaultReceiptTimeout
	}

	client := &Client{
		address:        config.Address,
		backend:        config.Backend,
		contract:       bind.NewBoundContract(config.Address, registryABI, config.Backend, config.Backend, nil),
		signer:         config.Signer,
		waitForReceipt: config.WaitForReceipt,
		receiptTimeout: receiptTimeout,
		gasLimit:       config.GasLimit,
		logger:         logger,
	}
	if config.ChainID != nil {
		client.chainID = new(big.Int).Set(config.ChainID)
	}
	return client, nil
}

// Dial connects to rpcURL and returns a client using it as the backend.
func Dial(ctx context.Context, rpcURL string, config ClientConfig) (*Client, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, fmt.Errorf("rpc URL is required")
	}
	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, registry.NewStorageError("dial", registry.KindUnreachable, err)
	}
	config.Backend = ethClient
	client, err := NewClient(config)
	if err != nil {
		ethClient.Close()
		return nil, err
	}
	client.closer = ethClient.Close
	return client, nil
}

// Close releases the RPC connection opened by Dial.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) Count(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, methodCount)
	if err != nil {
		return 0, registry.Classify("count", err)
	}
	count, ok := out[0].(*big.Int)
	if !ok || !count.IsUint64() {
		return 0, registry.NewStorageError("count", registry.KindDecode, fmt.Errorf("unexpected count %v", out[0]))
	}
	return count.Uint64(), nil
}

func (c *Client) DigestAt(ctx context.Context, index uint64) (digest.Digest, error) {
	out, err := c.call(ctx, methodHashAt, new(big.Int).SetUint64(index))
	if isRevert(err) {
		return digest.Digest{}, fmt.Errorf("%w: %d", registry.ErrIndexOutOfRange, index)
	}
	if err != nil {
		return digest.Digest{}, registry.Classify("digest_at", err)
	}
	hash, ok := out[0].([32]byte)
	if !ok {
		return digest.Digest{}, registry.NewStorageError("digest_at", registry.KindDecode, fmt.Errorf("unexpected hash %T", out[0]))
	}
	return digest.Digest(hash), nil
}

func (c *Client) Lookup(ctx context.Context, d digest.Digest) (registry.Record, error) {
	out, err := c.call(ctx, methodInfo, [32]byte(d))
	if isRevert(err) {
		return registry.Record{}, fmt.Errorf("%w: %s", registry.ErrNotFound, d.Hex())
	}
	if err != nil {
		return registry.Record{}, registry.Classify("lookup", err)
	}

	signer, signerOK := out[0].(common.Address)
	timestamp, timestampOK := out[1].(*big.Int)
	signature, signatureOK := out[2].([]byte)
	if !signerOK || !timestampOK || !signatureOK || !timestamp.IsUint64() {
		return registry.Record{}, registry.NewStorageError("lookup", registry.KindDecode, fmt.Errorf("unexpected document info %v", out))
	}
	if signer == (common.Address{}) {
		return registry.Record{}, fmt.Errorf("%w: %s", registry.ErrNotFound, d.Hex())
	}

	return registry.Record{
		Digest:    d,
		Signer:    signer,
		Timestamp: timestamp.Uint64(),
		Signature: signature,
	}, nil
}

func (c *Client) Exists(ctx context.Context, d digest.Digest) (bool, error) {
	out, err := c.call(ctx, methodIsStored, [32]byte(d))
	if err != nil {
		return false, registry.Classify("exists", err)
	}
	stored, ok := out[0].(bool)
	if !ok {
		return false, registry.NewStorageError("exists", registry.KindDecode, fmt.Errorf("unexpected result %T", out[0]))
	}
	return stored, nil
}

// Append sends storeDocumentHash from the record's signer account.
func (c *Client) Append(ctx context.Context, record registry.Record) (registry.Receipt, error) {
	if err := record.Validate(); err != nil {
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindRejected, err)
	}
	if c.signer == nil {
		return registry.Receipt{}, ErrNoSigner
	}

	exists, err := c.Exists(ctx, record.Digest)
	if err != nil {
		return registry.Receipt{}, err
	}
	if exists {
		return registry.Receipt{}, fmt.Errorf("%w: %s", registry.ErrAlreadyRegistered, record.Digest.Hex())
	}

	txSigner, err := c.signer(record.Signer)
	if err != nil {
		return registry.Receipt{}, fmt.Errorf("no signer for %s: %w", record.Signer.Hex(), err)
	}

	chainID, err := c.resolveChainID(ctx)
	if err != nil {
		return registry.Receipt{}, err
	}

	var signErr error
	opts := &bind.TransactOpts{
		From:     txSigner.Address(),
		GasLimit: c.gasLimit,
		Context:  ctx,
		Signer: func(from common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if from != txSigner.Address() {
				signErr = fmt.Errorf("signer %s cannot sign for %s", txSigner.Address().Hex(), from.Hex())
				return nil, signErr
			}
			signed, err := txSigner.SignTx(tx, chainID)
			if err != nil {
				signErr = fmt.Errorf("failed to sign transaction: %w", err)
				return nil, signErr
			}
			return signed, nil
		},
	}
	signed, err := c.contract.Transact(opts, methodStore,
		[32]byte(record.Digest),
		new(big.Int).SetUint64(record.Timestamp),
		[]byte(record.Signature),
		record.Signer,
	)
	switch {
	case signErr != nil:
		return registry.Receipt{}, signErr
	case errors.Is(err, bind.ErrNoCode):
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindRejected, err)
	case err != nil:
		return registry.Receipt{}, registry.Classify("append", err)
	}

	c.logger.Info().
		Str("tx_hash", signed.Hash().Hex()).
		Str("digest", record.Digest.Hex()).
		Str("signer", record.Signer.Hex()).
		Msg("storeDocumentHash sent")

	receipt := registry.Receipt{TransactionID: signed.Hash().Hex(), Backend: BackendEVM}
	if !c.waitForReceipt {
		return receipt, nil
	}

	mined, err := c.awaitReceipt(ctx, signed.Hash())
	if err != nil {
		return registry.Receipt{}, err
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return registry.Receipt{}, registry.NewStorageError("append", registry.KindRejected, fmt.Errorf("transaction %s reverted", signed.Hash().Hex()))
	}
	for _, event := range StoredEvents(mined.Logs) {
		c.logger.Debug().Str("hash", event.Hash.Hex()).Str("signer", event.Signer.Hex()).Str("tx_hash", event.TxHash.Hex()).Msg("DocumentStored")
	}
	return receipt, nil
}

func (c *Client) resolveChainID(ctx context.Context) (*big.Int, error) {
	c.chainMu.Lock()
	defer c.chainMu.Unlock()
	if c.chainID != nil {
		return c.chainID, nil
	}
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, registry.Classify("chain_id", err)
	}
	c.chainID = chainID
	return chainID, nil
}

func (c *Client) awaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, c.backend, hash)
	if err != nil {
		return nil, registry.NewStorageError("receipt", registry.KindUnreachable, fmt.Errorf("waiting for %s: %w", hash.Hex(), err))
	}
	return receipt, nil
}

func (c *Client) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := registryABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	to := c.address
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, err
	}
	values, err := registryABI.Unpack(method, output)
	if err != nil {
		return nil, registry.NewStorageError(method, registry.KindDecode, fmt.Errorf("could not decode result data: %w", err))
	}
	return values, nil
}

func isRevert(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
