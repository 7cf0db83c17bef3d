package evmregistry

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
)

const (
	BackendEVM            = "evm"
	DefaultReceiptTimeout = 2 * time.Minute
)

// Backend is the JSON-RPC subset the client needs. *ethclient.Client
// implements it.
type Backend interface {
	bind.ContractCaller
	bind.ContractTransactor
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// TxSigner signs transactions for a single account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// SignerFunc resolves the transaction signer for a record's signer address.
type SignerFunc func(address common.Address) (TxSigner, error)

type ClientConfig struct {
	Address common.Address
	Backend Backend
	Signer  SignerFunc
	// ChainID is fetched from the node when nil.
	ChainID        *big.Int
	WaitForReceipt bool
	ReceiptTimeout time.Duration
	// GasLimit overrides gas estimation when non-zero.
	GasLimit uint64
	Logger   *zerolog.Logger
}

// StoredEvent is a decoded DocumentStored log.
type StoredEvent struct {
	Hash      common.Hash
	Signer    common.Address
	Timestamp *big.Int
	TxHash    common.Hash
}
