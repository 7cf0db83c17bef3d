package identity

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxSigner signs transactions for one derived account.
type TxSigner struct {
	account Account
	key     *btcec.PrivateKey
}

// TxSignerFor returns a transaction signer for the derived account with the
// given address.
func (p *Provider) TxSignerFor(address common.Address) (*TxSigner, error) {
	account, err := p.Lookup(address)
	if err != nil {
		return nil, err
	}
	return &TxSigner{account: account, key: p.keys[account.Index]}, nil
}

func (s *TxSigner) Address() common.Address {
	return s.account.Address
}

// SignTx signs tx with the latest signer rules for chainID.
func (s *TxSigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}
	if chainID == nil {
		return nil, fmt.Errorf("chain id is required")
	}
	signer := types.LatestSignerForChainID(chainID)
	hash := signer.Hash(tx)
	signed, err := tx.WithSignature(signer, signHash(s.key, hash.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to attach signature: %w", err)
	}
	return signed, nil
}
