package identity

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// parsePath accepts absolute paths such as m/44'/60'/0'/0.
func parsePath(path string) (accounts.DerivationPath, error) {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "m/") {
		return nil, fmt.Errorf("%w: %q must start with m/", ErrInvalidPath, path)
	}
	parsed, err := accounts.ParseDerivationPath(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return parsed, nil
}

// deriveParent walks the seed's master key down to the account parent node.
func deriveParent(seed []byte, path accounts.DerivationPath) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}

func childKey(parent *hdkeychain.ExtendedKey, index uint32) (*btcec.PrivateKey, error) {
	child, err := parent.Derive(index)
	if err != nil {
		return nil, err
	}
	return child.ECPrivKey()
}

func addressFromKey(key *btcec.PrivateKey) common.Address {
	return addressFromPublicKey(key.PubKey())
}

func addressFromPublicKey(pub *btcec.PublicKey) common.Address {
	uncompressed := pub.SerializeUncompressed()
	return common.BytesToAddress(crypto.Keccak256(uncompressed[1:])[12:])
}
