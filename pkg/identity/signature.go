package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
)

const (
	SignatureLength = 65
	compactHeader   = 27
)

// Signature is an Ethereum-style r || s || v signature with v in {27, 28}.
type Signature []byte

func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s)
}

func (s Signature) String() string {
	return s.Hex()
}

// ParseSignature decodes a hex signature, with or without 0x.
func ParseSignature(value string) (Signature, error) {
	decoded, err := hex.DecodeString(trimHexPrefix(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(decoded) != SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(decoded))
	}
	return Signature(decoded), nil
}

func trimHexPrefix(value string) string {
	if len(value) >= 2 && value[0] == '0' && (value[1] == 'x' || value[1] == 'X') {
		return value[2:]
	}
	return value
}

// signHash signs a 32-byte hash deterministically (RFC 6979) and returns
// r || s || recid with recid in {0, 1}.
func signHash(key *btcec.PrivateKey, hash []byte) []byte {
	compact := ecdsa.SignCompact(key, hash, false)
	out := make([]byte, SignatureLength)
	copy(out, compact[1:])
	out[64] = compact[0] - compactHeader
	return out
}

func signMessage(key *btcec.PrivateKey, message []byte) Signature {
	sig := signHash(key, accounts.TextHash(message))
	sig[64] += compactHeader
	return Signature(sig)
}

// RecoverAddress returns the address whose key produced signature over the
// personal-message form of message.
func RecoverAddress(message []byte, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(signature))
	}
	v := signature[64]
	if v >= compactHeader {
		v -= compactHeader
	}
	if v > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, signature[64])
	}

	compact := make([]byte, SignatureLength)
	compact[0] = compactHeader + v
	copy(compact[1:], signature[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, accounts.TextHash(message))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return addressFromPublicKey(pub), nil
}

// VerifySignature reports whether signature over message recovers to address.
func VerifySignature(message []byte, signature []byte, address common.Address) bool {
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return false
	}
	return recovered == address
}
