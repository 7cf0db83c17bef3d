package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// OperatorConfig identifies the Hedera account that pays for registry topic
// submissions. It is unrelated to the document signer accounts.
type OperatorConfig struct {
	AccountID  string
	PrivateKey Secret
	Network    string
}

// OperatorConfigFromEnv reads Hedera operator credentials. Network-scoped
// variables (TESTNET_HEDERA_ACCOUNT_ID, MAINNET_HEDERA_PRIVATE_KEY, ...)
// override the unscoped ones.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	LoadDotEnv()

	network, err := NormalizeNetwork(firstNonEmptyEnv("HEDERA_NETWORK"))
	if err != nil {
		return OperatorConfig{}, err
	}

	accountID := firstNonEmptyEnv("HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID")
	privateKey := firstNonEmptyEnv("HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY")

	scope := strings.ToUpper(network)
	if scoped := firstNonEmptyEnv(scope+"_HEDERA_ACCOUNT_ID", scope+"_HEDERA_OPERATOR_ID"); scoped != "" {
		accountID = scoped
	}
	if scoped := firstNonEmptyEnv(scope+"_HEDERA_PRIVATE_KEY", scope+"_HEDERA_OPERATOR_KEY"); scoped != "" {
		privateKey = scoped
	}

	if accountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	if privateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required")
	}

	return OperatorConfig{
		AccountID:  accountID,
		PrivateKey: Secret(privateKey),
		Network:    network,
	}, nil
}

// ParsePrivateKey parses a Hedera operator key, trying ED25519 first and
// ECDSA(secp256k1) second.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}

	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse operator private key: ed25519=%v ecdsa=%v",
		edErr,
		ecdsaErr,
	)
}
