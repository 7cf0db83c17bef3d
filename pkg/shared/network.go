package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

var mirrorBaseURLs = map[string]string{
	NetworkMainnet: "https://mainnet-public.mirrornode.hedera.com",
	NetworkTestnet: "https://testnet.mirrornode.hedera.com",
}

// NormalizeNetwork maps user input to a supported Hedera network name.
// Empty input selects testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}
	if _, ok := mirrorBaseURLs[normalized]; !ok {
		return "", fmt.Errorf("unsupported network %q", network)
	}
	return normalized, nil
}

// MirrorBaseURL is the public mirror node of network.
func MirrorBaseURL(network string) (string, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return "", err
	}
	return mirrorBaseURLs[normalized], nil
}

// NewOperatorClient returns a Hedera client for the operator's network that
// pays with the operator account, along with the parsed operator key.
func NewOperatorClient(operator OperatorConfig) (*hedera.Client, hedera.PrivateKey, error) {
	network, err := NormalizeNetwork(operator.Network)
	if err != nil {
		return nil, hedera.PrivateKey{}, err
	}
	if strings.TrimSpace(operator.AccountID) == "" {
		return nil, hedera.PrivateKey{}, fmt.Errorf("operator account ID is required")
	}
	if operator.PrivateKey.IsEmpty() {
		return nil, hedera.PrivateKey{}, fmt.Errorf("operator private key is required")
	}
	accountID, err := hedera.AccountIDFromString(strings.TrimSpace(operator.AccountID))
	if err != nil {
		return nil, hedera.PrivateKey{}, fmt.Errorf("invalid operator account ID: %w", err)
	}
	key, err := ParsePrivateKey(operator.PrivateKey.Reveal())
	if err != nil {
		return nil, hedera.PrivateKey{}, err
	}

	client := hedera.ClientForTestnet()
	if network == NetworkMainnet {
		client = hedera.ClientForMainnet()
	}
	client.SetOperator(accountID, key)
	return client, key, nil
}
