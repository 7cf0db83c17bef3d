package evmregistry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	methodCount    = "getDocumentCount"
	methodHashAt   = "getDocumentHashByIndex"
	methodInfo     = "getDocumentInfo"
	methodIsStored = "isDocumentStored"
	methodStore    = "storeDocumentHash"
	eventStored    = "DocumentStored"
)

// RegistryABI is the interface of the DocumentRegistry contract.
const RegistryABI = `[
  {"type":"function","name":"getDocumentCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getDocumentHashByIndex","stateMutability":"view","inputs":[{"name":"index","type":"uint256"}],"outputs":[{"name":"","type":"bytes32"}]},
  {"type":"function","name":"getDocumentInfo","stateMutability":"view","inputs":[{"name":"hash","type":"bytes32"}],"outputs":[{"name":"signer","type":"address"},{"name":"timestamp","type":"uint256"},{"name":"signature","type":"bytes"}]},
  {"type":"function","name":"isDocumentStored","stateMutability":"view","inputs":[{"name":"hash","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"storeDocumentHash","stateMutability":"nonpayable","inputs":[{"name":"hash","type":"bytes32"},{"name":"timestamp","type":"uint256"},{"name":"signature","type":"bytes"},{"name":"signer","type":"address"}],"outputs":[]},
  {"type":"event","name":"DocumentStored","anonymous":false,"inputs":[{"name":"hash","type":"bytes32","indexed":true},{"name":"signer","type":"address","indexed":true},{"name":"timestamp","type":"uint256","indexed":false}]}
]`

var registryABI = mustParseABI(RegistryABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid registry ABI: %v", err))
	}
	return parsed
}

// ABI returns the parsed contract interface.
func ABI() abi.ABI {
	return registryABI
}
