// Package evmregistry is a registry.Registry client for the DocumentRegistry
// contract on an EVM chain.
//
// Reads are eth_call requests against the contract's view functions. An
// append is a legacy transaction calling storeDocumentHash, signed by the
// account named as the record's signer.
package evmregistry
