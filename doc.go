// Package hashessignature signs document fingerprints with HD-derived
// Ethereum accounts and records them in an append-only registry so anyone
// can later check who signed a file.
//
// # Packages
//
//   - pkg/digest: streamed SHA-256 document digests
//   - pkg/identity: BIP-39/BIP-32 account derivation, selection and EIP-191 signatures
//   - pkg/signing: confirmation-gated sign and store workflow
//   - pkg/verify: verdicts for a document and a claimed signer
//   - pkg/registry: the registry contract, an in-memory ledger and history listing
//   - pkg/evmregistry: DocumentRegistry smart contract client
//   - pkg/hcsregistry: registry on a Hedera consensus topic
//   - pkg/levelregistry: registry in a local LevelDB directory
//   - pkg/mirror: Hedera mirror node REST client
//   - pkg/telemetry: zerolog loggers and prometheus metrics
//   - pkg/shared: configuration, secrets and Hedera network helpers
//
// The docsig command in cmd/docsig exposes the same operations.
//
// # Installation
//
//	go install github.com/PersonalPrivateProjects/First-Project-HashesSignature/cmd/docsig@latest
package hashessignature
