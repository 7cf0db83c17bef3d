// Package identity derives a fixed set of secp256k1 accounts from a BIP-39
// mnemonic, tracks which one is active for the session, and produces
// Ethereum personal-message signatures that any third party can recover.
//
// Private keys never leave this package. Callers receive Account values
// (index, address, derivation path) and 65-byte r || s || v signatures.
package identity
