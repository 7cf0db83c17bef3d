// Package signing turns a document digest into a stored, signed registry
// record: build the canonical message, ask for confirmation, sign with the
// active account, and append to the registry.
//
// Signing and storing are separate steps. When the append fails the signed
// record is kept in a PendingError so it can be stored again without a
// second signature.
package signing
