// Package registry defines the append-only document registry contract shared
// by every backend, the in-memory ledger, and history enumeration.
package registry
