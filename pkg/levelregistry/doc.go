// Package levelregistry persists the document registry in a local LevelDB
// directory. It is the single-machine backend used when no ledger is
// configured.
package levelregistry
