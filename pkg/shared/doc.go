// Package shared holds the configuration plumbing used by the command line
// tool and the registry backends: .env discovery, environment parsing into a
// typed Config, Hedera network normalization, operator credential loading, and
// the Secret type that keeps seed phrases out of logs.
//
// # Environment Variables
//
// Application settings use the DOCSIG_ prefix (DOCSIG_MNEMONIC,
// DOCSIG_REGISTRY, DOCSIG_RPC_URL, ...). Hedera operator credentials keep the
// ecosystem names HEDERA_ACCOUNT_ID, HEDERA_PRIVATE_KEY and HEDERA_NETWORK,
// with MAINNET_/TESTNET_ scoped overrides.
//
// A .env file in the working directory or any parent is loaded once before
// parsing; variables already present in the process environment win.
package shared
