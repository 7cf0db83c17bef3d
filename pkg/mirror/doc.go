// Package mirror is a read-only client for the Hedera mirror node REST API.
// The topic registry backend uses it to read topic metadata and the ordered
// stream of registration messages.
package mirror
