// Package digest computes the content fingerprint that every other package in
// the module signs, stores, and verifies. A Digest is the SHA-256 of the raw
// file bytes, rendered canonically as 0x-prefixed lowercase hex.
//
// Hashing is streamed: files larger than available memory are read in fixed
// chunks, and the context is checked between chunks so a caller can abandon a
// long hash. A digest is only returned when the whole input was read.
//
//	d, err := digest.HashFile(ctx, "contract.pdf")
//	fmt.Println(d.Hex()) // 0x3f2a...
package digest
