// Package hcsregistry stores document registrations on a Hedera Consensus
// Service topic.
//
// A registry is a topic whose memo is "hsig-1:<ttl>". Each registration is a
// JSON message submitted to the topic:
//
//	{"p":"hsig-1","op":"register","hash":"0x...","signer":"0x...","ts":1700000000,"sig":"0x..."}
//
// Consensus order defines registry order. Reads come from the mirror node;
// malformed messages are skipped and only the first registration of a digest
// counts, so Count, DigestAt, Lookup and Exists always agree.
package hcsregistry
