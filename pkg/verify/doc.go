// Package verify decides whether a document was signed by a claimed account
// according to a registry.
package verify
