// Package store holds the assistant's persistent state: the flat-file
// knowledge base and the upload ledger.
package store
