// Package session owns the lifecycle of the API session token.
//
// Store is the single writer of the token. Every other component reads it
// through Get on each use and asks for invalidation through Clear; nothing
// else touches the persisted copy. The token is opaque: the store does not
// look inside it, and only the remote API decides whether it is valid.
//
// The persisted copy lives behind a Backend. MemoryBackend keeps nothing
// beyond the process; FileBackend keeps a YAML file, standing in for the
// browser storage the UI used to write directly.
package session
