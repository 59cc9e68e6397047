// Package keystore implements the client's persisted key/value store.
//
// # Backends
//
//   - SQLiteStore: the default. A single "kv" table in a local SQLite file,
//     created by the embedded goose migrations (see OpenSQLite).
//   - MemoryStore: process-local map, used by tests and "-s memory".
//   - RedisStore: go-redis backed, keys namespaced by a prefix.
//
// SealedStore wraps any of them and encrypts values at rest with a key
// derived from a passphrase.
//
// # Keys
//
// The session core uses three fixed keys (KeyAuthToken, KeyRefreshToken,
// KeyUserData) which are written and removed independently; there is no
// cross-key atomicity. KeyErrorLogs holds the error-log list.
package keystore
