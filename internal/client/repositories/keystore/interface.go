package keystore

import "context"

// Store is durable string key/value storage.
//
// Get reports a missing key as ("", false, nil). All methods may fail when
// the backing storage is unavailable; callers in this module treat a failed
// read as "absent" and log failed writes without aborting.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}
