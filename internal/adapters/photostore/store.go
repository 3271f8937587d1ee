// Package photostore caches normalised player photos by key.
package photostore

import "context"

// DefaultKeyPrefix namespaces photo keys.
const DefaultKeyPrefix = "player_photo_"

// Store is a key/value blob cache.
type Store interface {
	// Get returns the blob for key; found is false when nothing is stored.
	Get(ctx context.Context, key string) (blob []byte, found bool, err error)
	// Put stores blob under key, replacing any previous value.
	Put(ctx context.Context, key string, blob []byte) error
	Close() error
}

// Key builds the cache key for a player.
func Key(prefix, playerID string) string {
	return prefix + playerID
}
