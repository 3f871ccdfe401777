package cache

import (
	"context"
	"log"
	"time"

	"github.com/vlatan/sitemap-builder/internal/models"
)

// Store is a key-value storage of rendered documents.
// Implementations decide where records live, expiry is checked by the caller.
type Store interface {
	Get(ctx context.Context, key string) (models.CacheRecord, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// Key is the cache key of a sitemap document under a config version
func Key(version, name string) string {
	return "sitemap:" + version + ":" + name
}

// Generic get-or-compute wrapper around a Store.
// It bypasses the store altogether if there's no store or the ttl is not positive.
// Store failures are logged and treated as a miss,
// only the render function can fail the call.
func GetOrRender(
	ctx context.Context,
	store Store,
	key string,
	ttl time.Duration,
	render func() (string, error), // Function to call if cache miss
) (string, error) {

	if store == nil || ttl <= 0 {
		return render()
	}

	record, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		log.Printf("Error getting cached sitemap for key '%s': %v", key, err)
	case ok && !record.Expired(time.Now()):
		return record.Value, nil
	case ok:
		if err = store.Remove(ctx, key); err != nil {
			log.Printf("Error removing expired sitemap for key '%s': %v", key, err)
		}
	}

	value, err := render()
	if err != nil {
		return "", err
	}

	// Don't return an error if unable to set the cache
	if err = store.Set(ctx, key, value, ttl); err != nil {
		log.Printf("Error caching sitemap for key '%s': %v", key, err)
	}

	return value, nil
}
