package rdb

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vlatan/sitemap-builder/internal/models"
)

// Get a cached sitemap document.
// The record implements the encoding.BinaryUnmarshaler interface.
func (rs *Service) Get(ctx context.Context, key string) (models.CacheRecord, bool, error) {

	var record models.CacheRecord
	err := rs.Client.Get(ctx, key).Scan(&record)

	if errors.Is(err, redis.Nil) {
		return models.CacheRecord{}, false, nil
	}

	if err != nil {
		return models.CacheRecord{}, false, err
	}

	return record, true, nil
}

// Set a sitemap document, Redis expires the key along with the record.
// The record implements the encoding.BinaryMarshaler interface.
func (rs *Service) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	record := models.CacheRecord{Value: value, ExpiresAt: time.Now().Add(ttl)}
	return rs.Client.Set(ctx, key, record, ttl).Err()
}

// Remove a sitemap document
func (rs *Service) Remove(ctx context.Context, key string) error {
	return rs.Client.Del(ctx, key).Err()
}
