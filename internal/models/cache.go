package models

import (
	"encoding/json"
	"time"
)

// CacheRecord is a rendered sitemap document stored in the cache
type CacheRecord struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is stale at the given time
func (c CacheRecord) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
// It's called by the Redis client when setting the record.
func (c CacheRecord) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
// It's called by the Redis client when scanning the record.
func (c *CacheRecord) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}
