package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vlatan/sitemap-builder/internal/models"
)

// Memory is an in-process Store bounded to a number of documents
type Memory struct {
	records *lru.Cache[string, models.CacheRecord]
	now     func() time.Time
}

// NewMemory creates an in-process store holding at most size documents
func NewMemory(size int) (*Memory, error) {

	records, err := lru.New[string, models.CacheRecord](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create the memory cache; %w", err)
	}

	return &Memory{records: records, now: time.Now}, nil
}

func (m *Memory) Get(ctx context.Context, key string) (models.CacheRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.CacheRecord{}, false, err
	}
	record, ok := m.records.Get(key)
	return record, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.records.Add(key, models.CacheRecord{Value: value, ExpiresAt: m.now().Add(ttl)})
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.records.Remove(key)
	return nil
}

// Len returns the number of stored documents
func (m *Memory) Len() int {
	return m.records.Len()
}
