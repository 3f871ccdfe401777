package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vlatan/sitemap-builder/internal/models"
)

// fakeStore is a Store with a fixed record and configurable failures
type fakeStore struct {
	record  models.CacheRecord
	found   bool
	getErr  error
	setErr  error
	sets    int
	removed int
}

func (f *fakeStore) Get(ctx context.Context, key string) (models.CacheRecord, bool, error) {
	return f.record, f.found, f.getErr
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.sets++
	return f.setErr
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	f.removed++
	return nil
}

func TestKey(t *testing.T) {
	if got, want := Key("abc", "posts"), "sitemap:abc:posts"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetOrRender(t *testing.T) {

	validRender := func() (string, error) { return "fresh", nil }
	errorRender := func() (string, error) { return "", errors.New("test") }

	fresh := models.CacheRecord{Value: "cached", ExpiresAt: time.Now().Add(time.Hour)}
	stale := models.CacheRecord{Value: "cached", ExpiresAt: time.Now().Add(-time.Hour)}

	tests := []struct {
		name        string
		store       *fakeStore
		ttl         time.Duration
		render      func() (string, error)
		expected    string
		wantErr     bool
		wantSets    int
		wantRemoved int
	}{
		{"hit", &fakeStore{record: fresh, found: true}, time.Minute, validRender, "cached", false, 0, 0},
		{"miss", &fakeStore{}, time.Minute, validRender, "fresh", false, 1, 0},
		{"expired", &fakeStore{record: stale, found: true}, time.Minute, validRender, "fresh", false, 1, 1},
		{"disabled", &fakeStore{record: fresh, found: true}, 0, validRender, "fresh", false, 0, 0},
		{"get error", &fakeStore{getErr: errors.New("down")}, time.Minute, validRender, "fresh", false, 1, 0},
		{"set error", &fakeStore{setErr: errors.New("down")}, time.Minute, validRender, "fresh", false, 1, 0},
		{"render error", &fakeStore{}, time.Minute, errorRender, "", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetOrRender(context.Background(), tt.store, "key", tt.ttl, tt.render)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Fatalf("got error = %v, want error = %t", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
			if tt.store.sets != tt.wantSets {
				t.Errorf("got %d sets, want %d", tt.store.sets, tt.wantSets)
			}
			if tt.store.removed != tt.wantRemoved {
				t.Errorf("got %d removals, want %d", tt.store.removed, tt.wantRemoved)
			}
		})
	}
}

func TestGetOrRenderNilStore(t *testing.T) {
	got, err := GetOrRender(context.Background(), nil, "key", time.Minute, func() (string, error) {
		return "fresh", nil
	})
	if err != nil || got != "fresh" {
		t.Errorf("got (%q, %v), want (%q, nil)", got, err, "fresh")
	}
}

func TestMemory(t *testing.T) {

	m, err := NewMemory(2)
	if err != nil {
		t.Fatalf("failed to create the memory store; %v", err)
	}

	now := time.Now()
	m.now = func() time.Time { return now }

	ctx := context.Background()
	calls := 0
	render := func() (string, error) {
		calls++
		return "<urlset/>", nil
	}

	for range 3 {
		if _, err := GetOrRender(ctx, m, Key("v1", "pages"), time.Hour, render); err != nil {
			t.Fatalf("unexpected error; %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("got %d renders, want 1", calls)
	}

	record, ok, err := m.Get(ctx, Key("v1", "pages"))
	if err != nil || !ok {
		t.Fatalf("got (%t, %v), want a stored record", ok, err)
	}

	if want := now.Add(time.Hour); !record.ExpiresAt.Equal(want) {
		t.Errorf("got expiry %v, want %v", record.ExpiresAt, want)
	}

	// A new config version is a new key
	if _, err := GetOrRender(ctx, m, Key("v2", "pages"), time.Hour, render); err != nil {
		t.Fatalf("unexpected error; %v", err)
	}

	if calls != 2 {
		t.Errorf("got %d renders, want 2", calls)
	}

	// Bounded to two documents
	if err := m.Set(ctx, "other", "x", time.Hour); err != nil {
		t.Fatalf("unexpected error; %v", err)
	}

	if m.Len() != 2 {
		t.Errorf("got %d records, want 2", m.Len())
	}

	if err := m.Remove(ctx, "other"); err != nil {
		t.Fatalf("unexpected error; %v", err)
	}

	if _, ok, _ := m.Get(ctx, "other"); ok {
		t.Errorf("record still present after removal")
	}

	if _, err := NewMemory(0); err == nil {
		t.Errorf("got no error for a zero sized store")
	}
}
