package rdb

import (
	"errors"
	"log"
	"testing"
	"time"

	"github.com/vlatan/sitemap-builder/internal/cache"
)

func TestStore(t *testing.T) {

	key := cache.Key("v1", "pages")

	if err := testRdb.Set(baseCtx, key, "<urlset/>", time.Minute); err != nil {
		t.Fatalf("failed to set the record; %v", err)
	}

	record, ok, err := testRdb.Get(baseCtx, key)
	if err != nil || !ok {
		t.Fatalf("got (%t, %v), want a stored record", ok, err)
	}

	if record.Value != "<urlset/>" || record.Expired(time.Now()) {
		t.Errorf("unexpected record %+v", record)
	}

	ttl, err := testRdb.Client.TTL(baseCtx, key).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("got ttl = %v, error = %v, want a ttl up to a minute", ttl, err)
	}

	if err := testRdb.Remove(baseCtx, key); err != nil {
		t.Fatalf("failed to remove the record; %v", err)
	}

	if _, ok, err := testRdb.Get(baseCtx, key); ok || err != nil {
		t.Errorf("got (%t, %v), want a miss", ok, err)
	}
}

func TestGetOrRender(t *testing.T) {

	validRender := func() (string, error) { return "<urlset/>", nil }
	errorRender := func() (string, error) { return "", errors.New("test") }

	errorRdb, err := New(testCfg)
	if err != nil {
		log.Fatalf("failed to create Redis client; %v", err)
	}

	// Close this Redis client so we can use it
	// to force an error on GET/SET.
	if err = errorRdb.Close(); err != nil {
		log.Fatalf("failed to close the Redis client; %v", err)
	}

	tests := []struct {
		name    string
		rdb     *Service
		render  func() (string, error)
		wantErr bool
	}{
		{"error rdb, error render", errorRdb, errorRender, true},
		{"error rdb, valid render", errorRdb, validRender, false},
		{"error render", testRdb, errorRender, true},
		{"valid render", testRdb, validRender, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := cache.Key("test", tt.name)

			_, err := cache.GetOrRender(baseCtx, tt.rdb, key, time.Minute, tt.render)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("got error = %v, want error = %t", err, tt.wantErr)
			}

			// Run the func again to fetch from cache
			_, err = cache.GetOrRender(baseCtx, tt.rdb, key, time.Minute, tt.render)
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("got error = %v, want error = %t", err, tt.wantErr)
			}
		})
	}
}
