package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"catalogworker/internal/store"
)

// SeenLinks is a read-through cache in front of the document store's
// by-link lookup. Types-index scans probe the same links over and over;
// a cache hit spares the round trip. Cache failures degrade to a direct
// store lookup and a positive store answer is written back. Only
// positive answers are cached: a link absent from the store now may be
// inserted moments later.
type SeenLinks struct {
	cache CacheService
	store store.DocumentStore
	ttl   time.Duration
}

// NewSeenLinks wraps a document store with a link-lookup cache.
// A nil cache service disables caching entirely.
func NewSeenLinks(c CacheService, s store.DocumentStore, ttl time.Duration) *SeenLinks {
	return &SeenLinks{cache: c, store: s, ttl: ttl}
}

// Seen reports whether a record with the given link already exists
func (s *SeenLinks) Seen(ctx context.Context, link string) (bool, error) {
	key := linkKey(link)
	if s.cache != nil {
		if _, err := s.cache.Get(key); err == nil {
			return true, nil
		}
	}

	found, err := s.store.FindByLink(ctx, link)
	if err != nil {
		return false, err
	}
	if found && s.cache != nil {
		// Best effort: a failed write-back just means another lookup.
		s.cache.Set(key, []byte("1"), s.ttl)
	}
	return found, nil
}

// Mark records a link as seen after a successful insert
func (s *SeenLinks) Mark(link string) {
	if s.cache != nil {
		s.cache.Set(linkKey(link), []byte("1"), s.ttl)
	}
}

// linkKey hashes the link into a memcache-safe key
func linkKey(link string) string {
	sum := sha1.Sum([]byte(link))
	return "seen:" + hex.EncodeToString(sum[:])
}
