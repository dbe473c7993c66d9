// Package cache provides an in-memory read-through cache for stored files.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/csvrag/internal/core/domain"
	"github.com/custodia-labs/csvrag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FileStore = (*FileStore)(nil)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csvrag_cache_hits_total",
		Help: "Total number of file lookups served from the in-memory cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csvrag_cache_misses_total",
		Help: "Total number of file lookups that went to the backing store.",
	})
)

// DefaultTTL is how long a cached file stays valid after it was loaded
const DefaultTTL = 10 * time.Minute

// FileStore decorates a driven.FileStore with an expirable LRU cache of Get results.
// Stored files are immutable, so only Delete has to invalidate entries.
type FileStore struct {
	next  driven.FileStore
	cache *expirable.LRU[string, *domain.FileDocument]

	// mu orders cache fills against deletes. generation counts deletes;
	// a load that overlapped any delete is returned but not cached.
	mu         sync.Mutex
	generation uint64
}

// NewFileStore wraps next with a cache holding at most size documents for ttl.
func NewFileStore(next driven.FileStore, size int, ttl time.Duration) *FileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileStore{
		next:  next,
		cache: expirable.NewLRU[string, *domain.FileDocument](size, nil, ttl),
	}
}

func (s *FileStore) Create(ctx context.Context, doc *domain.FileDocument) (string, error) {
	return s.next.Create(ctx, doc)
}

func (s *FileStore) List(ctx context.Context) ([]*domain.FileSummary, error) {
	return s.next.List(ctx)
}

// Get returns a deep copy of the cached document, loading it on a miss
func (s *FileStore) Get(ctx context.Context, id string) (*domain.FileDocument, error) {
	if doc, ok := s.cache.Get(id); ok {
		cacheHitsTotal.Inc()
		return doc.Clone(), nil
	}
	cacheMissesTotal.Inc()

	s.mu.Lock()
	started := s.generation
	s.mu.Unlock()

	doc, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generation == started {
		s.cache.Add(id, doc.Clone())
	}
	s.mu.Unlock()
	return doc, nil
}

// Delete removes the document from the cache and the backing store.
// The cache entry is dropped even when the store call fails. Invalidating on
// both sides of the store call keeps overlapping loads out of the cache.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.invalidate(id)
	err := s.next.Delete(ctx, id)
	s.invalidate(id)
	return err
}

func (s *FileStore) invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cache.Remove(id)
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close purges the cache and closes the backing store
func (s *FileStore) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

// Len returns the number of cached documents
func (s *FileStore) Len() int {
	return s.cache.Len()
}
