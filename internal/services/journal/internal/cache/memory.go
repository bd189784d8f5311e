package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/dgraph-io/ristretto/v2"
)

// MemorySummary is an in-process summary cache for single instance deployments.
type MemorySummary struct {
	cache *ristretto.Cache[string, []model.MonthlyMoodCount]
	ttl   time.Duration

	mu   sync.Mutex
	gens map[string]int64
}

type MemoryConfig struct {
	MaxKeys int64
	MaxCost int64
	TTL     time.Duration
}

func NewMemorySummary(cfg MemoryConfig) *MemorySummary {
	c, err := ristretto.NewCache(&ristretto.Config[string, []model.MonthlyMoodCount]{
		NumCounters:        cfg.MaxKeys * 10,
		MaxCost:            cfg.MaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create summary cache: %v", err))
	}

	return &MemorySummary{
		cache: c,
		ttl:   cfg.TTL,
		gens:  make(map[string]int64),
	}
}

func (m *MemorySummary) Load(ctx context.Context, uid string, from, to model.Date, compute ComputeFunc) ([]model.MonthlyMoodCount, error) {
	gen := m.generation(uid)
	key := summaryKey(uid, gen, from, to)

	if v, ok := m.cache.Get(key); ok {
		return slices.Clone(v), nil
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if m.generation(uid) == gen {
		m.cache.SetWithTTL(key, slices.Clone(v), int64(len(v))+1, m.ttl)
		m.cache.Wait()
	}
	return v, nil
}

func (m *MemorySummary) Invalidate(_ context.Context, uid string) error {
	m.mu.Lock()
	m.gens[uid]++
	m.mu.Unlock()
	return nil
}

func (m *MemorySummary) Close() error {
	m.cache.Close()
	return nil
}

func (m *MemorySummary) generation(uid string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[uid]
}

// Owners maps entry ids to the uid that owns them. Ownership never changes.
type Owners struct {
	cache *ristretto.Cache[int64, string]
}

func NewOwners(maxKeys, maxCost int64) *Owners {
	c, err := ristretto.NewCache(&ristretto.Config[int64, string]{
		NumCounters:        maxKeys * 10,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create owner cache: %v", err))
	}

	return &Owners{cache: c}
}

func (o *Owners) Get(entryID int64) (string, bool) {
	return o.cache.Get(entryID)
}

func (o *Owners) Set(entryID int64, uid string) {
	o.cache.Set(entryID, uid, 1)
}

// Close stops the cache's background goroutines. Get misses and Set is a
// no-op afterwards.
func (o *Owners) Close() error {
	o.cache.Close()
	return nil
}
