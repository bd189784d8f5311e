// Package cache holds the monthly mood summary caches and the entry owner cache.
//
// Summary caches are versioned per user. Every write to a user's journal bumps
// that user's generation after it commits, and cached summaries are keyed by
// generation, so a summary computed before a write can never be served after it.
package cache

import (
	"context"
	"fmt"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
)

// ComputeFunc produces a fresh summary on a cache miss.
type ComputeFunc func(ctx context.Context) ([]model.MonthlyMoodCount, error)

func summaryKey(uid string, gen int64, from, to model.Date) string {
	return fmt.Sprintf("%s:%d:%s:%s", uid, gen, from, to)
}
