package service

import (
	"context"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/blob"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/cache"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
)

const defaultMaxImageSize = 5 * 1024 * 1024

// DefaultLocation is the reference time zone for calendar days: a fixed UTC-5
// with no daylight saving.
var DefaultLocation = time.FixedZone("UTC-05:00", -5*60*60)

// SummaryCache serves monthly mood summaries. Invalidate must make every later
// Load for uid recompute.
type SummaryCache interface {
	Load(ctx context.Context, uid string, from, to model.Date, compute cache.ComputeFunc) ([]model.MonthlyMoodCount, error)
	Invalidate(ctx context.Context, uid string) error
}

type ownerCache interface {
	Get(entryID int64) (string, bool)
	Set(entryID int64, uid string)
}

// Journal owns entries, tags, images and the statistics derived from them.
// Every call is scoped to the uid passed in.
type Journal struct {
	store        store.Store
	blobs        blob.Store
	summaries    SummaryCache
	owners       ownerCache
	loc          *time.Location
	now          func() time.Time
	maxImageSize int64
}

type Option func(*Journal)

func WithSummaryCache(c SummaryCache) Option {
	return func(j *Journal) { j.summaries = c }
}

func WithOwnerCache(c ownerCache) Option {
	return func(j *Journal) { j.owners = c }
}

// WithLocation sets the time zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(j *Journal) { j.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

func WithMaxImageSize(n int64) Option {
	return func(j *Journal) { j.maxImageSize = n }
}

func NewJournal(st store.Store, blobs blob.Store, opts ...Option) *Journal {
	j := &Journal{
		store:        st,
		blobs:        blobs,
		summaries:    noSummaryCache{},
		owners:       noOwnerCache{},
		loc:          DefaultLocation,
		now:          time.Now,
		maxImageSize: defaultMaxImageSize,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Today is the current calendar day in the reference time zone.
func (s *Journal) Today() model.Date {
	return model.DateOf(s.now(), s.loc)
}

// Location is the reference time zone.
func (s *Journal) Location() *time.Location {
	return s.loc
}

func (s *Journal) checkDate(d model.Date) error {
	if d.IsZero() {
		return invalid("entry date is required")
	}
	if today := s.Today(); d.After(today) {
		return futureDate(d, today)
	}
	return nil
}

type noSummaryCache struct{}

func (noSummaryCache) Load(ctx context.Context, _ string, _, _ model.Date, compute cache.ComputeFunc) ([]model.MonthlyMoodCount, error) {
	return compute(ctx)
}

func (noSummaryCache) Invalidate(context.Context, string) error { return nil }

type noOwnerCache struct{}

func (noOwnerCache) Get(int64) (string, bool) { return "", false }

func (noOwnerCache) Set(int64, string) {}
