package service

import (
	"context"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/streak"
)

func (s *Journal) facts(ctx context.Context, uid string, from, to model.Date) ([]model.EntryFacts, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	facts, err := s.store.GetEntryFacts(ctx, store.GetEntryFactsRequest{UID: uid, From: from, To: to})
	if err != nil {
		return nil, storageErr("load entry facts", err)
	}
	return facts, nil
}

func (s *Journal) CurrentStreak(ctx context.Context, uid string) (int, error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return 0, err
	}
	return streak.Current(facts, s.Today()), nil
}

func (s *Journal) LongestStreak(ctx context.Context, uid string) (int, error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return 0, err
	}
	return streak.Longest(facts), nil
}

func (s *Journal) LongestHappyStreak(ctx context.Context, uid string) (int, error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return 0, err
	}
	return streak.LongestHappy(facts), nil
}

// MostCommonMood reports the most frequent mood. found is false when no entry has a mood.
func (s *Journal) MostCommonMood(ctx context.Context, uid string) (mc model.MoodCount, found bool, err error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return model.MoodCount{}, false, err
	}
	mc, found = streak.MostCommonMood(facts)
	return mc, found, nil
}

func (s *Journal) TotalEntries(ctx context.Context, uid string) (int, error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return 0, err
	}
	return streak.Total(facts), nil
}

func (s *Journal) AvgEntryLength(ctx context.Context, uid string) (float64, error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return 0, err
	}
	return streak.AverageLength(facts), nil
}

// Stats computes every statistic from a single read of the user's entries.
func (s *Journal) Stats(ctx context.Context, uid string) (model.Stats, error) {
	facts, err := s.facts(ctx, uid, model.Date{}, model.Date{})
	if err != nil {
		return model.Stats{}, err
	}
	return streak.Compute(facts, s.Today()), nil
}

// MonthlyMoodSummary counts entries per (month, mood) between from and to
// inclusive. A zero bound leaves that side open.
func (s *Journal) MonthlyMoodSummary(ctx context.Context, uid string, from, to model.Date) ([]model.MonthlyMoodCount, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	out, err := s.summaries.Load(ctx, uid, from, to, func(ctx context.Context) ([]model.MonthlyMoodCount, error) {
		facts, err := s.facts(ctx, uid, from, to)
		if err != nil {
			return nil, err
		}
		return streak.MonthlySummary(facts, from, to), nil
	})
	if err != nil {
		return nil, classify("monthly summary", "summary", err)
	}
	return nonNil(out), nil
}

// MoodCalendar lists the mood of every day in the range that has one.
func (s *Journal) MoodCalendar(ctx context.Context, uid string, from, to model.Date) ([]model.DayMood, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	facts, err := s.facts(ctx, uid, from, to)
	if err != nil {
		return nil, err
	}
	return nonNil(streak.Calendar(facts, from, to)), nil
}
