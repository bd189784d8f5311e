// Package streak computes streaks and aggregate statistics over a user's entries.
// Every function is pure; callers load the facts and pass "today".
package streak

import (
	"slices"
	"strings"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
)

// days returns the distinct dates of facts accepted by keep, oldest first.
func days(facts []model.EntryFacts, keep func(model.EntryFacts) bool) []model.Date {
	out := make([]model.Date, 0, len(facts))
	for _, f := range facts {
		if f.Date.IsZero() || (keep != nil && !keep(f)) {
			continue
		}
		out = append(out, f.Date)
	}

	slices.SortFunc(out, func(a, b model.Date) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})
	return slices.CompactFunc(out, model.Date.Equal)
}

// Current counts consecutive days with an entry ending today. A missing entry for
// today does not break the streak while the day is in progress; the run ending
// yesterday is reported instead.
func Current(facts []model.EntryFacts, today model.Date) int {
	ds := days(facts, nil)

	present := make(map[model.Date]bool, len(ds))
	for _, d := range ds {
		present[d] = true
	}

	cursor := today
	if !present[cursor] {
		cursor = today.AddDays(-1)
	}

	n := 0
	for present[cursor] {
		n++
		cursor = cursor.AddDays(-1)
	}
	return n
}

// Longest is the longest run of consecutive days with an entry.
func Longest(facts []model.EntryFacts) int {
	return longestRun(days(facts, nil))
}

// LongestWithMood is the longest run of consecutive days whose entry has mood m.
func LongestWithMood(facts []model.EntryFacts, m mood.Mood) int {
	return longestRun(days(facts, func(f model.EntryFacts) bool { return f.Mood == m }))
}

// LongestHappy is LongestWithMood for the Happy mood.
func LongestHappy(facts []model.EntryFacts) int {
	return LongestWithMood(facts, mood.Happy)
}

func longestRun(ds []model.Date) int {
	if len(ds) == 0 {
		return 0
	}

	best, run := 1, 1
	for i := 1; i < len(ds); i++ {
		if ds[i].DaysSince(ds[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

// MostCommonMood returns the mood with the most entries. Ties go to the
// alphabetically smallest name. Entries without a mood are ignored.
func MostCommonMood(facts []model.EntryFacts) (model.MoodCount, bool) {
	counts := make(map[mood.Mood]int)
	for _, f := range facts {
		if f.Mood != "" {
			counts[f.Mood]++
		}
	}

	var best model.MoodCount
	for m, n := range counts {
		if n > best.Count || (n == best.Count && strings.Compare(string(m), string(best.Mood)) < 0) {
			best = model.MoodCount{Mood: m, Count: n}
		}
	}
	return best, best.Count > 0
}

func Total(facts []model.EntryFacts) int {
	return len(facts)
}

// AverageLength is the mean content length; empty entries count as zero.
func AverageLength(facts []model.EntryFacts) float64 {
	if len(facts) == 0 {
		return 0
	}

	sum := 0
	for _, f := range facts {
		sum += f.Length
	}
	return float64(sum) / float64(len(facts))
}

// Compute bundles every statistic.
func Compute(facts []model.EntryFacts, today model.Date) model.Stats {
	st := model.Stats{
		CurrentStreak:      Current(facts, today),
		LongestStreak:      Longest(facts),
		LongestHappyStreak: LongestHappy(facts),
		TotalEntries:       Total(facts),
		AvgEntryLength:     AverageLength(facts),
	}
	if mc, ok := MostCommonMood(facts); ok {
		st.MostCommonMood = &mc
	}
	return st
}

// MonthlySummary counts entries per (month, mood) for entries inside [from, to].
// A zero bound is open. Rows are ordered by month, then by descending count and
// mood name. Entries without a mood are left out.
func MonthlySummary(facts []model.EntryFacts, from, to model.Date) []model.MonthlyMoodCount {
	type key struct {
		month string
		mood  mood.Mood
	}

	counts := make(map[key]int)
	for _, f := range facts {
		if f.Mood == "" || !inRange(f.Date, from, to) {
			continue
		}
		counts[key{f.Date.MonthKey(), f.Mood}]++
	}

	rows := make([]model.MonthlyMoodCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, model.MonthlyMoodCount{Month: k.month, Mood: k.mood, Count: n})
	}

	slices.SortFunc(rows, func(a, b model.MonthlyMoodCount) int {
		if c := strings.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(string(a.Mood), string(b.Mood))
	})
	return rows
}

// Calendar lists the mood of each day inside [from, to] that has one, oldest first.
func Calendar(facts []model.EntryFacts, from, to model.Date) []model.DayMood {
	out := make([]model.DayMood, 0, len(facts))
	for _, f := range facts {
		if f.Mood == "" || !inRange(f.Date, from, to) {
			continue
		}
		out = append(out, model.DayMood{Date: f.Date, Mood: f.Mood})
	}

	slices.SortFunc(out, func(a, b model.DayMood) int {
		return a.Date.DaysSince(b.Date)
	})
	return out
}

func inRange(d, from, to model.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}
