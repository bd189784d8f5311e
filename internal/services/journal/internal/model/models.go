package model

import (
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
)

type Model struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	Model
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// Entry is one journal record for one user on one calendar day.
type Entry struct {
	Model
	ID      int64     `json:"entry_id"`
	UID     string    `json:"uid"`
	Date    Date      `json:"entry_date"`
	Content string    `json:"content"`
	Mood    mood.Mood `json:"mood,omitempty"`
	Tags    []Tag     `json:"tags,omitempty"`
}

// IsDraft reports whether the entry was created without any content or mood.
func (e Entry) IsDraft() bool {
	return e.Content == "" && e.Mood == ""
}

type Tag struct {
	ID        int64     `json:"tag_id"`
	EntryID   int64     `json:"entry_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Image struct {
	ID        int64     `json:"image_id"`
	EntryID   int64     `json:"entry_id"`
	FilePath  string    `json:"file_path"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryFacts is the slice of an entry the statistics are computed from.
type EntryFacts struct {
	Date   Date
	Mood   mood.Mood
	Length int
}

type MoodCount struct {
	Mood  mood.Mood `json:"mood"`
	Count int       `json:"count"`
}

type MonthlyMoodCount struct {
	Month string    `json:"month"`
	Mood  mood.Mood `json:"mood"`
	Count int       `json:"count"`
}

type DayMood struct {
	Date Date      `json:"date"`
	Mood mood.Mood `json:"mood"`
}

type Stats struct {
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LongestHappyStreak int        `json:"longest_happy_streak"`
	MostCommonMood     *MoodCount `json:"most_common_mood"`
	TotalEntries       int        `json:"total_entries"`
	AvgEntryLength     float64    `json:"avg_entry_length"`
}
