package rest

import (
	"context"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/service"
)

type mockJournal struct {
	SaveEntryFunc          func(ctx context.Context, r service.SaveEntryRequest) (model.Entry, error)
	CreateDraftFunc        func(ctx context.Context, uid string, date model.Date) (model.Entry, error)
	GetEntryByDateFunc     func(ctx context.Context, uid string, date model.Date) (model.Entry, bool, error)
	GetEntryFunc           func(ctx context.Context, uid string, entryID int64) (model.Entry, bool, error)
	UpdateEntryFunc        func(ctx context.Context, r service.UpdateEntryRequest) (model.Entry, error)
	ListEntriesFunc        func(ctx context.Context, r service.ListEntriesRequest) ([]model.Entry, error)
	ListTagsFunc           func(ctx context.Context, uid string, entryID int64) ([]model.Tag, error)
	AddTagFunc             func(ctx context.Context, r service.AddTagRequest) (model.Tag, []model.Tag, error)
	RemoveTagFunc          func(ctx context.Context, uid string, entryID, tagID int64) ([]model.Tag, error)
	UploadImageFunc        func(ctx context.Context, r service.UploadImageRequest) (model.Image, error)
	ListImagesFunc         func(ctx context.Context, uid string, entryID int64) ([]model.Image, error)
	DeleteImageFunc        func(ctx context.Context, uid string, imageID int64) error
	UpdateCaptionFunc      func(ctx context.Context, r service.UpdateCaptionRequest) (model.Image, error)
	CurrentStreakFunc      func(ctx context.Context, uid string) (int, error)
	LongestStreakFunc      func(ctx context.Context, uid string) (int, error)
	LongestHappyStreakFunc func(ctx context.Context, uid string) (int, error)
	MostCommonMoodFunc     func(ctx context.Context, uid string) (model.MoodCount, bool, error)
	TotalEntriesFunc       func(ctx context.Context, uid string) (int, error)
	AvgEntryLengthFunc     func(ctx context.Context, uid string) (float64, error)
	StatsFunc              func(ctx context.Context, uid string) (model.Stats, error)
	MonthlyMoodSummaryFunc func(ctx context.Context, uid string, from, to model.Date) ([]model.MonthlyMoodCount, error)
	MoodCalendarFunc       func(ctx context.Context, uid string, from, to model.Date) ([]model.DayMood, error)
}

func (m *mockJournal) Location() *time.Location {
	return service.DefaultLocation
}

func (m *mockJournal) SaveEntry(ctx context.Context, r service.SaveEntryRequest) (model.Entry, error) {
	return m.SaveEntryFunc(ctx, r)
}

func (m *mockJournal) CreateDraft(ctx context.Context, uid string, date model.Date) (model.Entry, error) {
	return m.CreateDraftFunc(ctx, uid, date)
}

func (m *mockJournal) GetEntryByDate(ctx context.Context, uid string, date model.Date) (model.Entry, bool, error) {
	return m.GetEntryByDateFunc(ctx, uid, date)
}

func (m *mockJournal) GetEntry(ctx context.Context, uid string, entryID int64) (model.Entry, bool, error) {
	return m.GetEntryFunc(ctx, uid, entryID)
}

func (m *mockJournal) UpdateEntry(ctx context.Context, r service.UpdateEntryRequest) (model.Entry, error) {
	return m.UpdateEntryFunc(ctx, r)
}

func (m *mockJournal) ListEntries(ctx context.Context, r service.ListEntriesRequest) ([]model.Entry, error) {
	return m.ListEntriesFunc(ctx, r)
}

func (m *mockJournal) ListTags(ctx context.Context, uid string, entryID int64) ([]model.Tag, error) {
	return m.ListTagsFunc(ctx, uid, entryID)
}

func (m *mockJournal) AddTag(ctx context.Context, r service.AddTagRequest) (model.Tag, []model.Tag, error) {
	return m.AddTagFunc(ctx, r)
}

func (m *mockJournal) RemoveTag(ctx context.Context, uid string, entryID, tagID int64) ([]model.Tag, error) {
	return m.RemoveTagFunc(ctx, uid, entryID, tagID)
}

func (m *mockJournal) UploadImage(ctx context.Context, r service.UploadImageRequest) (model.Image, error) {
	return m.UploadImageFunc(ctx, r)
}

func (m *mockJournal) ListImages(ctx context.Context, uid string, entryID int64) ([]model.Image, error) {
	return m.ListImagesFunc(ctx, uid, entryID)
}

func (m *mockJournal) DeleteImage(ctx context.Context, uid string, imageID int64) error {
	return m.DeleteImageFunc(ctx, uid, imageID)
}

func (m *mockJournal) UpdateCaption(ctx context.Context, r service.UpdateCaptionRequest) (model.Image, error) {
	return m.UpdateCaptionFunc(ctx, r)
}

func (m *mockJournal) CurrentStreak(ctx context.Context, uid string) (int, error) {
	return m.CurrentStreakFunc(ctx, uid)
}

func (m *mockJournal) LongestStreak(ctx context.Context, uid string) (int, error) {
	return m.LongestStreakFunc(ctx, uid)
}

func (m *mockJournal) LongestHappyStreak(ctx context.Context, uid string) (int, error) {
	return m.LongestHappyStreakFunc(ctx, uid)
}

func (m *mockJournal) MostCommonMood(ctx context.Context, uid string) (model.MoodCount, bool, error) {
	return m.MostCommonMoodFunc(ctx, uid)
}

func (m *mockJournal) TotalEntries(ctx context.Context, uid string) (int, error) {
	return m.TotalEntriesFunc(ctx, uid)
}

func (m *mockJournal) AvgEntryLength(ctx context.Context, uid string) (float64, error) {
	return m.AvgEntryLengthFunc(ctx, uid)
}

func (m *mockJournal) Stats(ctx context.Context, uid string) (model.Stats, error) {
	return m.StatsFunc(ctx, uid)
}

func (m *mockJournal) MonthlyMoodSummary(ctx context.Context, uid string, from, to model.Date) ([]model.MonthlyMoodCount, error) {
	return m.MonthlyMoodSummaryFunc(ctx, uid, from, to)
}

func (m *mockJournal) MoodCalendar(ctx context.Context, uid string, from, to model.Date) ([]model.DayMood, error) {
	return m.MoodCalendarFunc(ctx, uid, from, to)
}

type mockUsers struct {
	SignUpFunc func(ctx context.Context, r service.SignUpRequest) (model.User, error)
	LoginFunc  func(ctx context.Context, r service.LoginRequest) (service.Session, error)
}

func (m *mockUsers) SignUp(ctx context.Context, r service.SignUpRequest) (model.User, error) {
	return m.SignUpFunc(ctx, r)
}

func (m *mockUsers) Login(ctx context.Context, r service.LoginRequest) (service.Session, error) {
	return m.LoginFunc(ctx, r)
}
