package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
	"github.com/Sehgal-Arjun/Lucid/internal/pkg/testutil"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUID = "user-1"

type errorResponse struct {
	Error string `json:"error"`
}

func TestPUTDay(t *testing.T) {
	srv := &mockJournal{
		SaveEntryFunc: func(ctx context.Context, r service.SaveEntryRequest) (model.Entry, error) {
			assert.Equal(t, testUID, r.UID)
			assert.Equal(t, model.MustParseDate("2024-03-09"), r.Date)
			assert.Equal(t, "calm morning", r.Content)
			assert.Equal(t, "peaceful", r.Mood)
			assert.Equal(t, []string{"walk"}, r.Tags)
			return model.Entry{ID: 7, UID: r.UID, Date: r.Date, Content: r.Content, Mood: mood.Peaceful}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "PUT", "/days/2024-03-09", saveDayRequest{
		Content: "calm morning",
		Mood:    "peaceful",
		Tags:    []string{"walk"},
	}, testutil.AsUser(testUID))

	require.Equal(t, http.StatusOK, rec.Code)
	e := testutil.ParseResponse[model.Entry](t, rec)
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, mood.Peaceful, e.Mood)
}

func TestPUTDay_FutureDate(t *testing.T) {
	srv := &mockJournal{
		SaveEntryFunc: func(ctx context.Context, r service.SaveEntryRequest) (model.Entry, error) {
			return model.Entry{}, serr.NewServiceError(service.ErrFutureDate, http.StatusUnprocessableEntity, "entries can only be written for today or earlier")
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "PUT", "/days/2099-01-01", saveDayRequest{Content: "later"}, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := testutil.ParseResponse[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "today or earlier")
}

func TestPUTDay_InvalidDate(t *testing.T) {
	api := NewAPI(WithJournalService(&mockJournal{}))

	rec := testutil.SendRequest(t, api, "PUT", "/days/yesterday", saveDayRequest{}, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPUTDay_InvalidBody(t *testing.T) {
	api := NewAPI(WithJournalService(&mockJournal{}))

	rec := testutil.SendRequest(t, api, "PUT", "/days/2024-03-09", "not an object", testutil.AsUser(testUID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := testutil.ParseResponse[errorResponse](t, rec)
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestGETDay(t *testing.T) {
	srv := &mockJournal{
		GetEntryByDateFunc: func(ctx context.Context, uid string, date model.Date) (model.Entry, bool, error) {
			if date.String() == "2024-03-09" {
				return model.Entry{ID: 3, UID: uid, Date: date, Content: "hi"}, true, nil
			}
			return model.Entry{}, false, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	t.Run("found", func(t *testing.T) {
		rec := testutil.SendRequest(t, api, "GET", "/days/2024-03-09", nil, testutil.AsUser(testUID))
		require.Equal(t, http.StatusOK, rec.Code)
		e := testutil.ParseResponse[model.Entry](t, rec)
		assert.Equal(t, "hi", e.Content)
	})

	t.Run("absent", func(t *testing.T) {
		rec := testutil.SendRequest(t, api, "GET", "/days/2024-03-08", nil, testutil.AsUser(testUID))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGETDay_RFC3339InJournalZone(t *testing.T) {
	var got model.Date
	srv := &mockJournal{
		GetEntryByDateFunc: func(ctx context.Context, uid string, date model.Date) (model.Entry, bool, error) {
			got = date
			return model.Entry{}, false, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	testutil.SendRequest(t, api, "GET", "/days/2024-03-10T03:00:00Z", nil, testutil.AsUser(testUID))

	assert.Equal(t, "2024-03-09", got.String())
}

func TestPOSTDraft(t *testing.T) {
	srv := &mockJournal{
		CreateDraftFunc: func(ctx context.Context, uid string, date model.Date) (model.Entry, error) {
			return model.Entry{ID: 11, UID: uid, Date: date}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "POST", "/days/2024-03-09/draft", nil, testutil.AsUser(testUID))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := testutil.ParseResponse[draftResponse](t, rec)
	assert.Equal(t, int64(11), resp.EntryID)
	assert.True(t, resp.Entry.IsDraft())
}

func TestGETEntries(t *testing.T) {
	srv := &mockJournal{
		ListEntriesFunc: func(ctx context.Context, r service.ListEntriesRequest) ([]model.Entry, error) {
			assert.Equal(t, "Sad", r.Mood)
			assert.Equal(t, "rain", r.Query)
			assert.Equal(t, "work", r.Tag)
			assert.Equal(t, "2024-01-01", r.From.String())
			assert.Equal(t, "2024-01-31", r.To.String())
			return []model.Entry{{ID: 1}, {ID: 2}}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/entries?mood=Sad&q=rain&tag=work&from=2024-01-01&to=2024-01-31", nil, testutil.AsUser(testUID))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := testutil.ParseResponse[entriesResponse](t, rec)
	assert.Len(t, resp.Entries, 2)
}

func TestGETEntries_InvalidRange(t *testing.T) {
	api := NewAPI(WithJournalService(&mockJournal{}))

	rec := testutil.SendRequest(t, api, "GET", "/entries?from=01/01/2024", nil, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := testutil.ParseResponse[errorResponse](t, rec)
	assert.Contains(t, resp.Error, "invalid from date")
}

func TestGETEntry_InvalidID(t *testing.T) {
	api := NewAPI(WithJournalService(&mockJournal{}))

	rec := testutil.SendRequest(t, api, "GET", "/entries/abc", nil, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := testutil.ParseResponse[errorResponse](t, rec)
	assert.Equal(t, "invalid entry_id parameter", resp.Error)
}

func TestGETEntry_NotFound(t *testing.T) {
	srv := &mockJournal{
		GetEntryFunc: func(ctx context.Context, uid string, entryID int64) (model.Entry, bool, error) {
			return model.Entry{}, false, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/entries/5", nil, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPATCHEntry(t *testing.T) {
	srv := &mockJournal{
		UpdateEntryFunc: func(ctx context.Context, r service.UpdateEntryRequest) (model.Entry, error) {
			assert.Equal(t, int64(5), r.EntryID)
			return model.Entry{ID: r.EntryID, Content: r.Content, Mood: mood.Tired}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "PATCH", "/entries/5", updateEntryRequest{Content: "long day", Mood: "tired"}, testutil.AsUser(testUID))

	require.Equal(t, http.StatusOK, rec.Code)
	e := testutil.ParseResponse[model.Entry](t, rec)
	assert.Equal(t, "long day", e.Content)
}

func TestTags(t *testing.T) {
	tags := []model.Tag{{ID: 1, EntryID: 5, Name: "work"}}
	srv := &mockJournal{
		ListTagsFunc: func(ctx context.Context, uid string, entryID int64) ([]model.Tag, error) {
			return tags, nil
		},
		AddTagFunc: func(ctx context.Context, r service.AddTagRequest) (model.Tag, []model.Tag, error) {
			tag := model.Tag{ID: 2, EntryID: r.EntryID, Name: r.Name}
			return tag, append(tags, tag), nil
		},
		RemoveTagFunc: func(ctx context.Context, uid string, entryID, tagID int64) ([]model.Tag, error) {
			assert.Equal(t, int64(1), tagID)
			return []model.Tag{}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/entries/5/tags", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.ParseResponse[tagsResponse](t, rec).Tags, 1)

	rec = testutil.SendRequest(t, api, "POST", "/entries/5/tags", addTagRequest{Name: "gym"}, testutil.AsUser(testUID))
	require.Equal(t, http.StatusCreated, rec.Code)
	added := testutil.ParseResponse[tagsResponse](t, rec)
	require.NotNil(t, added.Tag)
	assert.Equal(t, "gym", added.Tag.Name)
	assert.Len(t, added.Tags, 2)

	rec = testutil.SendRequest(t, api, "DELETE", "/entries/5/tags/1", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, testutil.ParseResponse[tagsResponse](t, rec).Tags)
}

func TestTags_NotOwned(t *testing.T) {
	srv := &mockJournal{
		ListTagsFunc: func(ctx context.Context, uid string, entryID int64) ([]model.Tag, error) {
			return nil, serr.NewServiceError(service.ErrNotFoundOrDenied, http.StatusNotFound, "entry not found")
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/entries/9/tags", nil, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPOSTImage(t *testing.T) {
	srv := &mockJournal{
		UploadImageFunc: func(ctx context.Context, r service.UploadImageRequest) (model.Image, error) {
			assert.Equal(t, "beach.png", r.FileName)
			assert.Equal(t, "sunset", r.Caption)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "png bytes", string(body))
			return model.Image{ID: 4, EntryID: r.EntryID, FilePath: "user_user-1/1_beach.png", Caption: r.Caption, URL: "http://img/user_user-1/1_beach.png"}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendFile(t, api, "POST", "/entries/5/images", testutil.TestFile{
		Name:      "beach.png",
		FieldName: "image",
		Content:   strings.NewReader("png bytes"),
		Fields:    map[string]string{"caption": "sunset"},
	}, testutil.AsUser(testUID))

	require.Equal(t, http.StatusCreated, rec.Code)
	img := testutil.ParseResponse[model.Image](t, rec)
	assert.Equal(t, int64(4), img.ID)
	assert.Equal(t, "http://img/user_user-1/1_beach.png", img.URL)
}

func TestPOSTImage_TooLarge(t *testing.T) {
	api := NewAPI(WithJournalService(&mockJournal{}), WithMaxImageSize(16))

	rec := testutil.SendFile(t, api, "POST", "/entries/5/images", testutil.TestFile{
		Name:      "big.png",
		FieldName: "image",
		Content:   bytes.NewReader(make([]byte, 16+multipartOverhead)),
	}, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPOSTImage_MissingFile(t *testing.T) {
	api := NewAPI(WithJournalService(&mockJournal{}))

	rec := testutil.SendFile(t, api, "POST", "/entries/5/images", testutil.TestFile{
		Name:      "a.png",
		FieldName: "photo",
		Content:   strings.NewReader("x"),
	}, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImages(t *testing.T) {
	var deleted int64
	srv := &mockJournal{
		ListImagesFunc: func(ctx context.Context, uid string, entryID int64) ([]model.Image, error) {
			return []model.Image{{ID: 1}, {ID: 2}}, nil
		},
		UpdateCaptionFunc: func(ctx context.Context, r service.UpdateCaptionRequest) (model.Image, error) {
			return model.Image{ID: r.ImageID, Caption: r.Caption}, nil
		},
		DeleteImageFunc: func(ctx context.Context, uid string, imageID int64) error {
			deleted = imageID
			return nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/entries/5/images", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.ParseResponse[imagesResponse](t, rec).Images, 2)

	rec = testutil.SendRequest(t, api, "PATCH", "/images/2", updateCaptionRequest{Caption: "new"}, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", testutil.ParseResponse[model.Image](t, rec).Caption)

	rec = testutil.SendRequest(t, api, "DELETE", "/images/2", nil, testutil.AsUser(testUID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(2), deleted)
}

func TestStats(t *testing.T) {
	srv := &mockJournal{
		StatsFunc: func(ctx context.Context, uid string) (model.Stats, error) {
			return model.Stats{CurrentStreak: 2, LongestStreak: 5, TotalEntries: 9}, nil
		},
		CurrentStreakFunc:      func(ctx context.Context, uid string) (int, error) { return 2, nil },
		LongestStreakFunc:      func(ctx context.Context, uid string) (int, error) { return 5, nil },
		LongestHappyStreakFunc: func(ctx context.Context, uid string) (int, error) { return 3, nil },
		MostCommonMoodFunc: func(ctx context.Context, uid string) (model.MoodCount, bool, error) {
			return model.MoodCount{}, false, nil
		},
		TotalEntriesFunc:   func(ctx context.Context, uid string) (int, error) { return 9, nil },
		AvgEntryLengthFunc: func(ctx context.Context, uid string) (float64, error) { return 12.5, nil },
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/stats", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := testutil.ParseResponse[model.Stats](t, rec)
	assert.Equal(t, 5, stats.LongestStreak)
	assert.Nil(t, stats.MostCommonMood)

	for path, want := range map[string]int{
		"/stats/current-streak":       2,
		"/stats/longest-streak":       5,
		"/stats/longest-happy-streak": 3,
	} {
		t.Run(path, func(t *testing.T) {
			rec := testutil.SendRequest(t, api, "GET", path, nil, testutil.AsUser(testUID))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, want, testutil.ParseResponse[streakResponse](t, rec).Days)
		})
	}

	rec = testutil.SendRequest(t, api, "GET", "/stats/most-common-mood", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"most_common_mood":null}`, rec.Body.String())

	rec = testutil.SendRequest(t, api, "GET", "/stats/total-entries", nil, testutil.AsUser(testUID))
	assert.JSONEq(t, `{"total_entries":9}`, rec.Body.String())

	rec = testutil.SendRequest(t, api, "GET", "/stats/avg-entry-length", nil, testutil.AsUser(testUID))
	assert.JSONEq(t, `{"avg_entry_length":12.5}`, rec.Body.String())
}

func TestMonthlySummaryAndCalendar(t *testing.T) {
	srv := &mockJournal{
		MonthlyMoodSummaryFunc: func(ctx context.Context, uid string, from, to model.Date) ([]model.MonthlyMoodCount, error) {
			assert.Equal(t, "2024-01-01", from.String())
			assert.True(t, to.IsZero())
			return []model.MonthlyMoodCount{{Month: "2024-01", Mood: mood.Happy, Count: 3}}, nil
		},
		MoodCalendarFunc: func(ctx context.Context, uid string, from, to model.Date) ([]model.DayMood, error) {
			return []model.DayMood{{Date: model.MustParseDate("2024-01-02"), Mood: mood.Sad}}, nil
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/stats/monthly?from=2024-01-01", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	months := testutil.ParseResponse[monthlySummaryResponse](t, rec).Months
	require.Len(t, months, 1)
	assert.Equal(t, 3, months[0].Count)

	rec = testutil.SendRequest(t, api, "GET", "/calendar?from=2024-01-01&to=2024-01-31", nil, testutil.AsUser(testUID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"days":[{"date":"2024-01-02","mood":"Sad"}]}`, rec.Body.String())
}

func TestStorageErrorIsOpaque(t *testing.T) {
	srv := &mockJournal{
		TotalEntriesFunc: func(ctx context.Context, uid string) (int, error) {
			return 0, errors.New("pq: connection refused")
		},
	}
	api := NewAPI(WithJournalService(srv))

	rec := testutil.SendRequest(t, api, "GET", "/stats/total-entries", nil, testutil.AsUser(testUID))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestNewAPI_RequiresService(t *testing.T) {
	assert.Panics(t, func() { NewAPI() })
}
