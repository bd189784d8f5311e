package store

import (
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
)

type UpsertEntryRequest struct {
	UID     string
	Date    model.Date
	Content string
	Mood    mood.Mood
}

type CreateDraftRequest struct {
	UID  string
	Date model.Date
}

type UpdateEntryRequest struct {
	ID      int64
	UID     string
	Content string
	Mood    mood.Mood
}

type GetEntryByDateRequest struct {
	UID  string
	Date model.Date
}

type GetEntryByIDRequest struct {
	ID  int64
	UID string
}

// ListEntriesRequest filters a user's entries. Zero-valued fields do not filter.
type ListEntriesRequest struct {
	UID   string
	Mood  mood.Mood
	Query string
	From  model.Date
	To    model.Date
	Tag   string
}

type GetEntryFactsRequest struct {
	UID  string
	From model.Date
	To   model.Date
}

type CreateTagRequest struct {
	EntryID int64
	Name    string
}

type ListTagsRequest struct {
	EntryIDs []int64
}

type DeleteTagRequest struct {
	EntryID int64
	TagID   int64
}

type CreateImageRequest struct {
	EntryID  int64
	FilePath string
	Caption  string
}

type ListImagesRequest struct {
	EntryID int64
}

type DeleteImageRequest struct {
	ImageID int64
	UID     string
}

type UpdateImageCaptionRequest struct {
	ImageID int64
	UID     string
	Caption string
}

type CreateUserRequest struct {
	UID          string
	Email        string
	Name         string
	PasswordHash string
}
