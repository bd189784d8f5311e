package store

import (
	"context"
	"errors"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Store persists users, entries, tags and image metadata. Lookups that miss
// return ErrNotFound; ownership filters make another user's rows look missing.
type Store interface {
	UpsertEntry(ctx context.Context, r UpsertEntryRequest) (model.Entry, error)
	CreateDraft(ctx context.Context, r CreateDraftRequest) (model.Entry, error)
	UpdateEntry(ctx context.Context, r UpdateEntryRequest) (model.Entry, error)
	GetEntryByDate(ctx context.Context, r GetEntryByDateRequest) (model.Entry, error)
	GetEntryByID(ctx context.Context, r GetEntryByIDRequest) (model.Entry, error)
	GetEntryOwner(ctx context.Context, entryID int64) (string, error)
	// LockEntry holds a row lock on the entry until the surrounding transaction ends.
	LockEntry(ctx context.Context, entryID int64) error
	ListEntries(ctx context.Context, r ListEntriesRequest) ([]model.Entry, error)
	GetEntryFacts(ctx context.Context, r GetEntryFactsRequest) ([]model.EntryFacts, error)

	CreateTag(ctx context.Context, r CreateTagRequest) (model.Tag, error)
	ListTags(ctx context.Context, r ListTagsRequest) ([]model.Tag, error)
	DeleteTag(ctx context.Context, r DeleteTagRequest) error

	CreateImage(ctx context.Context, r CreateImageRequest) (model.Image, error)
	ListImages(ctx context.Context, r ListImagesRequest) ([]model.Image, error)
	DeleteImage(ctx context.Context, r DeleteImageRequest) (model.Image, error)
	UpdateImageCaption(ctx context.Context, r UpdateImageCaptionRequest) (model.Image, error)

	CreateUser(ctx context.Context, r CreateUserRequest) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	WithTx(ctx context.Context, fn func(tx Store) error) error
}
