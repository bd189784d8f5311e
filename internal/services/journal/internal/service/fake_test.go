package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/blob"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// memStore is an in-memory store.Store. Set fail[method] to make a method error.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]model.Entry
	tags    map[int64]model.Tag
	images  map[int64]model.Image
	users   map[string]model.User
	fail    map[string]error
	calls   map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[int64]model.Entry),
		tags:    make(map[int64]model.Tag),
		images:  make(map[int64]model.Image),
		users:   make(map[string]model.User),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (m *memStore) enter(method string) error {
	m.mu.Lock()
	m.calls[method]++
	return m.fail[method]
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) byDate(uid string, d model.Date) (model.Entry, bool) {
	for _, e := range m.entries {
		if e.UID == uid && e.Date.Equal(d) {
			return e, true
		}
	}
	return model.Entry{}, false
}

func (m *memStore) UpsertEntry(_ context.Context, r store.UpsertEntryRequest) (model.Entry, error) {
	err := m.enter("UpsertEntry")
	defer m.mu.Unlock()
	if err != nil {
		return model.Entry{}, err
	}

	now := time.Now()
	e, ok := m.byDate(r.UID, r.Date)
	if !ok {
		e = model.Entry{ID: m.id(), UID: r.UID, Date: r.Date}
		e.CreatedAt = now
	}
	e.Content = r.Content
	e.Mood = r.Mood
	e.UpdatedAt = now
	m.entries[e.ID] = e
	return e, nil
}

func (m *memStore) CreateDraft(_ context.Context, r store.CreateDraftRequest) (model.Entry, error) {
	err := m.enter("CreateDraft")
	defer m.mu.Unlock()
	if err != nil {
		return model.Entry{}, err
	}

	if e, ok := m.byDate(r.UID, r.Date); ok {
		return e, nil
	}
	e := model.Entry{ID: m.id(), UID: r.UID, Date: r.Date}
	m.entries[e.ID] = e
	return e, nil
}

func (m *memStore) UpdateEntry(_ context.Context, r store.UpdateEntryRequest) (model.Entry, error) {
	err := m.enter("UpdateEntry")
	defer m.mu.Unlock()
	if err != nil {
		return model.Entry{}, err
	}

	e, ok := m.entries[r.ID]
	if !ok || e.UID != r.UID {
		return model.Entry{}, store.ErrNotFound
	}
	e.Content = r.Content
	e.Mood = r.Mood
	e.UpdatedAt = time.Now()
	m.entries[e.ID] = e
	return e, nil
}

func (m *memStore) GetEntryByDate(_ context.Context, r store.GetEntryByDateRequest) (model.Entry, error) {
	err := m.enter("GetEntryByDate")
	defer m.mu.Unlock()
	if err != nil {
		return model.Entry{}, err
	}

	if e, ok := m.byDate(r.UID, r.Date); ok {
		return e, nil
	}
	return model.Entry{}, store.ErrNotFound
}

func (m *memStore) GetEntryByID(_ context.Context, r store.GetEntryByIDRequest) (model.Entry, error) {
	err := m.enter("GetEntryByID")
	defer m.mu.Unlock()
	if err != nil {
		return model.Entry{}, err
	}

	e, ok := m.entries[r.ID]
	if !ok || e.UID != r.UID {
		return model.Entry{}, store.ErrNotFound
	}
	return e, nil
}

func (m *memStore) GetEntryOwner(_ context.Context, entryID int64) (string, error) {
	err := m.enter("GetEntryOwner")
	defer m.mu.Unlock()
	if err != nil {
		return "", err
	}

	e, ok := m.entries[entryID]
	if !ok {
		return "", store.ErrNotFound
	}
	return e.UID, nil
}

func (m *memStore) LockEntry(_ context.Context, entryID int64) error {
	err := m.enter("LockEntry")
	defer m.mu.Unlock()
	if err != nil {
		return err
	}

	if _, ok := m.entries[entryID]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (m *memStore) ListEntries(_ context.Context, r store.ListEntriesRequest) ([]model.Entry, error) {
	err := m.enter("ListEntries")
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []model.Entry
	for _, e := range m.entries {
		switch {
		case e.UID != r.UID:
		case r.Mood != "" && e.Mood != r.Mood:
		case r.Query != "" && !strings.Contains(strings.ToLower(e.Content), strings.ToLower(r.Query)):
		case !r.From.IsZero() && e.Date.Before(r.From):
		case !r.To.IsZero() && e.Date.After(r.To):
		case r.Tag != "" && !m.hasTag(e.ID, r.Tag):
		default:
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b model.Entry) int { return b.Date.DaysSince(a.Date) })
	return out, nil
}

func (m *memStore) hasTag(entryID int64, name string) bool {
	for _, t := range m.tags {
		if t.EntryID == entryID && t.Name == name {
			return true
		}
	}
	return false
}

func (m *memStore) GetEntryFacts(_ context.Context, r store.GetEntryFactsRequest) ([]model.EntryFacts, error) {
	err := m.enter("GetEntryFacts")
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []model.EntryFacts
	for _, e := range m.entries {
		if e.UID != r.UID {
			continue
		}
		if (!r.From.IsZero() && e.Date.Before(r.From)) || (!r.To.IsZero() && e.Date.After(r.To)) {
			continue
		}
		out = append(out, model.EntryFacts{Date: e.Date, Mood: e.Mood, Length: len([]rune(e.Content))})
	}
	return out, nil
}

func (m *memStore) CreateTag(_ context.Context, r store.CreateTagRequest) (model.Tag, error) {
	err := m.enter("CreateTag")
	defer m.mu.Unlock()
	if err != nil {
		return model.Tag{}, err
	}

	if _, ok := m.entries[r.EntryID]; !ok {
		return model.Tag{}, store.ErrNotFound
	}
	t := model.Tag{ID: m.id(), EntryID: r.EntryID, Name: r.Name, CreatedAt: time.Now()}
	m.tags[t.ID] = t
	return t, nil
}

func (m *memStore) ListTags(_ context.Context, r store.ListTagsRequest) ([]model.Tag, error) {
	err := m.enter("ListTags")
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []model.Tag
	for _, t := range m.tags {
		if slices.Contains(r.EntryIDs, t.EntryID) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b model.Tag) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *memStore) DeleteTag(_ context.Context, r store.DeleteTagRequest) error {
	err := m.enter("DeleteTag")
	defer m.mu.Unlock()
	if err != nil {
		return err
	}

	t, ok := m.tags[r.TagID]
	if !ok || t.EntryID != r.EntryID {
		return store.ErrNotFound
	}
	delete(m.tags, r.TagID)
	return nil
}

func (m *memStore) CreateImage(_ context.Context, r store.CreateImageRequest) (model.Image, error) {
	err := m.enter("CreateImage")
	defer m.mu.Unlock()
	if err != nil {
		return model.Image{}, err
	}

	if _, ok := m.entries[r.EntryID]; !ok {
		return model.Image{}, store.ErrNotFound
	}
	img := model.Image{ID: m.id(), EntryID: r.EntryID, FilePath: r.FilePath, Caption: r.Caption, CreatedAt: time.Now()}
	m.images[img.ID] = img
	return img, nil
}

func (m *memStore) ListImages(_ context.Context, r store.ListImagesRequest) ([]model.Image, error) {
	err := m.enter("ListImages")
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []model.Image
	for _, img := range m.images {
		if img.EntryID == r.EntryID {
			out = append(out, img)
		}
	}
	slices.SortFunc(out, func(a, b model.Image) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *memStore) ownedImage(imageID int64, uid string) (model.Image, bool) {
	img, ok := m.images[imageID]
	if !ok || m.entries[img.EntryID].UID != uid {
		return model.Image{}, false
	}
	return img, true
}

func (m *memStore) DeleteImage(_ context.Context, r store.DeleteImageRequest) (model.Image, error) {
	err := m.enter("DeleteImage")
	defer m.mu.Unlock()
	if err != nil {
		return model.Image{}, err
	}

	img, ok := m.ownedImage(r.ImageID, r.UID)
	if !ok {
		return model.Image{}, store.ErrNotFound
	}
	delete(m.images, img.ID)
	return img, nil
}

func (m *memStore) UpdateImageCaption(_ context.Context, r store.UpdateImageCaptionRequest) (model.Image, error) {
	err := m.enter("UpdateImageCaption")
	defer m.mu.Unlock()
	if err != nil {
		return model.Image{}, err
	}

	img, ok := m.ownedImage(r.ImageID, r.UID)
	if !ok {
		return model.Image{}, store.ErrNotFound
	}
	img.Caption = r.Caption
	m.images[img.ID] = img
	return img, nil
}

func (m *memStore) CreateUser(_ context.Context, r store.CreateUserRequest) (model.User, error) {
	err := m.enter("CreateUser")
	defer m.mu.Unlock()
	if err != nil {
		return model.User{}, err
	}

	if _, ok := m.users[r.Email]; ok {
		return model.User{}, store.ErrExists
	}
	u := model.User{UID: r.UID, Email: r.Email, Name: r.Name, PasswordHash: r.PasswordHash}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[r.Email] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	err := m.enter("GetUserByEmail")
	defer m.mu.Unlock()
	if err != nil {
		return model.User{}, err
	}

	u, ok := m.users[email]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memStore) WithTx(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *memStore) count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// memBlobs is an in-memory blob.Store.
type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (b *memBlobs) Put(_ context.Context, path string, r io.Reader) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[path]; ok {
		return blob.ErrExists
	}
	b.objects[path] = data
	return nil
}

func (b *memBlobs) Delete(_ context.Context, path string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, path)
	return nil
}

func (b *memBlobs) URL(path string) string {
	return "http://img.test/" + path
}

func (b *memBlobs) has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[path]
	return ok
}

func (b *memBlobs) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// fixedNow is 2024-03-10 12:00 in the reference zone.
var fixedNow = time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)

func newJournal(t *testing.T, opts ...Option) (*Journal, *memStore, *memBlobs) {
	t.Helper()

	st := newMemStore()
	blobs := newMemBlobs()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewJournal(st, blobs, opts...), st, blobs
}

func day(s string) model.Date {
	return model.MustParseDate(s)
}

// requireKind asserts err is a ServiceError of the given kind and status.
func requireKind(t *testing.T, err error, kind error, status int) {
	t.Helper()

	require.ErrorIs(t, err, kind)
	var se *serr.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, status, se.StatusCode)
}
