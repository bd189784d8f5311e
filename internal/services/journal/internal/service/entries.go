package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/fn"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
)

type SaveEntryRequest struct {
	UID     string
	Date    model.Date
	Content string `validate:"max=100000"`
	// Mood is a mood name in any case or its emoji. Empty means infer it from Content.
	Mood string
	// Tags are attached once the entry row exists, skipping names it already has.
	Tags []string `validate:"max=50,dive,max=64"`
}

// SaveEntry creates or overwrites the entry for (uid, date) and returns it as
// persisted, tags included. Future dates are rejected.
func (s *Journal) SaveEntry(ctx context.Context, r SaveEntryRequest) (model.Entry, error) {
	if err := requireUser(r.UID); err != nil {
		return model.Entry{}, err
	}
	if err := check(r); err != nil {
		return model.Entry{}, err
	}
	if err := s.checkDate(r.Date); err != nil {
		return model.Entry{}, err
	}

	m, err := resolveMood(r.Mood, r.Content)
	if err != nil {
		return model.Entry{}, err
	}

	var entry model.Entry
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		e, err := tx.UpsertEntry(ctx, store.UpsertEntryRequest{
			UID:     r.UID,
			Date:    r.Date,
			Content: r.Content,
			Mood:    m,
		})
		if err != nil {
			return fmt.Errorf("upsert entry: %w", err)
		}

		e.Tags, err = attachTags(ctx, tx, e.ID, r.Tags)
		if err != nil {
			return err
		}

		entry = e
		return nil
	})
	if err != nil {
		return model.Entry{}, classify("save entry", "entry", err)
	}

	s.owners.Set(entry.ID, r.UID)
	if err := s.entriesChanged(ctx, r.UID); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// CreateDraft returns the entry for (uid, date), creating an empty one when the
// day has none yet. It never overwrites saved content.
func (s *Journal) CreateDraft(ctx context.Context, uid string, date model.Date) (model.Entry, error) {
	if err := requireUser(uid); err != nil {
		return model.Entry{}, err
	}
	if err := s.checkDate(date); err != nil {
		return model.Entry{}, err
	}

	e, err := s.store.CreateDraft(ctx, store.CreateDraftRequest{UID: uid, Date: date})
	if err != nil {
		return model.Entry{}, classify("create draft", "entry", err)
	}
	s.owners.Set(e.ID, uid)

	if err := s.withTags(ctx, &e); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

// GetEntryByDate looks up the entry for (uid, date). A missing entry is reported
// through found, not as an error.
func (s *Journal) GetEntryByDate(ctx context.Context, uid string, date model.Date) (e model.Entry, found bool, err error) {
	if err := requireUser(uid); err != nil {
		return model.Entry{}, false, err
	}
	if date.IsZero() {
		return model.Entry{}, false, invalid("entry date is required")
	}

	e, err = s.store.GetEntryByDate(ctx, store.GetEntryByDateRequest{UID: uid, Date: date})
	return s.found(ctx, uid, e, err)
}

// GetEntry looks up an entry by id. Entries owned by someone else are reported
// as missing.
func (s *Journal) GetEntry(ctx context.Context, uid string, entryID int64) (e model.Entry, found bool, err error) {
	if err := requireUser(uid); err != nil {
		return model.Entry{}, false, err
	}

	e, err = s.store.GetEntryByID(ctx, store.GetEntryByIDRequest{ID: entryID, UID: uid})
	return s.found(ctx, uid, e, err)
}

func (s *Journal) found(ctx context.Context, uid string, e model.Entry, err error) (model.Entry, bool, error) {
	if errors.Is(err, store.ErrNotFound) {
		return model.Entry{}, false, nil
	}
	if err != nil {
		return model.Entry{}, false, storageErr("get entry", err)
	}

	s.owners.Set(e.ID, uid)
	if err := s.withTags(ctx, &e); err != nil {
		return model.Entry{}, false, err
	}
	return e, true, nil
}

type UpdateEntryRequest struct {
	UID     string
	EntryID int64
	Content string `validate:"max=100000"`
	Mood    string
}

// UpdateEntry rewrites content and mood of an entry the user owns, with the
// same mood rules as SaveEntry.
func (s *Journal) UpdateEntry(ctx context.Context, r UpdateEntryRequest) (model.Entry, error) {
	if err := requireUser(r.UID); err != nil {
		return model.Entry{}, err
	}
	if err := check(r); err != nil {
		return model.Entry{}, err
	}

	m, err := resolveMood(r.Mood, r.Content)
	if err != nil {
		return model.Entry{}, err
	}

	current, found, err := s.GetEntry(ctx, r.UID, r.EntryID)
	if err != nil {
		return model.Entry{}, err
	}
	if !found {
		return model.Entry{}, notFound("entry").With("entry_id", r.EntryID)
	}
	if err := s.checkDate(current.Date); err != nil {
		return model.Entry{}, err
	}

	e, err := s.store.UpdateEntry(ctx, store.UpdateEntryRequest{
		ID:      r.EntryID,
		UID:     r.UID,
		Content: r.Content,
		Mood:    m,
	})
	if err != nil {
		return model.Entry{}, classify("update entry", "entry", err)
	}
	e.Tags = current.Tags

	if err := s.entriesChanged(ctx, r.UID); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

type ListEntriesRequest struct {
	UID   string
	Mood  string
	Query string `validate:"max=200"`
	From  model.Date
	To    model.Date
	Tag   string `validate:"max=64"`
}

// ListEntries returns the user's entries matching every given filter, newest first.
func (s *Journal) ListEntries(ctx context.Context, r ListEntriesRequest) ([]model.Entry, error) {
	if err := requireUser(r.UID); err != nil {
		return nil, err
	}
	if err := check(r); err != nil {
		return nil, err
	}
	if err := checkRange(r.From, r.To); err != nil {
		return nil, err
	}

	var m mood.Mood
	if strings.TrimSpace(r.Mood) != "" {
		var ok bool
		if m, ok = mood.Parse(r.Mood); !ok {
			return nil, invalid("unknown mood %q", r.Mood)
		}
	}

	entries, err := s.store.ListEntries(ctx, store.ListEntriesRequest{
		UID:   r.UID,
		Mood:  m,
		Query: strings.TrimSpace(r.Query),
		From:  r.From,
		To:    r.To,
		Tag:   r.Tag,
	})
	if err != nil {
		return nil, storageErr("list entries", err)
	}
	if len(entries) == 0 {
		return []model.Entry{}, nil
	}

	tags, err := s.store.ListTags(ctx, store.ListTagsRequest{
		EntryIDs: fn.Map(entries, func(e model.Entry) int64 { return e.ID }),
	})
	if err != nil {
		return nil, storageErr("list tags", err)
	}

	byEntry := fn.GroupBy(tags, func(t model.Tag) int64 { return t.EntryID })
	for i := range entries {
		entries[i].Tags = byEntry[entries[i].ID]
		s.owners.Set(entries[i].ID, r.UID)
	}
	return entries, nil
}

func (s *Journal) withTags(ctx context.Context, e *model.Entry) error {
	tags, err := s.store.ListTags(ctx, store.ListTagsRequest{EntryIDs: []int64{e.ID}})
	if err != nil {
		return storageErr("list tags", err)
	}
	e.Tags = tags
	return nil
}

// entriesChanged runs after a committed write to the user's entries so the next
// summary read sees it.
func (s *Journal) entriesChanged(ctx context.Context, uid string) error {
	if err := s.summaries.Invalidate(ctx, uid); err != nil {
		return storageErr("invalidate monthly summary", err)
	}
	return nil
}

// resolveMood picks the explicit mood when given, otherwise infers one from
// content. A save with neither is rejected.
func resolveMood(raw, content string) (mood.Mood, error) {
	if strings.TrimSpace(raw) != "" {
		m, ok := mood.Parse(raw)
		if !ok {
			return "", invalid("unknown mood %q", raw)
		}
		return m, nil
	}

	if strings.TrimSpace(content) == "" {
		return "", invalid("an entry needs content or a mood")
	}
	return mood.FromText(content), nil
}

func checkRange(from, to model.Date) error {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return invalid("range start is after its end").
			With("from", from).
			With("to", to)
	}
	return nil
}
