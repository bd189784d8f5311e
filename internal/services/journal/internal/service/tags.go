package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
)

// ownEntry fails with ErrNotFoundOrDenied unless uid owns entryID.
func (s *Journal) ownEntry(ctx context.Context, uid string, entryID int64) error {
	owner, ok := s.owners.Get(entryID)
	if !ok {
		var err error
		owner, err = s.store.GetEntryOwner(ctx, entryID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound("entry").With("entry_id", entryID)
			}
			return storageErr("get entry owner", err)
		}
		s.owners.Set(entryID, owner)
	}

	if owner != uid {
		return notFound("entry").With("entry_id", entryID)
	}
	return nil
}

// ListTags returns the tags of an entry the user owns.
func (s *Journal) ListTags(ctx context.Context, uid string, entryID int64) ([]model.Tag, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	if err := s.ownEntry(ctx, uid, entryID); err != nil {
		return nil, err
	}

	tags, err := s.store.ListTags(ctx, store.ListTagsRequest{EntryIDs: []int64{entryID}})
	if err != nil {
		return nil, storageErr("list tags", err)
	}
	return nonNil(tags), nil
}

type AddTagRequest struct {
	UID     string
	EntryID int64
	Name    string `validate:"required,max=64"`
}

// AddTag attaches a tag to an entry. When the entry already has a tag with the
// exact same name that tag is returned and nothing is inserted. The entry's
// full tag list after the change is returned alongside.
func (s *Journal) AddTag(ctx context.Context, r AddTagRequest) (model.Tag, []model.Tag, error) {
	if err := requireUser(r.UID); err != nil {
		return model.Tag{}, nil, err
	}
	r.Name = strings.TrimSpace(r.Name)
	if err := check(r); err != nil {
		return model.Tag{}, nil, err
	}
	if err := s.ownEntry(ctx, r.UID, r.EntryID); err != nil {
		return model.Tag{}, nil, err
	}

	var (
		tag  model.Tag
		tags []model.Tag
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		tags, err = attachTags(ctx, tx, r.EntryID, []string{r.Name})
		if err != nil {
			return err
		}

		for _, t := range tags {
			if t.Name == r.Name {
				tag = t
			}
		}
		return nil
	})
	if err != nil {
		return model.Tag{}, nil, classify("add tag", "entry", err)
	}
	return tag, tags, nil
}

// RemoveTag detaches a tag from an entry the user owns and returns the tags left.
func (s *Journal) RemoveTag(ctx context.Context, uid string, entryID, tagID int64) ([]model.Tag, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	if err := s.ownEntry(ctx, uid, entryID); err != nil {
		return nil, err
	}

	err := s.store.DeleteTag(ctx, store.DeleteTagRequest{EntryID: entryID, TagID: tagID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("tag").With("entry_id", entryID).With("tag_id", tagID)
		}
		return nil, storageErr("delete tag", err)
	}

	return s.ListTags(ctx, uid, entryID)
}

// attachTags inserts the names the entry does not carry yet and returns the
// entry's resulting tags. Run it inside a transaction.
func attachTags(ctx context.Context, tx store.Store, entryID int64, names []string) ([]model.Tag, error) {
	if err := tx.LockEntry(ctx, entryID); err != nil {
		return nil, fmt.Errorf("lock entry: %w", err)
	}

	tags, err := tx.ListTags(ctx, store.ListTagsRequest{EntryIDs: []int64{entryID}})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[t.Name] = true
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || have[name] {
			continue
		}

		t, err := tx.CreateTag(ctx, store.CreateTagRequest{EntryID: entryID, Name: name})
		if err != nil {
			return nil, fmt.Errorf("create tag: %w", err)
		}
		have[name] = true
		tags = append(tags, t)
	}
	return nonNil(tags), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
