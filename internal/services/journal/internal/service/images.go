package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/blob"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
)

const (
	// sniffLen is how many bytes http.DetectContentType looks at.
	sniffLen = 512
	// putAttempts bounds how often an upload moves to the next millisecond
	// when its path is already taken.
	putAttempts = 5
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeFileName(name string) string {
	if name == "" {
		return "image"
	}
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// ImagePath is the storage location for an upload: user_<uid>/<unix millis>_<name>.
func ImagePath(uid string, at time.Time, fileName string) string {
	return fmt.Sprintf("user_%s/%d_%s", uid, at.UnixMilli(), SanitizeFileName(fileName))
}

type UploadImageRequest struct {
	UID      string
	EntryID  int64
	FileName string `validate:"max=255"`
	Caption  string `validate:"max=500"`
	Body     io.Reader
}

// UploadImage validates the bytes, stores them and records the image on the
// entry. Bytes are removed again when the record cannot be written.
func (s *Journal) UploadImage(ctx context.Context, r UploadImageRequest) (model.Image, error) {
	if err := requireUser(r.UID); err != nil {
		return model.Image{}, err
	}
	if err := check(r); err != nil {
		return model.Image{}, err
	}
	if err := s.ownEntry(ctx, r.UID, r.EntryID); err != nil {
		return model.Image{}, err
	}

	data, err := s.readImage(r.Body)
	if err != nil {
		return model.Image{}, err
	}

	path, err := s.putImage(ctx, r.UID, r.FileName, data)
	if err != nil {
		return model.Image{}, storageErr("store image bytes", err).With("file_path", path)
	}

	img, err := s.store.CreateImage(ctx, store.CreateImageRequest{
		EntryID:  r.EntryID,
		FilePath: path,
		Caption:  strings.TrimSpace(r.Caption),
	})
	if err != nil {
		if cerr := s.blobs.Delete(context.WithoutCancel(ctx), path); cerr != nil {
			slog.ErrorContext(ctx, "failed to remove image bytes after metadata write failed",
				"file_path", path,
				"entry_id", r.EntryID,
				"error", cerr,
				"cause", err,
			)
		}
		return model.Image{}, classify("record image", "entry", err)
	}

	img.URL = s.blobs.URL(img.FilePath)
	return img, nil
}

// putImage stores data under a fresh path. Uploads of the same name within
// one millisecond take the following milliseconds instead of overwriting.
func (s *Journal) putImage(ctx context.Context, uid, fileName string, data []byte) (string, error) {
	at := s.now()
	var (
		path string
		err  error
	)
	for i := range putAttempts {
		path = ImagePath(uid, at.Add(time.Duration(i)*time.Millisecond), fileName)
		err = s.blobs.Put(ctx, path, bytes.NewReader(data))
		if !errors.Is(err, blob.ErrExists) {
			return path, err
		}
	}
	return path, err
}

// readImage reads the whole upload, rejecting anything that is not an image or
// is larger than the configured maximum.
func (s *Journal) readImage(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, invalid("image is empty")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxImageSize+1))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, invalid("image exceeds %d bytes", s.maxImageSize)
		}
		return nil, invalid("could not read image")
	}
	if len(data) == 0 {
		return nil, invalid("image is empty")
	}
	if int64(len(data)) > s.maxImageSize {
		return nil, invalid("image exceeds %d bytes", s.maxImageSize)
	}

	ctype := http.DetectContentType(data[:min(len(data), sniffLen)])
	if !strings.HasPrefix(ctype, "image/") {
		return nil, invalid("unsupported file type %s", ctype)
	}
	return data, nil
}

// ListImages returns the images of an entry the user owns.
func (s *Journal) ListImages(ctx context.Context, uid string, entryID int64) ([]model.Image, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	if err := s.ownEntry(ctx, uid, entryID); err != nil {
		return nil, err
	}

	imgs, err := s.store.ListImages(ctx, store.ListImagesRequest{EntryID: entryID})
	if err != nil {
		return nil, storageErr("list images", err)
	}
	for i := range imgs {
		imgs[i].URL = s.blobs.URL(imgs[i].FilePath)
	}
	return nonNil(imgs), nil
}

// DeleteImage removes the image record, then its bytes. The record is only
// removed when uid owns the entry the image belongs to.
func (s *Journal) DeleteImage(ctx context.Context, uid string, imageID int64) error {
	if err := requireUser(uid); err != nil {
		return err
	}

	img, err := s.store.DeleteImage(ctx, store.DeleteImageRequest{ImageID: imageID, UID: uid})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("image").With("image_id", imageID)
		}
		return storageErr("delete image", err)
	}

	if err := s.blobs.Delete(context.WithoutCancel(ctx), img.FilePath); err != nil {
		slog.ErrorContext(ctx, "failed to remove image bytes",
			"file_path", img.FilePath,
			"image_id", img.ID,
			"entry_id", img.EntryID,
			"error", err,
		)
	}
	return nil
}

type UpdateCaptionRequest struct {
	UID     string
	ImageID int64
	Caption string `validate:"max=500"`
}

// UpdateCaption changes the caption of an image the user owns.
func (s *Journal) UpdateCaption(ctx context.Context, r UpdateCaptionRequest) (model.Image, error) {
	if err := requireUser(r.UID); err != nil {
		return model.Image{}, err
	}
	if err := check(r); err != nil {
		return model.Image{}, err
	}

	img, err := s.store.UpdateImageCaption(ctx, store.UpdateImageCaptionRequest{
		ImageID: r.ImageID,
		UID:     r.UID,
		Caption: strings.TrimSpace(r.Caption),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Image{}, notFound("image").With("image_id", r.ImageID)
		}
		return model.Image{}, storageErr("update caption", err)
	}

	img.URL = s.blobs.URL(img.FilePath)
	return img, nil
}

// PublicURL is the address the image stored at filePath is served from.
func (s *Journal) PublicURL(filePath string) string {
	return s.blobs.URL(filePath)
}
