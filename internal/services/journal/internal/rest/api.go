package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/httpx"
	"github.com/Sehgal-Arjun/Lucid/internal/pkg/middleware"
	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/service"
)

// multipartOverhead is headroom for form boundaries and the caption field.
const multipartOverhead = 1 << 20

type journalService interface {
	Location() *time.Location

	SaveEntry(ctx context.Context, r service.SaveEntryRequest) (model.Entry, error)
	CreateDraft(ctx context.Context, uid string, date model.Date) (model.Entry, error)
	GetEntryByDate(ctx context.Context, uid string, date model.Date) (model.Entry, bool, error)
	GetEntry(ctx context.Context, uid string, entryID int64) (model.Entry, bool, error)
	UpdateEntry(ctx context.Context, r service.UpdateEntryRequest) (model.Entry, error)
	ListEntries(ctx context.Context, r service.ListEntriesRequest) ([]model.Entry, error)

	ListTags(ctx context.Context, uid string, entryID int64) ([]model.Tag, error)
	AddTag(ctx context.Context, r service.AddTagRequest) (model.Tag, []model.Tag, error)
	RemoveTag(ctx context.Context, uid string, entryID, tagID int64) ([]model.Tag, error)

	UploadImage(ctx context.Context, r service.UploadImageRequest) (model.Image, error)
	ListImages(ctx context.Context, uid string, entryID int64) ([]model.Image, error)
	DeleteImage(ctx context.Context, uid string, imageID int64) error
	UpdateCaption(ctx context.Context, r service.UpdateCaptionRequest) (model.Image, error)

	CurrentStreak(ctx context.Context, uid string) (int, error)
	LongestStreak(ctx context.Context, uid string) (int, error)
	LongestHappyStreak(ctx context.Context, uid string) (int, error)
	MostCommonMood(ctx context.Context, uid string) (model.MoodCount, bool, error)
	TotalEntries(ctx context.Context, uid string) (int, error)
	AvgEntryLength(ctx context.Context, uid string) (float64, error)
	Stats(ctx context.Context, uid string) (model.Stats, error)
	MonthlyMoodSummary(ctx context.Context, uid string, from, to model.Date) ([]model.MonthlyMoodCount, error)
	MoodCalendar(ctx context.Context, uid string, from, to model.Date) ([]model.DayMood, error)
}

type APIOption func(*API) *API

func WithJournalService(srv journalService) APIOption {
	return func(api *API) *API {
		api.srv = srv
		return api
	}
}

func WithMaxImageSize(size int64) APIOption {
	return func(api *API) *API {
		api.maxImgSize = size
		return api
	}
}

// API serves the journal of the authenticated user. Mount it behind
// middleware.Auth.
type API struct {
	srv        journalService
	maxImgSize int64
	mux        *http.ServeMux
}

func NewAPI(opts ...APIOption) *API {
	api := &API{
		maxImgSize: 5 * 1024 * 1024,
		mux:        http.NewServeMux(),
	}

	for _, opt := range opts {
		api = opt(api)
	}

	if api.srv == nil {
		panic("journal service is required")
	}

	api.mount()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func (api *API) mount() {
	api.mux.HandleFunc("GET /days/{date}", api.handleGetDay)
	api.mux.HandleFunc("PUT /days/{date}", api.handleSaveDay)
	api.mux.HandleFunc("POST /days/{date}/draft", api.handleCreateDraft)

	api.mux.HandleFunc("GET /entries", api.handleListEntries)
	api.mux.HandleFunc("GET /entries/{entry_id}", api.handleGetEntry)
	api.mux.HandleFunc("PATCH /entries/{entry_id}", api.handleUpdateEntry)

	api.mux.HandleFunc("GET /entries/{entry_id}/tags", api.handleListTags)
	api.mux.HandleFunc("POST /entries/{entry_id}/tags", api.handleAddTag)
	api.mux.HandleFunc("DELETE /entries/{entry_id}/tags/{tag_id}", api.handleRemoveTag)

	api.mux.HandleFunc("GET /entries/{entry_id}/images", api.handleListImages)
	api.mux.HandleFunc("POST /entries/{entry_id}/images", api.handleUploadImage)
	api.mux.HandleFunc("PATCH /images/{image_id}", api.handleUpdateCaption)
	api.mux.HandleFunc("DELETE /images/{image_id}", api.handleDeleteImage)

	api.mux.HandleFunc("GET /stats", api.handleStats)
	api.mux.HandleFunc("GET /stats/current-streak", api.handleCurrentStreak)
	api.mux.HandleFunc("GET /stats/longest-streak", api.handleLongestStreak)
	api.mux.HandleFunc("GET /stats/longest-happy-streak", api.handleLongestHappyStreak)
	api.mux.HandleFunc("GET /stats/most-common-mood", api.handleMostCommonMood)
	api.mux.HandleFunc("GET /stats/total-entries", api.handleTotalEntries)
	api.mux.HandleFunc("GET /stats/avg-entry-length", api.handleAvgEntryLength)
	api.mux.HandleFunc("GET /stats/monthly", api.handleMonthlySummary)
	api.mux.HandleFunc("GET /calendar", api.handleCalendar)
}

func (api *API) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, err := api.dateFromPath(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	e, found, err := api.srv.GetEntryByDate(r.Context(), uid(r), date)
	writeEntry(w, r, e, found, err)
}

type saveDayRequest struct {
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

func (api *API) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	date, err := api.dateFromPath(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req saveDayRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, badBody(err))
		return
	}

	e, err := api.srv.SaveEntry(r.Context(), service.SaveEntryRequest{
		UID:     uid(r),
		Date:    date,
		Content: req.Content,
		Mood:    req.Mood,
		Tags:    req.Tags,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, e)
}

type draftResponse struct {
	EntryID int64       `json:"entry_id"`
	Entry   model.Entry `json:"entry"`
}

func (api *API) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	date, err := api.dateFromPath(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	e, err := api.srv.CreateDraft(r.Context(), uid(r), date)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, draftResponse{EntryID: e.ID, Entry: e})
}

type entriesResponse struct {
	Entries []model.Entry `json:"entries"`
}

func (api *API) handleListEntries(w http.ResponseWriter, r *http.Request) {
	from, to, err := api.rangeFromQuery(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	q := r.URL.Query()
	entries, err := api.srv.ListEntries(r.Context(), service.ListEntriesRequest{
		UID:   uid(r),
		Mood:  q.Get("mood"),
		Query: q.Get("q"),
		From:  from,
		To:    to,
		Tag:   q.Get("tag"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, entriesResponse{Entries: entries})
}

func (api *API) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	e, found, err := api.srv.GetEntry(r.Context(), uid(r), entryID)
	writeEntry(w, r, e, found, err)
}

type updateEntryRequest struct {
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

func (api *API) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req updateEntryRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, badBody(err))
		return
	}

	e, err := api.srv.UpdateEntry(r.Context(), service.UpdateEntryRequest{
		UID:     uid(r),
		EntryID: entryID,
		Content: req.Content,
		Mood:    req.Mood,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, e)
}

type tagsResponse struct {
	Tag  *model.Tag  `json:"tag,omitempty"`
	Tags []model.Tag `json:"tags"`
}

func (api *API) handleListTags(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	tags, err := api.srv.ListTags(r.Context(), uid(r), entryID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tagsResponse{Tags: tags})
}

type addTagRequest struct {
	Name string `json:"name"`
}

func (api *API) handleAddTag(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req addTagRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, badBody(err))
		return
	}

	tag, tags, err := api.srv.AddTag(r.Context(), service.AddTagRequest{
		UID:     uid(r),
		EntryID: entryID,
		Name:    req.Name,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, tagsResponse{Tag: &tag, Tags: tags})
}

func (api *API) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	tagID, err := idFromRequest(r, "tag_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	tags, err := api.srv.RemoveTag(r.Context(), uid(r), entryID, tagID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tagsResponse{Tags: tags})
}

type imagesResponse struct {
	Images []model.Image `json:"images"`
}

func (api *API) handleListImages(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	imgs, err := api.srv.ListImages(r.Context(), uid(r), entryID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, imagesResponse{Images: imgs})
}

func (api *API) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	entryID, err := idFromRequest(r, "entry_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, api.maxImgSize+multipartOverhead)
	f, hdr, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httpx.HandleErr(w, r, serr.NewServiceError(service.ErrValidation, http.StatusRequestEntityTooLarge, "image size exceeded"))
			return
		}
		httpx.HandleErr(w, r, serr.NewServiceError(errors.Join(service.ErrValidation, err), http.StatusBadRequest, "invalid image"))
		return
	}
	defer f.Close()

	img, err := api.srv.UploadImage(r.Context(), service.UploadImageRequest{
		UID:      uid(r),
		EntryID:  entryID,
		FileName: hdr.Filename,
		Caption:  r.FormValue("caption"),
		Body:     io.LimitReader(f, api.maxImgSize+1),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, img)
}

type updateCaptionRequest struct {
	Caption string `json:"caption"`
}

func (api *API) handleUpdateCaption(w http.ResponseWriter, r *http.Request) {
	imageID, err := idFromRequest(r, "image_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req updateCaptionRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, badBody(err))
		return
	}

	img, err := api.srv.UpdateCaption(r.Context(), service.UpdateCaptionRequest{
		UID:     uid(r),
		ImageID: imageID,
		Caption: req.Caption,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, img)
}

func (api *API) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := idFromRequest(r, "image_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := api.srv.DeleteImage(r.Context(), uid(r), imageID); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func uid(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (api *API) dateFromPath(r *http.Request) (model.Date, error) {
	raw := r.PathValue("date")
	d, err := model.ParseDate(raw, api.srv.Location())
	if err != nil {
		return model.Date{}, serr.NewServiceError(errors.Join(service.ErrValidation, err), http.StatusBadRequest, "invalid date %q", raw)
	}
	return d, nil
}

// rangeFromQuery reads the optional from and to query parameters.
func (api *API) rangeFromQuery(r *http.Request) (from, to model.Date, err error) {
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *model.Date
	}{{"from", &from}, {"to", &to}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := model.ParseDate(raw, api.srv.Location())
		if err != nil {
			return model.Date{}, model.Date{}, serr.NewServiceError(errors.Join(service.ErrValidation, err), http.StatusBadRequest, "invalid %s date %q", p.name, raw)
		}
		*p.dst = d
	}
	return from, to, nil
}

func idFromRequest(r *http.Request, param string) (int64, error) {
	idStr := r.PathValue(param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, serr.NewServiceError(errors.Join(service.ErrValidation, err), http.StatusBadRequest, "invalid %s parameter", param)
	}

	return id, nil
}

func badBody(err error) error {
	return serr.NewServiceError(errors.Join(service.ErrValidation, err), http.StatusBadRequest, "invalid request body")
}

func writeEntry(w http.ResponseWriter, r *http.Request, e model.Entry, found bool, err error) {
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	if !found {
		httpx.HandleErr(w, r, serr.NewServiceError(service.ErrNotFoundOrDenied, http.StatusNotFound, "entry not found"))
		return
	}

	writeJSON(w, r, http.StatusOK, e)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp any) {
	if err := httpx.WriteJSON(w, status, resp); err != nil {
		httpx.HandleErr(w, r, err)
	}
}
