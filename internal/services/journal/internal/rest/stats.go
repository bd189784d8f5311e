package rest

import (
	"context"
	"net/http"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/httpx"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
)

func (api *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.srv.Stats(r.Context(), uid(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, stats)
}

type streakResponse struct {
	Days int `json:"days"`
}

func (api *API) handleCurrentStreak(w http.ResponseWriter, r *http.Request) {
	api.writeStreak(w, r, api.srv.CurrentStreak)
}

func (api *API) handleLongestStreak(w http.ResponseWriter, r *http.Request) {
	api.writeStreak(w, r, api.srv.LongestStreak)
}

func (api *API) handleLongestHappyStreak(w http.ResponseWriter, r *http.Request) {
	api.writeStreak(w, r, api.srv.LongestHappyStreak)
}

func (api *API) writeStreak(w http.ResponseWriter, r *http.Request, compute func(context.Context, string) (int, error)) {
	days, err := compute(r.Context(), uid(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, streakResponse{Days: days})
}

type mostCommonMoodResponse struct {
	MostCommonMood *model.MoodCount `json:"most_common_mood"`
}

func (api *API) handleMostCommonMood(w http.ResponseWriter, r *http.Request) {
	mc, found, err := api.srv.MostCommonMood(r.Context(), uid(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var resp mostCommonMoodResponse
	if found {
		resp.MostCommonMood = &mc
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type totalEntriesResponse struct {
	TotalEntries int `json:"total_entries"`
}

func (api *API) handleTotalEntries(w http.ResponseWriter, r *http.Request) {
	total, err := api.srv.TotalEntries(r.Context(), uid(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, totalEntriesResponse{TotalEntries: total})
}

type avgEntryLengthResponse struct {
	AvgEntryLength float64 `json:"avg_entry_length"`
}

func (api *API) handleAvgEntryLength(w http.ResponseWriter, r *http.Request) {
	avg, err := api.srv.AvgEntryLength(r.Context(), uid(r))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, avgEntryLengthResponse{AvgEntryLength: avg})
}

type monthlySummaryResponse struct {
	Months []model.MonthlyMoodCount `json:"months"`
}

func (api *API) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := api.rangeFromQuery(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	months, err := api.srv.MonthlyMoodSummary(r.Context(), uid(r), from, to)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, monthlySummaryResponse{Months: months})
}

type calendarResponse struct {
	Days []model.DayMood `json:"days"`
}

func (api *API) handleCalendar(w http.ResponseWriter, r *http.Request) {
	from, to, err := api.rangeFromQuery(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	days, err := api.srv.MoodCalendar(r.Context(), uid(r), from, to)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, calendarResponse{Days: days})
}
