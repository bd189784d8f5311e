package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func ReadJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(out)
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(resp)
}

// HandleErr logs err and writes a JSON error body. Only the message of a
// *serr.ServiceError reaches the client; anything else is reported as a 500.
func HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	var se *serr.ServiceError
	if errors.As(err, &se) {
		status = se.StatusCode
		msg = se.Msg
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []any{
		"error", err,
		"status", status,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	}
	if se != nil {
		for k, v := range se.Env {
			attrs = append(attrs, k, v)
		}
	}
	slog.Log(r.Context(), level, "request error", attrs...)

	_ = WriteJSON(w, status, errorResponse{Error: msg})
}
