package rest

import (
	"context"
	"net/http"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/httpx"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mood"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/service"
)

type userService interface {
	SignUp(ctx context.Context, r service.SignUpRequest) (model.User, error)
	Login(ctx context.Context, r service.LoginRequest) (service.Session, error)
}

// PublicAPI serves the routes that need no session: the mood vocabulary and
// account sign up and login.
type PublicAPI struct {
	users userService
	mux   *http.ServeMux
}

func NewPublicAPI(users userService) *PublicAPI {
	if users == nil {
		panic("user service is required")
	}

	api := &PublicAPI{
		users: users,
		mux:   http.NewServeMux(),
	}
	api.mux.HandleFunc("GET /moods", api.handleMoods)
	api.mux.HandleFunc("POST /auth/signup", api.handleSignUp)
	api.mux.HandleFunc("POST /auth/login", api.handleLogin)
	return api
}

func (api *PublicAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

type moodView struct {
	Name  mood.Mood `json:"name"`
	Emoji string    `json:"emoji"`
}

type moodsResponse struct {
	Moods []moodView `json:"moods"`
}

func (api *PublicAPI) handleMoods(w http.ResponseWriter, r *http.Request) {
	resp := moodsResponse{Moods: make([]moodView, 0, len(mood.All))}
	for _, m := range mood.All {
		resp.Moods = append(resp.Moods, moodView{Name: m, Emoji: m.Emoji()})
	}

	writeJSON(w, r, http.StatusOK, resp)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (api *PublicAPI) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, badBody(err))
		return
	}

	u, err := api.users.SignUp(r.Context(), service.SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *PublicAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, badBody(err))
		return
	}

	sess, err := api.users.Login(r.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, sess)
}
