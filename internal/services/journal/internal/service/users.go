package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	CreateUser(ctx context.Context, r store.CreateUserRequest) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type tokenIssuer interface {
	Issue(claims token.UserClaims) (string, time.Time, error)
}

// Users signs people up and exchanges credentials for session tokens.
type Users struct {
	store  userStore
	tokens tokenIssuer
	cost   int
	// dummyHash is compared against when the email is unknown so both failure
	// paths take the same time.
	dummyHash []byte
}

type UsersConfig struct {
	BcryptCost int
}

func NewUsers(st userStore, tokens tokenIssuer, cfg UsersConfig) *Users {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		panic("failed to prepare password hasher: " + err.Error())
	}

	return &Users{
		store:     st,
		tokens:    tokens,
		cost:      cost,
		dummyHash: dummy,
	}
}

type SignUpRequest struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"min=8,max=72"`
	Name     string `validate:"required,max=100"`
}

func (u *Users) SignUp(ctx context.Context, r SignUpRequest) (model.User, error) {
	r.Email = normalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if err := check(r); err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), u.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.User{}, invalid("invalid password")
		}
		return model.User{}, storageErr("hash password", err)
	}

	user, err := u.store.CreateUser(ctx, store.CreateUserRequest{
		UID:          uuid.NewString(),
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			return model.User{}, serr.NewServiceError(ErrConflict, http.StatusConflict, "email is already registered").
				With("email", r.Email)
		}
		return model.User{}, storageErr("create user", err)
	}
	return user, nil
}

type LoginRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

func (u *Users) Login(ctx context.Context, r LoginRequest) (Session, error) {
	r.Email = normalizeEmail(r.Email)
	if err := check(r); err != nil {
		return Session{}, err
	}

	user, err := u.store.GetUserByEmail(ctx, r.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Session{}, storageErr("get user", err)
		}
		_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(r.Password))
		return Session{}, invalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(r.Password)); err != nil {
		return Session{}, invalidCredentials()
	}

	tk, exp, err := u.tokens.Issue(token.UserClaims{UID: user.UID, Email: user.Email, Name: user.Name})
	if err != nil {
		return Session{}, storageErr("issue token", err)
	}

	return Session{Token: tk, ExpiresAt: exp, User: user}, nil
}

func invalidCredentials() *serr.ServiceError {
	return serr.NewServiceError(ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
