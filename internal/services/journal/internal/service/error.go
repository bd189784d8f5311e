package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/store"
	"github.com/go-playground/validator/v10"
)

// Error kinds. Every error returned by this package is a *serr.ServiceError whose
// cause chain contains exactly one of these.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrFutureDate         = errors.New("date is in the future")
	ErrValidation         = errors.New("validation failed")
	ErrNotFoundOrDenied   = errors.New("not found")
	ErrStorage            = errors.New("storage failure")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func notAuthenticated() *serr.ServiceError {
	return serr.NewServiceError(ErrNotAuthenticated, http.StatusUnauthorized, "not authenticated")
}

func requireUser(uid string) error {
	if uid == "" {
		return notAuthenticated()
	}
	return nil
}

func futureDate(d, today model.Date) *serr.ServiceError {
	return serr.NewServiceError(ErrFutureDate, http.StatusUnprocessableEntity, "entries can only be written for today or earlier").
		With("entry_date", d).
		With("today", today)
}

func invalid(msg string, args ...any) *serr.ServiceError {
	return serr.NewServiceError(ErrValidation, http.StatusBadRequest, msg, args...)
}

func notFound(what string) *serr.ServiceError {
	return serr.NewServiceError(ErrNotFoundOrDenied, http.StatusNotFound, "%s not found", what)
}

func storageErr(op string, err error) *serr.ServiceError {
	return serr.NewServiceError(fmt.Errorf("%w: %s: %w", ErrStorage, op, err), http.StatusInternalServerError, "internal error")
}

// classify turns a store error into a service error. Errors that already carry
// a kind pass through untouched.
func classify(op, what string, err error) error {
	var se *serr.ServiceError
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, store.ErrNotFound):
		return notFound(what)
	default:
		return storageErr(op, err)
	}
}

// check runs struct validation and reports the first failing field.
func check(r any) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return invalid("invalid %s", strings.ToLower(fe.Field())).
			With("field", fe.Namespace()).
			With("rule", fe.Tag())
	}
	return invalid("invalid request")
}
