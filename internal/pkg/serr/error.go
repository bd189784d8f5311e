package serr

import (
	"fmt"
	"runtime/debug"
)

// ServiceError is an error that is safe to show to API clients. Msg is the client
// facing text and StatusCode the HTTP status it maps to. Err keeps the cause chain.
type ServiceError struct {
	Err        error
	Msg        string
	StackTrace string
	StatusCode int
	Env        map[string]string
}

func NewServiceError(err error, statusCode int, msg string, args ...any) *ServiceError {
	return &ServiceError{
		Err:        err,
		Msg:        fmt.Sprintf(msg, args...),
		StatusCode: statusCode,
		StackTrace: string(debug.Stack()),
		Env:        make(map[string]string),
	}
}

// With records a diagnostic key/value pair and returns the error for chaining.
func (e *ServiceError) With(key string, val any) *ServiceError {
	e.Env[key] = fmt.Sprint(val)
	return e
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
