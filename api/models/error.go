package models

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidFormBody = err{
		code:  http.StatusBadRequest,
		error: errors.New("Invalid form body, expected key=value"),
	}
	ErrRouteNotFound = err{
		code:  http.StatusNotFound,
		error: errors.New("Route not found"),
	}
	ErrRequestTimeout = err{
		code:  http.StatusRequestTimeout,
		error: errors.New("Timed out reading request body"),
	}
	ErrTooManySubmissions = err{
		code:  http.StatusTooManyRequests,
		error: errors.New("Too many submissions, try again later"),
	}
	ErrClientCancel = err{
		// The special custom error code in nginx for closed requests
		code:  499,
		error: errors.New("Client cancelled context"),
	}
	ErrMessageStoreEmptyURL = err{
		code:  http.StatusInternalServerError,
		error: errors.New("Missing message store url"),
	}
)

// any error that implements this interface will return an API response
// with the provided status code and error message body
type APIError interface {
	Code() int
	error
}

type err struct {
	code int
	error
}

func (e err) Code() int { return e.code }

func NewAPIError(code int, e error) APIError { return err{code, e} }

// IsAPIError returns true if e is (or wraps) an APIError.
func IsAPIError(e error) bool {
	var apiErr APIError
	return errors.As(e, &apiErr)
}

// uniform error output
type Error struct {
	Error *ErrorBody `json:"error,omitempty"`
}
