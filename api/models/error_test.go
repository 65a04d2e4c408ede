package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIErrorCodes(t *testing.T) {
	for _, test := range []struct {
		err  APIError
		code int
	}{
		{ErrInvalidFormBody, http.StatusBadRequest},
		{ErrRouteNotFound, http.StatusNotFound},
		{ErrTooManySubmissions, http.StatusTooManyRequests},
		{ErrRequestTimeout, http.StatusRequestTimeout},
		{ErrClientCancel, 499},
		{NewAPIError(http.StatusTeapot, errors.New("teapot")), http.StatusTeapot},
	} {
		if test.err.Code() != test.code {
			t.Errorf("%v: expected code %d, got %d", test.err, test.code, test.err.Code())
		}
	}
}

func TestIsAPIError(t *testing.T) {
	if !IsAPIError(ErrInvalidFormBody) {
		t.Error("expected ErrInvalidFormBody to be an APIError")
	}
	if !IsAPIError(fmt.Errorf("wrapped: %w", ErrRouteNotFound)) {
		t.Error("expected wrapped APIError to be detected")
	}
	if IsAPIError(errors.New("plain")) {
		t.Error("plain errors are not APIErrors")
	}
}
