package models

import (
	"strings"
)

// Submission is the single key=value pair posted by the form. Neither side
// is URL-decoded.
type Submission struct {
	Key   string
	Value string
}

// ParseSubmission splits body on its first '='. Everything after it,
// including further '=' characters, is the value. A body without '=' is
// ErrInvalidFormBody.
func ParseSubmission(body []byte) (*Submission, error) {
	key, value, ok := strings.Cut(string(body), "=")
	if !ok {
		return nil, ErrInvalidFormBody
	}
	return &Submission{Key: key, Value: value}, nil
}
