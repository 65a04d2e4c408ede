package models

import (
	"context"
	"io"
)

// MessageStore persists the most recently submitted form value. Every Put
// replaces the previous value; concurrent Puts are last-write-wins.
type MessageStore interface {
	// Put overwrites the stored value with value.
	Put(ctx context.Context, value string) error

	io.Closer
}
