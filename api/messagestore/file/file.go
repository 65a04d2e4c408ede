// Package file stores the submitted message in a single file on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/messagestore"
	"github.com/fnproject/formserver/api/models"
	"github.com/sirupsen/logrus"
)

// FileMode is the permission set on the message file.
const FileMode os.FileMode = 0644

type fileProvider int

func (fileProvider) String() string {
	return "file"
}

func (fileProvider) Supports(u *url.URL) bool {
	return u.Scheme == "file"
}

func (fileProvider) New(ctx context.Context, u *url.URL) (models.MessageStore, error) {
	return New(ctx, PathFromURL(u))
}

func init() {
	messagestore.AddProvider(fileProvider(0))
}

// PathFromURL returns the file path named by a file:// url. Both
// file:///abs/path and file://relative/path are accepted.
func PathFromURL(u *url.URL) string {
	if u.Host != "" {
		return filepath.FromSlash(u.Host + u.Path)
	}
	return filepath.FromSlash(u.Path)
}

// URLFromPath returns the file:// url naming path, escaping characters
// such as '#' and '%' so PathFromURL gives path back.
func URLFromPath(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

type store struct {
	path string
}

// New returns a MessageStore that overwrites path on every Put. The parent
// directory is created if missing; path itself must not be a directory.
func New(ctx context.Context, path string) (models.MessageStore, error) {
	if path == "" {
		return nil, errors.New("file message store needs a path")
	}
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("cannot create message directory: %w", err)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("message path %s is a directory", path)
	}

	common.Logger(ctx).WithFields(logrus.Fields{"path": path}).Info("using file message store")
	return &store{path: path}, nil
}

// Put writes value to a temporary file next to the target and renames it
// into place, so readers see either the old or the new value in full.
func (s *store) Put(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temp message file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write message: %w", err)
	}
	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot chmod message file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close message file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("cannot replace message file: %w", err)
	}
	return nil
}

func (s *store) Close() error {
	return nil
}
