package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Filesystem stores files under a root directory on the serving host.
// Files always have a local path; they have a URL only when BaseURL is set.
type Filesystem struct {
	root    string
	baseURL string
}

// NewFilesystem creates the root directory if needed.
func NewFilesystem(root, baseURL string) (*Filesystem, error) {
	if root == "" {
		return nil, errors.New("filesystem storage root is not configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not calculate absolute path of %s", root)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not create storage root %s", abs)
	}
	return &Filesystem{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (f *Filesystem) Name() string { return BackendFilesystem }

// Path maps a key to a file under the root, rejecting keys that escape it.
func (f *Filesystem) Path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) {
		return "", errors.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.root, clean), nil
}

func (f *Filesystem) URL(_ context.Context, key string) (string, error) {
	if f.baseURL == "" {
		return "", ErrNotSupported
	}
	parts := strings.Split(strings.TrimLeft(filepath.ToSlash(key), "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return f.baseURL + "/" + strings.Join(parts, "/"), nil
}

func (f *Filesystem) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p, err := f.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", key)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return errors.Wrapf(err, "could not create temp file for %s", key)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error writing %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", key)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), p), "error moving upload into place at %s", p)
}

func (f *Filesystem) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := f.Path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "error opening %s", key)
	}
	return file, nil
}

func (f *Filesystem) Delete(_ context.Context, key string) error {
	p, err := f.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error removing %s", key)
	}
	return nil
}
