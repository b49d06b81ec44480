// Package storage holds the file bytes behind document records.
//
// A backend may expose a file as a URL, as a local path, as both, or as
// neither. Forms a backend cannot provide return ErrNotSupported.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gogotex/docserve/internal/document/serve"
)

// ErrNotSupported is returned by URL or Path when the backend has no such form.
var ErrNotSupported = errors.New("not supported by storage backend")

// ErrNotExist is returned when no object is stored under a key.
var ErrNotExist = errors.New("stored file does not exist")

// Backend is the storage contract used by the document service.
type Backend interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
	Path(key string) (string, error)
	Name() string
}

// Locate resolves both optional forms of a stored file. Any error is treated
// as the form being absent.
func Locate(ctx context.Context, b Backend, key string) serve.Locations {
	var loc serve.Locations
	if u, err := b.URL(ctx, key); err == nil {
		loc.RemoteURL = u
	}
	if p, err := b.Path(key); err == nil {
		loc.LocalPath = p
	}
	return loc
}

// New builds the backend selected by cfg.
func New(ctx context.Context, cfg *Config) (Backend, error) {
	switch cfg.Backend {
	case BackendMinIO:
		s, err := NewMinIOStorage(ctx, &cfg.MinIO, cfg.PresignTTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendFilesystem, "":
		fs, err := NewFilesystem(cfg.LocalRoot, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	return nil, errors.New("unknown storage backend: " + cfg.Backend)
}

// Config selects and configures a storage backend.
type Config struct {
	Backend    string
	LocalRoot  string
	BaseURL    string
	PresignTTL time.Duration
	MinIO      MinIOConfig
}

const (
	BackendFilesystem = "filesystem"
	BackendMinIO      = "minio"
)
