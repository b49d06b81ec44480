package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gogotex/docserve/internal/document"
	"github.com/gogotex/docserve/internal/document/repository"
	"github.com/gogotex/docserve/internal/document/serve"
	"github.com/gogotex/docserve/internal/stats"
	"github.com/gogotex/docserve/internal/storage"
	"github.com/gogotex/docserve/pkg/logger"
	"github.com/gogotex/docserve/pkg/metrics"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidFilename = errors.New("invalid filename")
)

// Options are read once from configuration at startup.
type Options struct {
	ServeMethod        serve.ServeMethod
	InlineContentTypes []string
}

// Delivery is the resolved way to hand a document to a client.
// LocalPath is set only for serve.LocalServe.
type Delivery struct {
	Document  *document.Document
	Decision  serve.Decision
	LocalPath string
}

// Service implements document delivery and management on top of a
// repository, a storage backend and a delivery recorder.
type Service struct {
	repo   repository.Repository
	store  storage.Backend
	rec    stats.Recorder
	method serve.ServeMethod
	inline []string
}

func New(repo repository.Repository, store storage.Backend, rec stats.Recorder, opts Options) *Service {
	if rec == nil {
		rec = stats.Nop{}
	}
	inline := opts.InlineContentTypes
	if inline == nil {
		inline = document.DefaultInlineContentTypes
	}
	return &Service{repo: repo, store: store, rec: rec, method: opts.ServeMethod, inline: inline}
}

// ServeMethod returns the configured serve method.
func (s *Service) ServeMethod() serve.ServeMethod { return s.method }

// Resolve looks up the document and decides how it would be delivered,
// without recording a delivery.
func (s *Service) Resolve(ctx context.Context, id, filename string) (*Delivery, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Filename != filename {
		return nil, fmt.Errorf("%w: document %s does not match filename %q", ErrNotFound, id, filename)
	}
	loc := storage.Locate(ctx, s.store, doc.FileKey)
	dec, err := serve.Resolve(s.method, loc)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	d := &Delivery{Document: doc, Decision: dec}
	if dec.Outcome == serve.LocalServe {
		d.LocalPath = loc.LocalPath
	}
	return d, nil
}

// Serve resolves a delivery and records it. Recording failures are logged and
// never fail the request.
func (s *Service) Serve(ctx context.Context, id, filename string) (*Delivery, error) {
	d, err := s.Resolve(ctx, id, filename)
	if err != nil {
		metrics.DocumentsServed.WithLabelValues(serve.NotFound.String()).Inc()
		return nil, err
	}
	metrics.DocumentsServed.WithLabelValues(d.Decision.Outcome.String()).Inc()
	if rerr := s.rec.Served(ctx, id); rerr != nil {
		logger.Warnf("failed to record delivery of %s: %v", id, rerr)
	}
	return d, nil
}

// Get returns the document record or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]*document.Document, error) {
	return s.repo.List(ctx)
}

// ServedCount returns how many times the document has been delivered.
func (s *Service) ServedCount(ctx context.Context, id string) (int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}
	return s.rec.Count(ctx, id)
}

// Upload stores the file bytes and records a new document. The content type
// comes from the filename extension, falling back to sniffing the content.
func (s *Service) Upload(ctx context.Context, title, filename string, r io.Reader) (*document.Document, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, ErrInvalidFilename
	}

	tmp, err := os.CreateTemp("", "docserve-upload-*")
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	h := sha1.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ct := document.ContentTypeFor(name)
	if ct == "application/octet-stream" {
		if m, err := mimetype.DetectReader(tmp); err == nil {
			ct = m.String()
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	doc := &document.Document{
		ID:                 uuid.NewString(),
		Title:              title,
		Filename:           name,
		FileSize:           size,
		FileHash:           hex.EncodeToString(h.Sum(nil)),
		ContentType:        ct,
		ContentDisposition: document.DispositionFor(ct, s.inline),
	}
	doc.FileKey = path.Join("documents", doc.ID, name)

	if err := s.store.Save(ctx, doc.FileKey, tmp, size, ct); err != nil {
		return nil, fmt.Errorf("store %s: %w", doc.FileKey, err)
	}
	if _, err := s.repo.Create(ctx, doc); err != nil {
		if derr := s.store.Delete(ctx, doc.FileKey); derr != nil {
			logger.Warnf("failed to clean up %s after create error: %v", doc.FileKey, derr)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	metrics.DocumentsUploaded.WithLabelValues(s.store.Name()).Inc()
	logger.Infof("stored document %s (%s, %d bytes) in %s", doc.ID, doc.Filename, doc.FileSize, s.store.Name())
	return doc, nil
}

// Delete removes the record and then the stored bytes.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return err
	}
	if err := s.store.Delete(ctx, doc.FileKey); err != nil {
		logger.Warnf("document %s deleted but stored file %s remains: %v", id, doc.FileKey, err)
	}
	if f, ok := s.rec.(stats.Forgetter); ok {
		if err := f.Forget(ctx, id); err != nil {
			logger.Warnf("document %s deleted but its delivery counter remains: %v", id, err)
		}
	}
	return nil
}
