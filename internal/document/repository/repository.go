package repository

import (
	"context"
	"errors"

	"github.com/gogotex/docserve/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
)

// DocumentLookup finds a document by ID, returning ErrNotFound when missing.
type DocumentLookup interface {
	Find(ctx context.Context, id string) (*document.Document, error)
}

// Repository is the full persistence contract used by the document service.
type Repository interface {
	DocumentLookup
	Create(ctx context.Context, d *document.Document) (string, error)
	List(ctx context.Context) ([]*document.Document, error)
	Delete(ctx context.Context, id string) error
}
