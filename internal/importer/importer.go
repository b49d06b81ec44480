// Package importer bulk-loads files from a directory tree as documents.
package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gogotex/docserve/internal/document"
	"github.com/gogotex/docserve/pkg/logger"
)

// Uploader stores one file as a document.
type Uploader interface {
	Upload(ctx context.Context, title, filename string, r io.Reader) (*document.Document, error)
}

// Result lists what an import produced.
type Result struct {
	Imported []*document.Document
	Skipped  []string
}

// Options tune an import. Zero values mean: 4 workers, skip dotfiles.
type Options struct {
	Concurrency   int
	IncludeHidden bool
}

// Run walks dir and uploads every regular file. The first upload error
// cancels the remaining work.
func Run(ctx context.Context, up Uploader, dir string, opts Options) (*Result, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "error walking directory %s", dir)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	var (
		mu  sync.Mutex
		res = &Result{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(ospath string, de *godirwalk.Dirent) error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			hidden := strings.HasPrefix(de.Name(), ".") && ospath != dir
			if de.IsDir() {
				if hidden && !opts.IncludeHidden {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !de.IsRegular() || (hidden && !opts.IncludeHidden) {
				mu.Lock()
				res.Skipped = append(res.Skipped, ospath)
				mu.Unlock()
				return nil
			}
			g.Go(func() error {
				doc, err := uploadFile(gctx, up, ospath)
				if err != nil {
					return err
				}
				mu.Lock()
				res.Imported = append(res.Imported, doc)
				mu.Unlock()
				logger.Debugf("imported %s as %s", ospath, doc.ID)
				return nil
			})
			return nil
		},
	})
	if gerr := g.Wait(); gerr != nil {
		return res, gerr
	}
	if err != nil {
		return res, errors.Wrapf(err, "error walking directory %s", dir)
	}
	return res, nil
}

func uploadFile(ctx context.Context, up Uploader, p string) (*document.Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", p)
	}
	defer f.Close()
	name := filepath.Base(p)
	doc, err := up.Upload(ctx, strings.TrimSuffix(name, filepath.Ext(name)), name, f)
	return doc, errors.Wrapf(err, "could not import %s", p)
}
