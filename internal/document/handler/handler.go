package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docserve/internal/document"
	"github.com/gogotex/docserve/internal/document/serve"
	"github.com/gogotex/docserve/internal/document/service"
	"github.com/gogotex/docserve/pkg/logger"
)

// Options configures the document routes.
type Options struct {
	// BlockEmbeddedContent adds a restrictive CSP to locally served files so
	// uploaded HTML/SVG cannot run scripts in the site's origin.
	BlockEmbeddedContent bool
	// Auth guards the management API. nil leaves it open.
	Auth gin.HandlerFunc
}

type handler struct {
	svc  *service.Service
	opts Options
}

// RegisterDocumentRoutes registers the public serve route and the management API.
func RegisterDocumentRoutes(r *gin.Engine, svc *service.Service, opts Options) {
	h := &handler{svc: svc, opts: opts}

	r.GET("/documents/:id/:filename", h.serve)
	r.HEAD("/documents/:id/:filename", h.serve)

	api := r.Group("/api/documents")
	if opts.Auth != nil {
		api.Use(opts.Auth)
	}
	api.GET("", h.list)
	api.POST("", h.upload)
	api.GET("/:id", h.get)
	api.DELETE("/:id", h.delete)
	api.GET("/:id/stats", h.stats)
}

// ServeURL is the public URL path for a document.
func ServeURL(d *document.Document) string {
	return fmt.Sprintf("/documents/%s/%s", url.PathEscape(d.ID), url.PathEscape(d.Filename))
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound) || errors.Is(err, serve.ErrUnavailable)
}

func (h *handler) serve(c *gin.Context) {
	d, err := h.svc.Serve(c.Request.Context(), c.Param("id"), c.Param("filename"))
	if err != nil {
		if isNotFound(err) {
			logger.Debugf("serve %s: %v", c.Request.URL.Path, err)
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Errorf("serve %s: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	switch d.Decision.Outcome {
	case serve.Redirect:
		c.Redirect(http.StatusFound, d.Decision.URL)
	case serve.LocalServe:
		h.streamLocal(c, d)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	}
}

// streamLocal writes the file with http.ServeContent, which handles Range,
// If-Modified-Since and If-None-Match.
func (h *handler) streamLocal(c *gin.Context, d *service.Delivery) {
	f, err := os.Open(d.LocalPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("document %s: local file %s is missing", d.Document.ID, d.LocalPath)
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		logger.Errorf("document %s: open %s: %v", d.Document.ID, d.LocalPath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	doc := d.Document
	hdr := c.Writer.Header()
	ct := doc.ContentType
	if ct == "" {
		ct = document.ContentTypeFor(doc.Filename)
	}
	hdr.Set("Content-Type", ct)
	hdr.Set("Content-Disposition", document.ContentDispositionHeader(doc))
	if doc.FileHash != "" {
		hdr.Set("ETag", `"`+doc.FileHash+`"`)
	}
	if h.opts.BlockEmbeddedContent {
		hdr.Set("Content-Security-Policy", "default-src 'none'")
		hdr.Set("X-Content-Type-Options", "nosniff")
	}
	http.ServeContent(c.Writer, c.Request, doc.Filename, fi.ModTime(), f)
}

func summary(d *document.Document) gin.H {
	return gin.H{
		"id":          d.ID,
		"title":       d.Title,
		"filename":    d.Filename,
		"contentType": d.ContentType,
		"fileSize":    d.FileSize,
		"url":         ServeURL(d),
		"createdAt":   d.CreatedAt,
	}
}

func (h *handler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, d := range list {
		out = append(out, summary(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := summary(d)
	out["fileHash"] = d.FileHash
	out["contentDisposition"] = d.ContentDisposition
	out["updatedAt"] = d.UpdatedAt
	c.JSON(http.StatusOK, out)
}

// upload accepts multipart form data: "file" (required) and "title".
func (h *handler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	d, err := h.svc.Upload(c.Request.Context(), c.PostForm("title"), fh.Filename, f)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("upload %s: %v", fh.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, summary(d))
}

func (h *handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) stats(c *gin.Context) {
	id := c.Param("id")
	n, err := h.svc.ServedCount(c.Request.Context(), id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "served": n})
}
