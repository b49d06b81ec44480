package document

import (
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Document is the persistent metadata record for a stored file. The bytes
// live in a storage backend under FileKey.
type Document struct {
	ID                 string    `json:"id" bson:"id"`
	Title              string    `json:"title" bson:"title"`
	Filename           string    `json:"filename" bson:"filename"`
	FileKey            string    `json:"fileKey" bson:"fileKey"`
	FileSize           int64     `json:"fileSize" bson:"fileSize"`
	FileHash           string    `json:"fileHash,omitempty" bson:"fileHash,omitempty"`
	ContentType        string    `json:"contentType" bson:"contentType"`
	ContentDisposition string    `json:"contentDisposition" bson:"contentDisposition"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"

	defaultContentType = "application/octet-stream"
)

// DefaultInlineContentTypes are rendered by browsers rather than downloaded.
var DefaultInlineContentTypes = []string{"application/pdf", "text/plain"}

// ContentTypeFor guesses a MIME type from the filename extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return defaultContentType
	}
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return defaultContentType
	}
	// drop parameters such as "; charset=utf-8"
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// DispositionFor returns "inline" for content types in inlineTypes and
// "attachment" for everything else.
func DispositionFor(contentType string, inlineTypes []string) string {
	mt := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mt = parsed
	}
	for _, t := range inlineTypes {
		if strings.EqualFold(strings.TrimSpace(t), mt) {
			return DispositionInline
		}
	}
	return DispositionAttachment
}

// ContentDispositionHeader renders the Content-Disposition value for d.
// Non-ASCII filenames get an extra RFC 5987 filename* parameter.
func ContentDispositionHeader(d *Document) string {
	disp := d.ContentDisposition
	if disp == "" {
		disp = DispositionAttachment
	}
	name := d.Filename
	if isASCII(name) {
		return fmt.Sprintf("%s; filename=%s", disp, quoteFilename(name))
	}
	return fmt.Sprintf("%s; filename=%s; filename*=UTF-8''%s", disp, quoteFilename(name), url.PathEscape(name))
}

// quoteFilename renders an RFC 6266 quoted-string. Control characters and
// non-ASCII runes become '_'.
func quoteFilename(name string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f || r > 127:
			b.WriteByte('_')
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
