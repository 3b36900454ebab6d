package storage

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const MaxDocumentSize = 10 * 1024 * 1024 // 10MB

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Document is a transaction attachment on its way to storage.
type Document struct {
	TransactionID uint
	Kind          string
	Filename      string
	ContentType   string
	Size          int64
	Body          io.Reader
}

func (d Document) Validate() error {
	if d.Size > MaxDocumentSize {
		return fmt.Errorf("file size too large. Maximum size is %d bytes", MaxDocumentSize)
	}
	if d.ContentType != "" && !allowedTypes[d.ContentType] {
		return fmt.Errorf("invalid file type. Allowed types are: pdf, jpeg, png")
	}
	return nil
}

// objectKey builds transactions/<id>/<kind>/<unique>-<slug><ext>.
func objectKey(d Document, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(d.Filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(d.Filename), filepath.Ext(d.Filename)))
	if base == "" {
		base = "document"
	}
	unique := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.New().String())
	return path.Join("transactions", fmt.Sprint(d.TransactionID), slug.Make(d.Kind), unique+"-"+base+ext)
}
