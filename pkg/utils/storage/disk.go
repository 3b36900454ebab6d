package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes documents under a local directory. References are
// slash-separated paths relative to that directory.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload dir: %v", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(ctx context.Context, d Document) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	key := objectKey(d, time.Now())
	full := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(d.Body, MaxDocumentSize+1))
	if err != nil {
		return "", err
	}
	if n > MaxDocumentSize {
		os.Remove(full)
		return "", fmt.Errorf("file size too large. Maximum size is %d bytes", MaxDocumentSize)
	}
	return key, nil
}

func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if strings.Contains(ref, "..") {
		return fmt.Errorf("invalid document reference")
	}
	return os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
}
