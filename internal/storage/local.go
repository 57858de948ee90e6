// internal/storage/local.go

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs under a directory on disk and serves them from
// the API's /uploads static route. Development fallback when S3 is off.
type LocalStore struct {
	uploadDir string
	baseURL   string
}

// NewLocalStore creates a disk-backed blob store rooted at uploadDir.
func NewLocalStore(uploadDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{uploadDir: uploadDir, baseURL: baseURL}, nil
}

func (s *LocalStore) Upload(_ context.Context, bucket, key, _ string, body io.Reader) (string, error) {
	dir := filepath.Join(s.uploadDir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dest, err := os.Create(filepath.Join(dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, body); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, bucket, key), nil
}

func (s *LocalStore) Delete(_ context.Context, publicURL string) error {
	urlPath := strings.TrimPrefix(publicURL, s.baseURL+"/uploads/")
	return os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(urlPath)))
}
