// internal/storage/storage.go
// Blob storage behind a small interface so services can be tested without S3.

package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logical buckets. On S3 these become key prefixes inside one bucket,
// locally they become subdirectories.
const (
	BucketPostAttachments = "post-attachments"
	BucketAvatars         = "avatars"
)

// BlobStore uploads binaries and hands back publicly reachable URLs.
type BlobStore interface {
	// Upload stores body under bucket/key and returns the public URL.
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)

	// Delete removes a previously uploaded blob by its public URL.
	// Used for compensating deletion when a post insert fails.
	Delete(ctx context.Context, publicURL string) error
}

// NewObjectKey generates a collision-resistant storage key for an uploaded
// file, keeping the original extension.
func NewObjectKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
}

// ContentTypeFor resolves a MIME type from the file name, falling back to
// octet-stream for unknown extensions.
func ContentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
