// Package archive stores raw uploaded statements in Google Cloud Storage.
// Archival is out of band: the analysis pipeline treats it as best-effort.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSArchiver writes statement bytes under uploads/YYYY/MM/DD/ in a bucket.
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

// NewGCSArchiver creates an archiver for the given bucket. Credentials come
// from the environment (application default credentials).
func NewGCSArchiver(ctx context.Context, bucket string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive.NewGCSArchiver: storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket}, nil
}

// Archive uploads the bytes and returns the gs:// URI of the object.
func (a *GCSArchiver) Archive(ctx context.Context, fileName, mimeType string, data []byte) (string, error) {
	objectName := fmt.Sprintf("uploads/%s/%s-%s",
		time.Now().Format("2006/01/02"), uuid.NewString(), filepath.Base(fileName))

	wc := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = mimeType

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", fmt.Errorf("archive.Archive: write object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("archive.Archive: close writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// Close releases the underlying client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
