// Package archive keeps a copy of uploaded chat attachments in Cloud Storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const (
	uploadPrefix  = "uploads"
	uploadTimeout = 2 * time.Minute
)

// GCSArchiver writes attachments to a bucket under uploads/YYYY/MM/DD/.
type GCSArchiver struct {
	client    *storage.Client
	bucket    string
	newWriter func(ctx context.Context, object, contentType string) io.WriteCloser
	now       func() time.Time
}

// NewGCSArchiver opens a storage client. Without options it uses Application
// Default Credentials.
func NewGCSArchiver(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSArchiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewGCSArchiver: bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSArchiver: create storage client: %w", err)
	}

	a := &GCSArchiver{client: client, bucket: bucket, now: time.Now}
	a.newWriter = func(ctx context.Context, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return a, nil
}

// Archive uploads data and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := ObjectName(a.now(), name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.newWriter(ctx, object, contentType)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Archive: copy %s to GCS writer: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Archive: finalize upload %s: %w", object, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, object), nil
}

// Close closes the storage client.
func (a *GCSArchiver) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// ObjectName builds uploads/YYYY/MM/DD/<uuid>-<name> for a file received at t.
func ObjectName(t time.Time, name string) string {
	return path.Join(uploadPrefix, t.UTC().Format("2006/01/02"), uuid.New().String()+"-"+cleanName(name))
}

func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '/' {
			return -1
		}
		if r == ' ' {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
