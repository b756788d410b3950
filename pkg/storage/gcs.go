// Package storage keeps product images in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const (
	objectPrefix  = "products/"
	publicBaseURL = "https://storage.googleapis.com"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Format   string `json:"format"`
	Bytes    int64  `json:"bytes"`
}

// ImageStore uploads and deletes image objects. A nil *ImageStore is valid and
// fails every call as not configured.
type ImageStore struct {
	client *storage.Client
	bucket string
}

// NewClient opens a GCS client, using credentialsFile when given and
// application default credentials otherwise.
func NewClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return storage.NewClient(ctx, opts...)
}

func NewImageStore(client *storage.Client, bucket string) *ImageStore {
	return &ImageStore{client: client, bucket: strings.TrimSpace(bucket)}
}

func (s *ImageStore) configured() error {
	if s == nil || s.client == nil || s.bucket == "" {
		return global.Upstream("object storage is not configured", nil)
	}
	return nil
}

// ImageExtension returns the object extension for an allowed image type.
func ImageExtension(contentType string) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", global.InvalidArgument("file", "Only image files are allowed (jpeg, png, gif, webp)")
	}
	return ext, nil
}

// Upload writes r as products/<uuid><ext> and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, contentType string, r io.Reader) (*UploadResult, error) {
	ext, err := ImageExtension(contentType)
	if err != nil {
		return nil, err
	}
	if err := s.configured(); err != nil {
		return nil, err
	}

	objectPath := objectPrefix + uuid.NewString() + ext
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return nil, global.Upstream("upload image", err)
	}
	if err := w.Close(); err != nil {
		return nil, global.Upstream("upload image", err)
	}

	return &UploadResult{
		URL:      s.PublicURL(objectPath),
		PublicID: objectPath,
		Format:   strings.TrimPrefix(ext, "."),
		Bytes:    n,
	}, nil
}

// Delete removes the object. A missing object is not an error.
func (s *ImageStore) Delete(ctx context.Context, publicID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	obj := strings.TrimSpace(publicID)
	if obj == "" {
		return global.InvalidArgument("publicId", "publicId is required")
	}
	err := s.client.Bucket(s.bucket).Object(obj).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return global.Upstream("delete image", err)
	}
	return nil
}

func (s *ImageStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", publicBaseURL, s.bucket, objectPath)
}

// ObjectFromURL returns the object path of a URL this store produced.
func (s *ImageStore) ObjectFromURL(url string) (string, bool) {
	if s == nil || s.bucket == "" {
		return "", false
	}
	prefix := fmt.Sprintf("%s/%s/", publicBaseURL, s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
