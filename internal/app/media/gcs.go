package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCS stores uploads in a Google Cloud Storage bucket. Objects are keyed
// folder/<uuid>.<ext> and served from the public base URL when one is set.
type GCS struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCS connects with credentialsFile when given, otherwise with
// application default credentials.
func NewGCS(ctx context.Context, bucket, publicBaseURL, credentialsFile string) (*GCS, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, ErrServiceNotConfigured
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}, nil
}

func (g *GCS) Name() string { return "gcs" }

// Close releases the storage client.
func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) Upload(ctx context.Context, r io.Reader, filename string, opts UploadOptions) (Result, error) {
	format := formatOf(filename)
	key := path.Join(opts.Folder, uuid.NewString())
	if format != "" {
		key += "." + format
	}

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return Result{}, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return Result{
		SecureURL: g.publicURL(key),
		PublicID:  key,
		Bytes:     n,
		Format:    format,
	}, nil
}

func (g *GCS) publicURL(key string) string {
	if g.publicBaseURL != "" {
		return g.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	}
	return ""
}
