package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores uploads in a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds the backend from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrServiceNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Name() string { return "cloudinary" }

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string, opts UploadOptions) (Result, error) {
	params := uploader.UploadParams{
		Folder:         opts.Folder,
		ResourceType:   "auto",
		Transformation: transformation(opts),
	}
	resp, err := c.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return Result{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return Result{}, fmt.Errorf("cloudinary upload: %w", errors.New(resp.Error.Message))
	}
	format := resp.Format
	if format == "" {
		format = formatOf(filename)
	}
	return Result{
		SecureURL: resp.SecureURL,
		PublicID:  resp.PublicID,
		Bytes:     int64(resp.Bytes),
		Format:    format,
	}, nil
}

// transformation renders the incoming resize/quality rule, e.g. "h_480,q_auto".
func transformation(opts UploadOptions) string {
	var parts []string
	if opts.MaxHeight > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", opts.MaxHeight))
	}
	if q := strings.TrimSpace(opts.Quality); q != "" {
		parts = append(parts, "q_"+q)
	}
	return strings.Join(parts, ",")
}
