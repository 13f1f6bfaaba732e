package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSourceFileMissing             = errors.New("source file does not exist")
	ErrUnsupportedFileRepresentation = errors.New("unsupported file representation")
	ErrServiceNotConfigured          = errors.New("media service is not configured")
)

// DefaultFolder namespaces uploads when no folder is configured.
const DefaultFolder = "StudyPlanet"

// Result describes a stored object.
type Result struct {
	SecureURL string `json:"secureUrl"`
	PublicID  string `json:"publicId"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
	Provider  string `json:"provider"`
}

// UploadOptions are passed through to the backend.
type UploadOptions struct {
	Folder    string
	MaxHeight int
	Quality   string
}

// Uploader is an object-storage backend.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, r io.Reader, filename string, opts UploadOptions) (Result, error)
}

// Config holds ingest defaults.
type Config struct {
	Folder    string
	MaxHeight int
	Quality   string
	TempDir   string // where movable handles are materialized
}

// Ingestor turns a FileHandle into a durable URL. A disabled Ingestor
// (no backend) fails every call with ErrServiceNotConfigured without I/O.
type Ingestor struct {
	up  Uploader
	cfg Config
	log *zap.Logger
}

// New returns an Ingestor that stores through up.
func New(up Uploader, cfg Config, log *zap.Logger) *Ingestor {
	if strings.TrimSpace(cfg.Folder) == "" {
		cfg.Folder = DefaultFolder
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "studyplanet-uploads")
	}
	return &Ingestor{up: up, cfg: cfg, log: log}
}

// Disabled returns the Ingestor used when no backend credentials are set.
func Disabled(log *zap.Logger) *Ingestor {
	return &Ingestor{log: log}
}

// Enabled reports whether a backend is configured.
func (i *Ingestor) Enabled() bool { return i != nil && i.up != nil }

// Provider names the backend, or "disabled".
func (i *Ingestor) Provider() string {
	if !i.Enabled() {
		return "disabled"
	}
	return i.up.Name()
}

// Ingest uploads h into folder (the configured folder when empty).
func (i *Ingestor) Ingest(ctx context.Context, h FileHandle, folder string) (Result, error) {
	if !i.Enabled() {
		return Result{}, ErrServiceNotConfigured
	}
	h, err := resolve(h)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(folder) == "" {
		folder = i.cfg.Folder
	}
	opts := UploadOptions{Folder: folder, MaxHeight: i.cfg.MaxHeight, Quality: i.cfg.Quality}

	switch v := h.(type) {
	case PathRef:
		name := v.Name
		if name == "" {
			name = filepath.Base(v.Path)
		}
		return i.uploadPath(ctx, v.Path, name, opts)

	case InMemoryBytes:
		return i.upload(ctx, bytes.NewReader(v.Data), v.Name, opts)

	case MovableHandle:
		dst, err := i.tempPath(v.Name)
		if err != nil {
			return Result{}, err
		}
		defer i.removeTemp(dst)
		if err := v.MoveTo(dst); err != nil {
			return Result{}, fmt.Errorf("move upload to %s: %w", dst, err)
		}
		return i.uploadPath(ctx, dst, v.Name, opts)
	}
	return Result{}, ErrUnsupportedFileRepresentation
}

func (i *Ingestor) uploadPath(ctx context.Context, path, name string, opts UploadOptions) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrSourceFileMissing, path)
		}
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return i.upload(ctx, f, name, opts)
}

func (i *Ingestor) upload(ctx context.Context, r io.Reader, name string, opts UploadOptions) (Result, error) {
	res, err := i.up.Upload(ctx, r, name, opts)
	if err != nil {
		return Result{}, err
	}
	res.Provider = i.up.Name()
	i.log.Info("media uploaded",
		zap.String("provider", res.Provider),
		zap.String("folder", opts.Folder),
		zap.String("public_id", res.PublicID),
		zap.Int64("bytes", res.Bytes))
	return res, nil
}

func (i *Ingestor) tempPath(name string) (string, error) {
	if err := os.MkdirAll(i.cfg.TempDir, 0o700); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return filepath.Join(i.cfg.TempDir, uuid.NewString()+strings.ToLower(filepath.Ext(name))), nil
}

// removeTemp never fails the upload; a leftover temp file is only logged.
func (i *Ingestor) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		i.log.Warn("failed to remove temp upload", zap.String("path", path), zap.Error(err))
	}
}

// formatOf returns the lowercase extension of name without the dot.
func formatOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
