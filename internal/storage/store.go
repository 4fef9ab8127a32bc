package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"snapfeed/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultContentType = "application/octet-stream"

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrNotConfigured  = errors.New("object store not configured")
)

// Object is a fetched blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store 对象存储抽象，上层不感知具体后端协议
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
}

// New picks the backend from STORAGE_DRIVER. An s3 driver without a bucket yields a
// store that refuses every call.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "s3":
		if cfg.Bucket == "" {
			zap.L().Warn("S3_BUCKET is empty, image uploads and downloads are disabled")
			return Unconfigured{}, nil
		}
		return NewS3Store(ctx, cfg)
	case "local":
		return NewLocalStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Driver)
	}
}

// Unconfigured fails every operation with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Put(context.Context, string, io.Reader, int64, string) error {
	return ErrNotConfigured
}

func (Unconfigured) Get(context.Context, string) (*Object, error) {
	return nil, ErrNotConfigured
}

// Configured reports whether store can serve objects at all.
func Configured(store Store) bool {
	switch store.(type) {
	case nil, Unconfigured, *Unconfigured:
		return false
	}
	return true
}

// NewKey returns prefix/<uuid hex><ext>. ext is the lower-cased extension of
// filename, ".bin" when there is none.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." {
		ext = ".bin"
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
