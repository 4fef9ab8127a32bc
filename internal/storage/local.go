package storage

import (
	"errors"
	"fmt"
	"os"

	"gocloud.dev/blob/fileblob"
)

// AttrsSuffix marks the sidecar fileblob writes next to each object to hold its
// content type.
const AttrsSuffix = ".attrs"

// NewLocalStore keeps objects under dir, one file per key plus an AttrsSuffix
// sidecar. Keys containing "../" are escaped by fileblob and never leave dir.
func NewLocalStore(dir string) (*BucketStore, error) {
	if dir == "" {
		return nil, errors.New("LOCAL_STORAGE_DIR is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{NoTempDir: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	return NewBucketStore(bucket), nil
}
