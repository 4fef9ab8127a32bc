package storage

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// BucketStore adapts a gocloud blob.Bucket to Store. Both the s3 and local drivers
// are built on it.
type BucketStore struct {
	bucket *blob.Bucket
}

func NewBucketStore(bucket *blob.Bucket) *BucketStore {
	return &BucketStore{bucket: bucket}
}

func (s *BucketStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = DefaultContentType
	}

	// 取消 ctx 后再 Close 会放弃写入，对象不会以不完整的状态出现
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("open writer %s: %w", key, err)
	}

	n, err := io.Copy(w, body)
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("got %d bytes, expected %d", n, size)
	}
	if err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *BucketStore) Get(ctx context.Context, key string) (*Object, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("get %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	contentType := r.ContentType()
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Object{Body: r, ContentType: contentType, Size: r.Size()}, nil
}

func (s *BucketStore) Close() error {
	return s.bucket.Close()
}
