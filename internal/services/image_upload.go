package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"snapfeed/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyFile = errors.New("uploaded file is empty")
	ErrNotImage  = errors.New("uploaded file is not an image")
)

// ImageUploadResult 上传结果
type ImageUploadResult struct {
	Key         string
	ContentType string
	Size        int64
}

// ImageUploader 生成对象 key 并把图片写入对象存储
type ImageUploader struct {
	store  storage.Store
	prefix string
}

func NewImageUploader(store storage.Store, prefix string) *ImageUploader {
	return &ImageUploader{store: store, prefix: prefix}
}

// Upload 读取 multipart 文件并上传
// 返回 ErrEmptyFile / ErrNotImage 表示校验失败，此时不会写对象存储
func (u *ImageUploader) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageUploadResult, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	contentType := DetectImageType(header.Header.Get("Content-Type"), data)
	if contentType == "" {
		return nil, ErrNotImage
	}

	key := storage.NewKey(u.prefix, header.Filename)
	if err := u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &ImageUploadResult{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// DetectImageType returns the content type to store the object under, or "" when
// the upload is not an image. A concrete image/* type declared by the client wins;
// otherwise the bytes are sniffed.
func DetectImageType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && isConcreteImage(mt) {
		return mt
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if isConcreteImage(m.String()) {
			return m.String()
		}
	}
	return ""
}

// svgType is refused outright: an SVG served from our origin can carry script.
const svgType = "image/svg+xml"

func isConcreteImage(mt string) bool {
	return strings.HasPrefix(mt, "image/") && mt != "image/*" && mt != svgType
}
