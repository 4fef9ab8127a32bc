package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snapfeed/internal/models"

	"gorm.io/gorm"
)

// FeedLimit 首页最多展示的条数
const FeedLimit = 50

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("post requires text and an object key")
)

// PostService wraps the posts table. Every call runs under its own statement timeout
// and returns its pooled connection when the statement finishes.
type PostService struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPostService(db *gorm.DB, timeout time.Duration) *PostService {
	return &PostService{db: db, timeout: timeout}
}

func (s *PostService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Recent returns at most limit posts, newest id first. limit is clamped to FeedLimit.
func (s *PostService) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > FeedLimit {
		limit = FeedLimit
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Create inserts a post stamped with the current UTC time.
func (s *PostService) Create(ctx context.Context, text, key string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" || key == "" {
		return nil, ErrInvalidPost
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	post := &models.Post{
		TextContent: text,
		S3Key:       key,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// ImageKey looks up the object key of a post. A missing row or an empty key is
// reported as ErrPostNotFound.
func (s *PostService) ImageKey(ctx context.Context, id uint) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var post models.Post
	err := s.db.WithContext(ctx).Select("id", "s3_key").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrPostNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find post %d: %w", id, err)
	}
	if post.S3Key == "" {
		return "", ErrPostNotFound
	}
	return post.S3Key, nil
}

// Ping issues a trivial query.
func (s *PostService) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var one int
	return s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}
