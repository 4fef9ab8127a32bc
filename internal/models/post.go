package models

import (
	"time"
)

// Post 一条图文发布记录，创建后不可修改
type Post struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TextContent string    `gorm:"column:text_content;type:text;not null" json:"text_content"`
	S3Key       string    `gorm:"column:s3_key;size:512;not null;uniqueIndex" json:"s3_key"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Post) TableName() string { return "posts" }

// FeedItem is the view of a Post handed to the page renderer.
type FeedItem struct {
	ID        uint
	Text      string
	CreatedAt time.Time
	HasImage  bool
}

func (p Post) FeedItem() FeedItem {
	return FeedItem{
		ID:        p.ID,
		Text:      p.TextContent,
		CreatedAt: p.CreatedAt,
		HasImage:  p.S3Key != "",
	}
}
