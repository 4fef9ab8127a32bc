package handlers

import (
	"context"
	"mime/multipart"

	"snapfeed/internal/models"
	"snapfeed/internal/services"

	"github.com/gin-gonic/gin"
)

// PostRepository is the slice of services.PostService the handlers need.
type PostRepository interface {
	Recent(ctx context.Context, limit int) ([]models.Post, error)
	Create(ctx context.Context, text, key string) (*models.Post, error)
	ImageKey(ctx context.Context, id uint) (string, error)
	Ping(ctx context.Context) error
}

// Uploader stores an uploaded image and reports the key it was stored under.
type Uploader interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*services.ImageUploadResult, error)
}

// Render helper to inject common variables
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if _, ok := obj["Title"]; !ok {
		obj["Title"] = "snapfeed"
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}
