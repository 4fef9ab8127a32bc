package handlers

import (
	"errors"
	"net/http"

	"snapfeed/internal/services"
	"snapfeed/internal/storage"
	"snapfeed/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageHandler 图片代理，客户端不直接访问对象存储
type ImageHandler struct {
	posts PostRepository
	store storage.Store
}

func NewImageHandler(posts PostRepository, store storage.Store) *ImageHandler {
	return &ImageHandler{posts: posts, store: store}
}

// Proxy 流式返回帖子图片 (GET /image/:id)
func (h *ImageHandler) Proxy(c *gin.Context) {
	if !storage.Configured(h.store) {
		c.String(http.StatusInternalServerError, "image storage not configured")
		return
	}

	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "not found")
		return
	}

	ctx := c.Request.Context()
	key, err := h.posts.ImageKey(ctx, id)
	if errors.Is(err, services.ErrPostNotFound) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		zap.L().Error("lookup image key failed", zap.Uint("id", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	obj, err := h.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		zap.L().Warn("object missing for post", zap.Uint("id", id), zap.String("key", key))
		c.String(http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		zap.L().Error("fetch object failed", zap.Uint("id", id), zap.String("key", key), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control":           "public, max-age=300",
		"X-Content-Type-Options":  "nosniff",
		"Content-Security-Policy": "default-src 'none'; sandbox",
	})
}
