package handlers

import (
	"errors"
	"net/http"
	"strings"

	"snapfeed/internal/metrics"
	"snapfeed/internal/models"
	"snapfeed/internal/render"
	"snapfeed/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	posts    PostRepository
	uploader Uploader
}

func NewPostHandler(posts PostRepository, uploader Uploader) *PostHandler {
	return &PostHandler{posts: posts, uploader: uploader}
}

// List 首页：最近 50 条，id 倒序
// 数据库异常时降级为空列表，页面照常返回 200
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.Recent(c.Request.Context(), services.FeedLimit)
	if err != nil {
		zap.L().Error("load feed failed, rendering empty feed", zap.Error(err))
		posts = nil
	}

	items := make([]models.FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, p.FeedItem())
	}

	Render(c, http.StatusOK, render.FeedPage, gin.H{
		"Title": "snapfeed",
		"Posts": items,
	})
}

type submitForm struct {
	TextContent string `form:"text_content" binding:"required"`
}

// Create 处理发布 (POST /submit)
// 任何结果都重定向回首页，校验失败和内部错误只记日志
func (h *PostHandler) Create(c *gin.Context) {
	var form submitForm
	if err := c.ShouldBind(&form); err != nil {
		if isBodyTooLarge(err) {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		h.reject(c, "missing text_content")
		return
	}

	text := strings.TrimSpace(form.TextContent)
	if text == "" {
		h.reject(c, "blank text_content")
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		h.reject(c, "missing photo")
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	result, err := h.uploader.Upload(ctx, file, header)
	switch {
	case errors.Is(err, services.ErrEmptyFile), errors.Is(err, services.ErrNotImage):
		h.reject(c, err.Error())
		return
	case err != nil:
		metrics.UploadFailures.Inc()
		zap.L().Error("image upload failed", zap.String("filename", header.Filename), zap.Error(err))
		c.Redirect(http.StatusFound, "/")
		return
	}

	post, err := h.posts.Create(ctx, text, result.Key)
	if err != nil {
		// 对象已写入但没有对应记录，留给离线清理
		metrics.InsertFailures.Inc()
		zap.L().Error("insert post failed, object left orphaned", zap.String("key", result.Key), zap.Error(err))
		c.Redirect(http.StatusFound, "/")
		return
	}

	metrics.PostsCreated.Inc()
	zap.L().Info("post created",
		zap.Uint("id", post.ID),
		zap.String("key", result.Key),
		zap.String("content_type", result.ContentType),
		zap.Int64("size", result.Size),
	)
	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) reject(c *gin.Context, reason string) {
	metrics.RejectedSubmissions.Inc()
	zap.L().Debug("submission rejected", zap.String("reason", reason))
	c.Redirect(http.StatusFound, "/")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
