package router

import (
	"snapfeed/internal/handlers"
	"snapfeed/internal/metrics"
	"snapfeed/internal/middleware"
	"snapfeed/internal/render"
	"snapfeed/internal/storage"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Dependencies 由 main 显式构造后注入
type Dependencies struct {
	Posts          handlers.PostRepository
	Uploader       handlers.Uploader
	Store          storage.Store
	MaxUploadBytes int64
}

// New builds the engine with middleware, templates and routes.
func New(deps Dependencies) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.Middleware())
	r.Use(middleware.BodyLimit(deps.MaxUploadBytes))
	// 图片已是压缩格式，不再 gzip
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/image/", "/metrics"})))

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	RegisterRoutes(r, deps)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Uploader)
	imageHandler := handlers.NewImageHandler(deps.Posts, deps.Store)
	healthHandler := handlers.NewHealthHandler(deps.Posts)

	r.GET("/", postHandler.List)            // 首页 - 最新 50 条
	r.POST("/submit", postHandler.Create)   // 发布
	r.GET("/image/:id", imageHandler.Proxy) // 图片代理

	r.GET("/healthcheck", healthHandler.Live) // 存活检查
	r.GET("/dbcheck", healthHandler.Ready)    // 就绪检查（数据库）
	r.GET("/metrics", metrics.Handler())
}
