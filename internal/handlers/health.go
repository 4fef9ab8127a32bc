package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	posts PostRepository
}

func NewHealthHandler(posts PostRepository) *HealthHandler {
	return &HealthHandler{posts: posts}
}

// Live never touches dependencies.
func (h *HealthHandler) Live(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports database reachability.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.posts.Ping(c.Request.Context()); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.String(http.StatusOK, "db ok")
}
