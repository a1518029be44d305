package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports service liveness and cache connectivity
type HealthHandler struct {
	redis   *redis.Client
	started time.Time
}

func NewHealthHandler(redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redisClient, started: time.Now()}
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	cache := "disabled"
	if h.redis != nil {
		cache = "ok"
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			cache = "unreachable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).String(),
		"cache":  cache,
	})
}
