package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 依赖健康探测
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	mode      string
	storeKind string
	deps      map[string]Pinger
}

// NewHealthHandler 创建健康检查处理器
// mode 为助手适配器模式，storeKind 为存储类型（mongo/memory）
func NewHealthHandler(mode, storeKind string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		mode:      mode,
		storeKind: storeKind,
		deps:      deps,
	}
}

// Health 健康检查
// @Summary  存活检查
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查，任一依赖不可用返回 503
// @Summary  就绪检查
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Failure  503  {object}  map[string]interface{}
// @Router   /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status": status,
		"mode":   h.mode,
		"store":  h.storeKind,
		"checks": checks,
	})
}
