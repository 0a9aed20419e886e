package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httputil "chatbot/internal/pkg/http"
)

// Home 服务标识
// @Summary  服务标识
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   / [get]
func Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "AI Chatbot Backend Server is Running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound 未匹配路由
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, httputil.NewErrorResponse(
		40400, httputil.KindNotFound,
		fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.RequestURI()),
	))
}
