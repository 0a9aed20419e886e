package middleware

import (
	"github.com/gin-gonic/gin"

	"chatbot/internal/pkg/id"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// RequestID 为每个请求分配ID，客户端传入时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}
