package chat

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatbot/internal/ai"
	httputil "chatbot/internal/pkg/http"
)

// MaxMessageLength 单条消息最大字符数
const MaxMessageLength = 32000

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"` // 消息内容（必填）
}

// SendMessageResponseData 发送消息响应数据
// mode 只在 mock 模式下返回
type SendMessageResponseData struct {
	AssistantResponse MessageInfo `json:"assistantResponse"`
	Mode              string      `json:"mode,omitempty"`
}

// SendMessage 发送消息
// @Summary      发送消息
// @Description  保存用户消息，等待助手完成 run 后保存并返回助手回复
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "对话ID"
// @Param        request  body      SendMessageRequest  true  "消息内容"
// @Success      200      {object}  map[string]interface{}  "{\"code\": 0, \"data\": {\"assistantResponse\": {...}, \"mode\": \"mock\"}}"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      404      {object}  ErrorResponse  "对话不存在"
// @Failure      500      {object}  ErrorResponse  "run 失败或存储失败"
// @Failure      502      {object}  ErrorResponse  "助手服务调用失败"
// @Failure      504      {object}  ErrorResponse  "等待助手超时"
// @Router       /api/chat/conversation/{id}/message [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(40001, httputil.KindInvalidRequest, "Invalid request body", err.Error()))
		return
	}

	// 去掉首尾空白只用于校验，保存和转发的是原文
	text := strings.TrimSpace(req.Message)
	if text == "" {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(40002, httputil.KindInvalidRequest, "Message must not be empty"))
		return
	}
	if len([]rune(text)) > MaxMessageLength {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(40003, httputil.KindInvalidRequest, "Message is too long"))
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	data := SendMessageResponseData{
		AssistantResponse: toMessageInfo(result.Message),
	}
	if result.Mode == ai.ModeMock {
		data.Mode = string(ai.ModeMock)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}
