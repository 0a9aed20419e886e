package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateConversationResponseData 创建对话响应数据
type CreateConversationResponseData struct {
	Conversation ConversationInfo `json:"conversation"`
}

// CreateConversation 创建对话
// @Summary      创建对话
// @Description  为当前用户创建一个对话，同时在助手侧创建 thread
// @Tags         对话
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "{\"code\": 0, \"message\": \"Conversation created\", \"data\": {\"conversation\": {...}}}"
// @Failure      401  {object}  ErrorResponse  "未登录"
// @Failure      500  {object}  ErrorResponse  "存储失败"
// @Failure      502  {object}  ErrorResponse  "助手服务不可用"
// @Router       /api/chat/conversation [post]
func (h *Handler) CreateConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conv, err := h.chatService.CreateConversation(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "Conversation created",
		"data": CreateConversationResponseData{
			Conversation: toConversationInfo(conv),
		},
	})
}
