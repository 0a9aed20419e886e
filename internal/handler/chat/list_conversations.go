package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListConversationsResponseData 对话列表响应数据
type ListConversationsResponseData struct {
	Conversations []ConversationInfo `json:"conversations"`
}

// ListConversations 当前用户的对话列表
// @Summary      对话列表
// @Description  返回当前用户的全部对话，最新的在前
// @Tags         对话
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/chat/conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	convs, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListConversationsResponseData{
			Conversations: toConversationInfoList(convs),
		},
	})
}
