package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMessagesResponseData 消息列表响应数据
type ListMessagesResponseData struct {
	Messages []MessageInfo `json:"messages"`
}

// ListMessages 获取对话消息
// @Summary      对话消息
// @Description  按创建时间升序返回对话的全部消息，可能以未回复的用户消息结尾
// @Tags         对话
// @Produce      json
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse  "对话不存在"
// @Failure      500  {object}  ErrorResponse
// @Router       /api/chat/conversation/{id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.chatService.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": ListMessagesResponseData{
			Messages: toMessageInfoList(msgs),
		},
	})
}
