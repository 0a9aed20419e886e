package chat

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chatbot/internal/model"
	"chatbot/internal/pkg/apperr"
	"chatbot/internal/pkg/ctxutil"
	httputil "chatbot/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// ConversationInfo 对话信息 DTO
type ConversationInfo struct {
	ID        string `json:"id"`         // 对话ID
	UserID    string `json:"user_id"`    // 创建者ID
	ThreadID  string `json:"thread_id"`  // 外部 thread id
	CreatedAt string `json:"created_at"` // 创建时间
}

// toConversationInfo 将 Conversation 实体转换为 DTO
func toConversationInfo(conv *model.Conversation) ConversationInfo {
	return ConversationInfo{
		ID:        conv.ID,
		UserID:    conv.UserID,
		ThreadID:  conv.ThreadID,
		CreatedAt: conv.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toConversationInfoList(convs []*model.Conversation) []ConversationInfo {
	list := make([]ConversationInfo, len(convs))
	for i, conv := range convs {
		list[i] = toConversationInfo(conv)
	}
	return list
}

// MessageInfo 消息 DTO
type MessageInfo struct {
	ID             string `json:"id"`              // 消息ID
	ConversationID string `json:"conversation_id"` // 对话ID
	Role           string `json:"role"`            // user/assistant
	Content        string `json:"content"`         // 内容
	CreatedAt      string `json:"created_at"`      // 创建时间
}

// toMessageInfo 将 Message 实体转换为 DTO
func toMessageInfo(msg *model.Message) MessageInfo {
	return MessageInfo{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toMessageInfoList(msgs []*model.Message) []MessageInfo {
	list := make([]MessageInfo, len(msgs))
	for i, msg := range msgs {
		list[i] = toMessageInfo(msg)
	}
	return list
}

// errorStatus 错误类别对应的 HTTP 状态码和业务错误码
var errorStatus = map[apperr.Kind]struct {
	status int
	code   int
}{
	apperr.KindConversationNotFound: {http.StatusNotFound, 40401},
	apperr.KindAdapter:              {http.StatusBadGateway, 50201},
	apperr.KindRunFailed:            {http.StatusInternalServerError, 50002},
	apperr.KindTimeout:              {http.StatusGatewayTimeout, 50401},
	apperr.KindPersistence:          {http.StatusInternalServerError, 50001},
}

// writeError 按错误类别写响应，未分类的错误按 500 处理
func writeError(c *gin.Context, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		if mapping, ok := errorStatus[e.Kind]; ok {
			detail := e.Detail
			// 存储层错误不向客户端暴露原因
			if detail == "" && e.Cause != nil && e.Kind != apperr.KindPersistence {
				detail = e.Cause.Error()
			}
			c.JSON(mapping.status, httputil.NewErrorResponse(mapping.code, string(e.Kind), e.Message, detail))
			return
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unclassified error")
	c.JSON(http.StatusInternalServerError, httputil.NewErrorResponse(50000, httputil.KindInternal, "Internal server error"))
}

// currentUserID 由认证中间件注入
func currentUserID(c *gin.Context) (string, bool) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httputil.NewErrorResponse(40101, httputil.KindUnauthorized, "Access denied. No token provided."))
		return "", false
	}
	return userID, true
}
