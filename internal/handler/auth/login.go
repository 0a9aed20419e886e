package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httputil "chatbot/internal/pkg/http"
	"chatbot/internal/service"
)

// LoginRequest 用户登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // 邮箱（必填）
	Password string `json:"password" binding:"required"`    // 密码（必填）
}

// LoginResponseData 登录响应数据
// Token 只通过 HttpOnly Cookie 下发，不出现在响应体中
type LoginResponseData struct {
	User UserInfo `json:"user"`
}

// Login 用户登录
// @Summary      用户登录
// @Description  邮箱密码登录，成功后在 HttpOnly Cookie 中写入会话 Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "登录请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(
			40001, httputil.KindInvalidRequest, "Invalid request body", err.Error(),
		))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, httputil.NewErrorResponse(
				40103, httputil.KindUnauthorized, "Invalid email or password",
			))
			return
		}

		log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, httputil.NewErrorResponse(
			50000, httputil.KindInternal, "Internal server error during login",
		))
		return
	}

	h.setSessionCookie(c, resp.Token, int(resp.ExpiresIn.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "Login successful",
		"data": LoginResponseData{
			User: toUserInfo(resp.User),
		},
	})
}
