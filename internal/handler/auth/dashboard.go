package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chatbot/internal/pkg/ctxutil"
	httputil "chatbot/internal/pkg/http"
	"chatbot/internal/service"
)

// DashboardInfo 首页信息
type DashboardInfo struct {
	Greeting  string `json:"greeting"`
	LastLogin string `json:"last_login,omitempty"`
}

// DashboardResponseData 首页响应数据
type DashboardResponseData struct {
	User      UserInfo      `json:"user"`
	Dashboard DashboardInfo `json:"dashboard"`
}

// Dashboard 当前用户首页
// @Summary      用户首页
// @Description  返回欢迎信息和当前用户
// @Tags         认证
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/dashboard/home [get]
func (h *Handler) Dashboard(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httputil.NewErrorResponse(40101, httputil.KindUnauthorized, "Access denied. No token provided."))
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, httputil.NewErrorResponse(40402, httputil.KindNotFound, "User not found"))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load user")
		c.JSON(http.StatusInternalServerError, httputil.NewErrorResponse(50000, httputil.KindInternal, "Error fetching user dashboard"))
		return
	}

	dashboard := DashboardInfo{
		Greeting: fmt.Sprintf("Hello %s, you're successfully logged in!", user.Name),
	}
	if user.LastLoginAt != nil {
		dashboard.LastLogin = user.LastLoginAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": fmt.Sprintf("Welcome back, %s!", user.Name),
		"data": DashboardResponseData{
			User:      toUserInfo(user),
			Dashboard: dashboard,
		},
	})
}
