package service

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/model/auth"
	"chatbot/internal/repository/memory"
)

func TestAuthService(t *testing.T) {
	Convey("AuthService", t, func() {
		ctx := context.Background()
		svc := NewAuthService(memory.NewUserStore(), "test-secret", time.Hour)

		user, created, err := svc.EnsureUser(ctx, "Test User", "user@test.com", "password123", auth.RoleUser)
		So(err, ShouldBeNil)
		So(created, ShouldBeTrue)
		So(user.Password, ShouldNotEqual, "password123")

		Convey("重复 EnsureUser 不会新建", func() {
			again, created, err := svc.EnsureUser(ctx, "Other", "USER@test.com", "whatever", auth.RoleAdmin)
			So(err, ShouldBeNil)
			So(created, ShouldBeFalse)
			So(again.ID, ShouldEqual, user.ID)
		})

		Convey("正确的凭证登录成功并签发 Token", func() {
			result, err := svc.Login(ctx, "user@test.com", "password123")
			So(err, ShouldBeNil)
			So(result.Token, ShouldNotBeEmpty)
			So(result.ExpiresIn, ShouldEqual, time.Hour)
			So(result.User.LastLoginAt, ShouldNotBeNil)

			userID, err := svc.ValidateToken(result.Token)
			So(err, ShouldBeNil)
			So(userID, ShouldEqual, user.ID)
		})

		Convey("密码错误与邮箱不存在返回同一错误", func() {
			_, err := svc.Login(ctx, "user@test.com", "wrong")
			So(err, ShouldEqual, ErrInvalidCredentials)

			_, err = svc.Login(ctx, "nobody@test.com", "password123")
			So(err, ShouldEqual, ErrInvalidCredentials)
		})

		Convey("查询不存在的用户", func() {
			_, err := svc.GetUserByID(ctx, "missing")
			So(err, ShouldEqual, ErrUserNotFound)

			found, err := svc.GetUserByID(ctx, user.ID)
			So(err, ShouldBeNil)
			So(found.Email, ShouldEqual, "user@test.com")
		})
	})
}
