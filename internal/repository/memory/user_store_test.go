package memory

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/model/auth"
	authRepo "chatbot/internal/repository/auth"
)

func TestUserStore(t *testing.T) {
	Convey("UserStore", t, func() {
		ctx := context.Background()
		store := NewUserStore()

		user := &auth.User{Name: "Test", Email: " User@Test.com ", Password: "hash", Role: auth.RoleUser}
		So(store.Create(ctx, user), ShouldBeNil)
		So(user.Email, ShouldEqual, "user@test.com")

		Convey("邮箱查询不区分大小写", func() {
			found, err := store.FindByEmail(ctx, "USER@test.com")
			So(err, ShouldBeNil)
			So(found.ID, ShouldEqual, user.ID)
		})

		Convey("重复邮箱被拒绝", func() {
			err := store.Create(ctx, &auth.User{Email: "user@test.com"})
			So(err, ShouldEqual, authRepo.ErrDuplicateEmail)
		})

		Convey("更新最后登录时间", func() {
			at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
			So(store.UpdateLastLoginAt(ctx, user.ID, at), ShouldBeNil)

			found, _ := store.FindByID(ctx, user.ID)
			So(found.LastLoginAt.Equal(at), ShouldBeTrue)

			So(store.UpdateLastLoginAt(ctx, "missing", at), ShouldEqual, authRepo.ErrUserNotFound)
		})
	})
}
