package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT 生成与校验", t, func() {
		j := NewJWT("test-secret", time.Hour)

		Convey("有效 Token 能还原用户信息", func() {
			token, err := j.GenerateToken("u-1", "user@test.com")
			So(err, ShouldBeNil)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u-1")
			So(claims.Email, ShouldEqual, "user@test.com")
		})

		Convey("不同密钥签发的 Token 无效", func() {
			token, err := NewJWT("other-secret", time.Hour).GenerateToken("u-1", "user@test.com")
			So(err, ShouldBeNil)

			_, err = j.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("过期 Token 返回 ErrExpiredToken", func() {
			token, err := j.GenerateToken("u-1", "user@test.com")
			So(err, ShouldBeNil)

			j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
			_, err = j.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("乱码返回 ErrInvalidToken", func() {
			_, err := j.ValidateToken("not-a-token")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}
