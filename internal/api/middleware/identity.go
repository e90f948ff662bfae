package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
)

// ゲートウェイが認証後に付与するヘッダー
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const actorContextKey = "actor"

// Identity は利用者をヘッダーから読み取りコンテキストに保存する
// 利用者IDは UUID に正規化し、解釈できないものは 401 で拒否する
// ロール未指定は一般ユーザーとして扱う
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromHeaders(c.Request().Header)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// ActorFrom はコンテキストの利用者を返す
// Identity を通っていない場合はヘッダーから直接読み取り、不正なIDは未認証として扱う
func ActorFrom(c echo.Context) application.Actor {
	if a, ok := c.Get(actorContextKey).(application.Actor); ok {
		return a
	}
	actor, err := actorFromHeaders(c.Request().Header)
	if err != nil {
		actor.UserID = ""
	}
	return actor
}

func actorFromHeaders(h http.Header) (application.Actor, error) {
	role := strings.ToLower(strings.TrimSpace(h.Get(HeaderUserRole)))
	if role == "" {
		role = user.RoleCustomer
	}
	actor := application.Actor{Role: role}
	raw := strings.TrimSpace(h.Get(HeaderUserID))
	if raw == "" {
		return actor, nil
	}
	id, err := user.ParseID(raw)
	if err != nil {
		return actor, err
	}
	actor.UserID = id
	return actor, nil
}

// RequireUser は利用者IDのないリクエストを 401 で拒否する
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ActorFrom(c).UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
			}
			return next(c)
		}
	}
}

// RequirePrivileged は管理者・スタッフ以外を 403 で拒否する
func RequirePrivileged() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ActorFrom(c).Privileged() {
				return echo.NewHTTPError(http.StatusForbidden, "管理者権限が必要です")
			}
			return next(c)
		}
	}
}
