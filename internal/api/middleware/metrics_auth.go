package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/config"
)

// MetricsBasicAuth は /metrics 用の Basic 認証ミドルウェア
// 資格情報が未設定の場合は認証しない（ローカル開発用）
func MetricsBasicAuth(cfg config.MetricsConfig) echo.MiddlewareFunc {
	if !cfg.AuthEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	user, pass := []byte(cfg.User), []byte(cfg.Password)
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "metrics",
		Validator: func(username, password string, _ echo.Context) (bool, error) {
			userOK := subtle.ConstantTimeCompare([]byte(username), user) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), pass) == 1
			return userOK && passOK, nil
		},
	})
}
