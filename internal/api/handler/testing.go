package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/middleware"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Use(middleware.Identity())
	return e
}
