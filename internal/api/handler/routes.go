package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/middleware"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Health  *HealthHandler
	Hold    *HoldHandler
	SeatMap *SeatMapHandler
	Booking *BookingHandler
}

// RegisterRoutes は /health と /api/v1 配下のルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/showtimes/:id/seats", h.SeatMap.Get)
	v1.GET("/showtimes/:id/seats/available/count", h.SeatMap.CountAvailable)

	authed := v1.Group("", middleware.RequireUser())
	authed.POST("/showtimes/:id/holds", h.Hold.Create)
	authed.DELETE("/showtimes/:id/holds/:seat_id", h.Hold.Release)
	authed.DELETE("/holds", h.Hold.ReleaseAll)

	authed.POST("/bookings", h.Booking.Create)
	authed.GET("/bookings", h.Booking.List)
	authed.GET("/bookings/:id", h.Booking.GetByID)
	authed.POST("/bookings/:id/cancel", h.Booking.Cancel)
	authed.POST("/bookings/:id/paid", h.Booking.MarkPaid, middleware.RequirePrivileged())
}
