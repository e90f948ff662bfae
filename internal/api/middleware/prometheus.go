package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/metrics"
)

const (
	metricsPath    = "/metrics"
	unmatchedRoute = "unmatched"
)

// PrometheusMiddleware はHTTPメトリクスを収集するミドルウェア
// path ラベルにはルート定義（/api/v1/bookings/:id）を使い、IDごとに系列を増やさない
func PrometheusMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == metricsPath {
				return next(c)
			}
			start := time.Now()

			err := next(c)

			// エラーレスポンスはミドルウェアの外で書かれるため、ここで変換後のステータスを求める
			status := c.Response().Status
			if err != nil {
				status = api.StatusCode(err)
			}
			path := c.Path()
			if path == "" {
				path = unmatchedRoute
			}
			method := c.Request().Method

			m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
