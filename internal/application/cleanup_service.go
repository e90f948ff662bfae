package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/metrics"
)

const (
	sweepHolds    = "holds"
	sweepBookings = "bookings"
)

type expiredHoldReleaser interface {
	ReleaseExpiredSeats(ctx context.Context) (int, error)
}

type expiredBookingCanceller interface {
	CancelExpiredBookings(ctx context.Context) (int, error)
}

// CleanupService は期限切れの保持と未払い予約を回収する
// いずれも冪等で、正しさは遅延失効で担保されるため実行が遅れても問題ない
type CleanupService struct {
	holds    expiredHoldReleaser
	bookings expiredBookingCanceller
	metrics  *metrics.Metrics
}

func NewCleanupService(holds expiredHoldReleaser, bookings expiredBookingCanceller, m *metrics.Metrics) *CleanupService {
	return &CleanupService{holds: holds, bookings: bookings, metrics: m}
}

// SweepExpiredHolds は期限切れの保持を AVAILABLE に戻す
func (s *CleanupService) SweepExpiredHolds(ctx context.Context) (int, error) {
	n, err := s.holds.ReleaseExpiredSeats(ctx)
	s.record(sweepHolds, n, err)
	return n, err
}

// SweepExpiredBookings は支払い期限切れの PENDING 予約をキャンセルする
func (s *CleanupService) SweepExpiredBookings(ctx context.Context) (int, error) {
	n, err := s.bookings.CancelExpiredBookings(ctx)
	s.record(sweepBookings, n, err)
	return n, err
}

func (s *CleanupService) record(sweep string, n int, err error) {
	if s.metrics != nil && n > 0 {
		s.metrics.ReaperSweptTotal.WithLabelValues(sweep).Add(float64(n))
	}
	if err != nil {
		logger.Error("クリーンアップに失敗", zap.String("sweep", sweep), zap.Int("count", n), zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("クリーンアップ完了", zap.String("sweep", sweep), zap.Int("count", n))
	}
}
