package application

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/config"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
)

var ErrUserIDRequired = apperror.New(apperror.ErrValidation, "ユーザーIDは必須です")

// Actor は操作を行う利用者
type Actor struct {
	UserID string
	Role   string
}

// Privileged は他ユーザーの保持・予約を操作できるかを返す
func (a Actor) Privileged() bool {
	return user.IsPrivileged(a.Role)
}

// Owns は userID が自身のIDかを正規化したうえで判定する
func (a Actor) Owns(userID string) bool {
	id := user.CanonicalID(a.UserID)
	return id != "" && id == user.CanonicalID(userID)
}

// SeatCache は上映回ごとの空席数キャッシュ
type SeatCache interface {
	GetAvailableCount(ctx context.Context, showtimeID string) (int, error)
	SetAvailableCount(ctx context.Context, showtimeID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, showtimeIDs ...string) error
}

// Policy は座席保持・予約の業務ルール
type Policy struct {
	DefaultHoldDuration time.Duration
	MaxHoldDuration     time.Duration
	MaxSeats            int
	Cutoff              time.Duration
	PendingExpiration   time.Duration
}

// PolicyFromConfig は設定から業務ルールを作成する
func PolicyFromConfig(cfg *config.BookingConfig) Policy {
	return Policy{
		DefaultHoldDuration: cfg.DefaultHoldDuration,
		MaxHoldDuration:     cfg.MaxHoldDuration,
		MaxSeats:            cfg.MaxSeatsPerHold,
		Cutoff:              cfg.HoldCutoff,
		PendingExpiration:   cfg.PendingExpiration,
	}
}

// normalizeSeatIDs は重複を除いた座席IDを返し、件数を検証する
func normalizeSeatIDs(ids []string, max int) ([]string, error) {
	unique := lo.Uniq(ids)
	if len(unique) == 0 {
		return nil, seat.ErrSeatIDsRequired
	}
	if len(unique) > max {
		return nil, seat.ErrTooManySeats
	}
	return unique, nil
}

// invalidateShowtimes は座席在庫が変わった上映回の空席数キャッシュを破棄する
func invalidateShowtimes(ctx context.Context, cache SeatCache, keys []seat.Key) {
	if cache == nil || len(keys) == 0 {
		return
	}
	ids := lo.Uniq(lo.Map(keys, func(k seat.Key, _ int) string { return k.ShowtimeID }))
	if err := cache.Invalidate(ctx, ids...); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Strings("showtime_ids", ids), zap.Error(err))
	}
}

// resultLabel はメトリクス用に処理結果を分類する
func resultLabel(err error) string {
	switch apperror.KindOf(err) {
	case "":
		return "success"
	case apperror.KindConflict:
		return "conflict"
	case apperror.KindInternal:
		return "error"
	default:
		return "rejected"
	}
}
