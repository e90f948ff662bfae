package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/clock"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/metrics"
)

// SeatHoldService は座席の一時保持を扱う
type SeatHoldService struct {
	txManager    transaction.Manager
	seatRepo     seat.Repository
	showtimeRepo showtime.Repository
	cache        SeatCache
	policy       Policy
	clock        clock.Clock
	metrics      *metrics.Metrics
}

func NewSeatHoldService(
	tm transaction.Manager,
	sr seat.Repository,
	str showtime.Repository,
	cache SeatCache,
	policy Policy,
	clk clock.Clock,
	m *metrics.Metrics,
) *SeatHoldService {
	return &SeatHoldService{
		txManager:    tm,
		seatRepo:     sr,
		showtimeRepo: str,
		cache:        cache,
		policy:       policy,
		clock:        clk,
		metrics:      m,
	}
}

type HoldInput struct {
	ShowtimeID      string
	SeatIDs         []string
	UserID          string
	DurationSeconds int // 0 の場合は既定の保持時間
}

type HoldResult struct {
	ShowtimeID string
	UserID     string
	Seats      []*showtime.Seat
	HeldUntil  time.Time
}

// Hold は座席をまとめて一時保持する
// 1席でも確保できなければ何も書き込まず ConflictError を返す
func (s *SeatHoldService) Hold(ctx context.Context, input HoldInput) (*HoldResult, error) {
	result, err := s.hold(ctx, input)
	if s.metrics != nil {
		s.metrics.SeatHoldsTotal.WithLabelValues(resultLabel(err)).Inc()
	}
	return result, err
}

func (s *SeatHoldService) hold(ctx context.Context, input HoldInput) (*HoldResult, error) {
	input.UserID = user.CanonicalID(input.UserID)
	if input.UserID == "" {
		return nil, ErrUserIDRequired
	}
	seatIDs, err := normalizeSeatIDs(input.SeatIDs, s.policy.MaxSeats)
	if err != nil {
		return nil, err
	}
	duration, err := s.holdDuration(input.DurationSeconds)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	st, err := s.showtimeRepo.GetByID(ctx, input.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("上映回取得に失敗: %w", err)
	}
	if err := st.CheckBookable(now, s.policy.Cutoff); err != nil {
		return nil, err
	}
	found, err := s.showtimeRepo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	seats, err := st.ResolveSeats(seatIDs, found)
	if err != nil {
		return nil, err
	}

	until := now.Add(duration)
	err = transaction.RunSerializable(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.seatRepo.EnsureRows(ctx, tx, st.ID, seatIDs); err != nil {
			return err
		}
		statuses, err := s.seatRepo.LockForUpdate(ctx, tx, st.ID, seatIDs)
		if err != nil {
			return err
		}
		if err := seat.Classify(statuses, input.UserID, now); err != nil {
			return err
		}
		for _, ss := range statuses {
			if err := ss.Hold(input.UserID, until, now); err != nil {
				return err
			}
		}
		return s.seatRepo.Update(ctx, tx, statuses)
	})
	if err != nil {
		var ce *seat.ConflictError
		if errors.As(err, &ce) {
			logger.Info("座席保持が競合しました",
				zap.String("showtime_id", st.ID),
				zap.String("user_id", input.UserID),
				zap.Int("conflicts", len(ce.Conflicts)),
			)
		}
		return nil, err
	}

	invalidateShowtimes(ctx, s.cache, []seat.Key{{ShowtimeID: st.ID}})
	logger.Info("座席を保持しました",
		zap.String("showtime_id", st.ID),
		zap.String("user_id", input.UserID),
		zap.Strings("seat_ids", seatIDs),
		zap.Time("held_until", until),
	)

	return &HoldResult{
		ShowtimeID: st.ID,
		UserID:     input.UserID,
		Seats:      seats,
		HeldUntil:  until,
	}, nil
}

func (s *SeatHoldService) holdDuration(seconds int) (time.Duration, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("%w: 0以上を指定してください", seat.ErrInvalidHoldDuration)
	}
	if seconds == 0 {
		return s.policy.DefaultHoldDuration, nil
	}
	d := time.Duration(seconds) * time.Second
	if d > s.policy.MaxHoldDuration {
		return 0, fmt.Errorf("%w: 最大%d秒", seat.ErrInvalidHoldDuration, int(s.policy.MaxHoldDuration.Seconds()))
	}
	return d, nil
}

type ReleaseSeatInput struct {
	ShowtimeID string
	SeatID     string
	Actor      Actor
	Force      bool // 保持者を問わず解放する（管理者・スタッフのみ）
}

// ReleaseSeat は1座席の保持を解放する
func (s *SeatHoldService) ReleaseSeat(ctx context.Context, input ReleaseSeatInput) error {
	input.Actor.UserID = user.CanonicalID(input.Actor.UserID)
	if input.Force && !input.Actor.Privileged() {
		return seat.ErrForceNotPermitted
	}
	if !input.Force && input.Actor.UserID == "" {
		return ErrUserIDRequired
	}

	if err := s.seatRepo.ReleaseHeld(ctx, input.ShowtimeID, input.SeatID, input.Actor.UserID, input.Force, s.clock.Now()); err != nil {
		return err
	}

	invalidateShowtimes(ctx, s.cache, []seat.Key{{ShowtimeID: input.ShowtimeID, SeatID: input.SeatID}})
	logger.Info("座席の保持を解放しました",
		zap.String("showtime_id", input.ShowtimeID),
		zap.String("seat_id", input.SeatID),
		zap.String("user_id", input.Actor.UserID),
		zap.Bool("force", input.Force),
	)
	return nil
}

// ReleaseUserSeats はユーザーが保持している全座席を解放し、解放数を返す
func (s *SeatHoldService) ReleaseUserSeats(ctx context.Context, userID string) (int, error) {
	userID = user.CanonicalID(userID)
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	keys, err := s.seatRepo.ReleaseHeldByUser(ctx, userID, s.clock.Now())
	if err != nil {
		return 0, err
	}

	invalidateShowtimes(ctx, s.cache, keys)
	if len(keys) > 0 {
		logger.Info("ユーザーの保持を全て解放しました", zap.String("user_id", userID), zap.Int("count", len(keys)))
	}
	return len(keys), nil
}

// ReleaseExpiredSeats は期限切れの保持を AVAILABLE に戻し、件数を返す
func (s *SeatHoldService) ReleaseExpiredSeats(ctx context.Context) (int, error) {
	keys, err := s.seatRepo.ReleaseExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	invalidateShowtimes(ctx, s.cache, keys)
	return len(keys), nil
}
