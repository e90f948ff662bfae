package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
	redisinfra "github.com/MinhTruong204/movie-booking-system-sub000/internal/infrastructure/redis"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/clock"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
)

const (
	seatCacheTTL = 30 * time.Second
)

// SeatMapService は上映回の座席表を提供する
// 読み取り時にも遅延失効を適用する
type SeatMapService struct {
	seatRepo     seat.Repository
	showtimeRepo showtime.Repository
	cache        SeatCache
	clock        clock.Clock
}

func NewSeatMapService(sr seat.Repository, str showtime.Repository, cache SeatCache, clk clock.Clock) *SeatMapService {
	return &SeatMapService{seatRepo: sr, showtimeRepo: str, cache: cache, clock: clk}
}

// SeatView は座席表の1座席
type SeatView struct {
	Seat      *showtime.Seat
	Status    seat.Kind
	HeldByMe  bool
	HeldUntil *time.Time // 閲覧者自身の保持のみ
}

type SeatMap struct {
	Showtime       *showtime.Showtime
	Seats          []SeatView
	AvailableCount int
}

// GetSeatMap は上映回の全座席と現在の状態を返す
func (s *SeatMapService) GetSeatMap(ctx context.Context, showtimeID, viewerID string) (*SeatMap, error) {
	st, err := s.showtimeRepo.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("上映回取得に失敗: %w", err)
	}
	seats, err := s.showtimeRepo.GetSeatsByRoom(ctx, st.RoomID)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	statuses, err := s.seatRepo.ListByShowtime(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	viewerID = user.CanonicalID(viewerID)
	byID := make(map[string]*seat.SeatStatus, len(statuses))
	for _, ss := range statuses {
		byID[ss.SeatID] = ss
	}

	m := &SeatMap{Showtime: st, Seats: make([]SeatView, 0, len(seats))}
	for _, se := range seats {
		v := SeatView{Seat: se, Status: seat.KindAvailable}
		if ss, ok := byID[se.ID]; ok {
			state := ss.Effective(now)
			v.Status = state.Kind()
			if h, ok := state.(seat.Held); ok && viewerID != "" && h.UserID == viewerID {
				until := h.Until
				v.HeldByMe = true
				v.HeldUntil = &until
			}
		}
		if v.Status == seat.KindAvailable {
			m.AvailableCount++
		}
		m.Seats = append(m.Seats, v)
	}
	return m, nil
}

// CountAvailableSeats は上映回の空席数を返す
// 30秒間キャッシュし、保持・予約の書き込み時に無効化される
func (s *SeatMapService) CountAvailableSeats(ctx context.Context, showtimeID string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, showtimeID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("showtime_id", showtimeID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	m, err := s.GetSeatMap(ctx, showtimeID, "")
	if err != nil {
		return 0, err
	}

	// キャッシュに保存
	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, showtimeID, m.AvailableCount, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return m.AvailableCount, nil
}
