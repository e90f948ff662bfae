package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/discount"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/clock"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/metrics"
)

const (
	defaultListLimit    = 20
	maxListLimit        = 100
	expiredSweepBatch   = 100
	expiredCancelReason = "expired"
)

// BookingServiceDeps は BookingService の依存関係
// Publisher, Cache, Metrics は nil でもよい
type BookingServiceDeps struct {
	TxManager  transaction.Manager
	Bookings   booking.Repository
	Seats      seat.Repository
	Showtimes  showtime.Repository
	Users      user.Directory
	Promotions discount.PromotionService
	Vouchers   discount.VoucherService
	Loyalty    discount.LoyaltyService
	Membership discount.MembershipService
	Publisher  booking.EventPublisher
	Cache      SeatCache
	Policy     Policy
	Clock      clock.Clock
	Metrics    *metrics.Metrics
}

// BookingService は予約の作成と状態遷移を扱う
type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	seatRepo     seat.Repository
	showtimeRepo showtime.Repository
	users        user.Directory
	promotions   discount.PromotionService
	vouchers     discount.VoucherService
	loyalty      discount.LoyaltyService
	membership   discount.MembershipService
	publisher    booking.EventPublisher
	cache        SeatCache
	policy       Policy
	clock        clock.Clock
	metrics      *metrics.Metrics
}

func NewBookingService(d BookingServiceDeps) *BookingService {
	return &BookingService{
		txManager:    d.TxManager,
		bookingRepo:  d.Bookings,
		seatRepo:     d.Seats,
		showtimeRepo: d.Showtimes,
		users:        d.Users,
		promotions:   d.Promotions,
		vouchers:     d.Vouchers,
		loyalty:      d.Loyalty,
		membership:   d.Membership,
		publisher:    d.Publisher,
		cache:        d.Cache,
		policy:       d.Policy,
		clock:        d.Clock,
		metrics:      d.Metrics,
	}
}

type CreateBookingInput struct {
	UserID        string
	ShowtimeID    string
	SeatIDs       []string
	Combos        []booking.ComboRequest
	PromoCode     string
	VoucherCode   string
	LoyaltyPoints int
}

// CreateBooking は座席を予約済みにし、PENDING の予約を作成する
// 座席の確認から割引の利用記録までを1つの SERIALIZABLE トランザクションで行う
// 競合やシリアライズ失敗は Conflict として返し、内部で再試行はしない
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	b, err := s.createBooking(ctx, input)
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(resultLabel(err)).Inc()
	}
	return b, err
}

func (s *BookingService) createBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	input.UserID = user.CanonicalID(input.UserID)
	if input.UserID == "" {
		return nil, ErrUserIDRequired
	}
	seatIDs, err := normalizeSeatIDs(input.SeatIDs, s.policy.MaxSeats)
	if err != nil {
		return nil, err
	}
	if input.LoyaltyPoints < 0 {
		return nil, booking.ErrInvalidLoyaltyPoints
	}
	combos, err := mergeCombos(input.Combos)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	u, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}
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
	comboByID, err := s.resolveCombos(ctx, combos)
	if err != nil {
		return nil, err
	}

	q := booking.NewQuote(st.BasePrice, seats, comboByID, combos)
	discounts, err := s.discounts(ctx, input, q.Subtotal)
	if err != nil {
		return nil, err
	}
	q.ApplyDiscounts(discounts)
	pointsUsed := q.RedeemedPoints(input.LoyaltyPoints, discounts.Loyalty)

	b := booking.NewBooking(u.ID, st.ID, q, input.PromoCode, input.VoucherCode, pointsUsed, now)

	err = transaction.RunSerializable(ctx, s.txManager, func(tx transaction.Tx) error {
		if err := s.seatRepo.EnsureRows(ctx, tx, st.ID, seatIDs); err != nil {
			return err
		}
		statuses, err := s.seatRepo.LockForUpdate(ctx, tx, st.ID, seatIDs)
		if err != nil {
			return err
		}
		if err := seat.Classify(statuses, u.ID, now); err != nil {
			return err
		}
		if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
			return err
		}
		for _, ss := range statuses {
			if err := ss.Book(b.ID, u.ID, now); err != nil {
				return err
			}
		}
		if err := s.seatRepo.Update(ctx, tx, statuses); err != nil {
			return err
		}
		return s.recordUsage(ctx, tx, b)
	})
	if err != nil {
		var ce *seat.ConflictError
		if errors.As(err, &ce) {
			logger.Info("予約作成時に座席が競合しました",
				zap.String("showtime_id", st.ID),
				zap.String("user_id", u.ID),
				zap.Int("conflicts", len(ce.Conflicts)),
			)
		}
		return nil, err
	}

	invalidateShowtimes(ctx, s.cache, []seat.Key{{ShowtimeID: st.ID}})
	s.publish(ctx, booking.NewEvent(booking.EventCreated, b, now))
	logger.Info("予約を作成しました",
		zap.String("booking_id", b.ID),
		zap.String("code", b.Code),
		zap.String("user_id", b.UserID),
		zap.String("showtime_id", b.ShowtimeID),
		zap.Int64("final_amount", b.FinalAmount),
	)
	return b, nil
}

// mergeCombos は同じセット商品の指定を数量で合算する
func mergeCombos(requests []booking.ComboRequest) ([]booking.ComboRequest, error) {
	merged := make([]booking.ComboRequest, 0, len(requests))
	index := make(map[string]int, len(requests))
	for _, r := range requests {
		if r.Quantity <= 0 {
			return nil, booking.ErrInvalidComboQuantity
		}
		if i, ok := index[r.ComboID]; ok {
			merged[i].Quantity += r.Quantity
			continue
		}
		index[r.ComboID] = len(merged)
		merged = append(merged, r)
	}
	return merged, nil
}

func (s *BookingService) resolveCombos(ctx context.Context, requests []booking.ComboRequest) (map[string]*showtime.Combo, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	ids := lo.Map(requests, func(r booking.ComboRequest, _ int) string { return r.ComboID })
	found, err := s.showtimeRepo.GetCombosByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("セット商品取得に失敗: %w", err)
	}
	return showtime.ResolveCombos(ids, found)
}

// discounts は外部の割引サービスから各割引額を集める
func (s *BookingService) discounts(ctx context.Context, input CreateBookingInput, subtotal int64) (booking.Discounts, error) {
	var (
		d   booking.Discounts
		err error
	)
	if input.PromoCode != "" {
		if d.Promotion, err = s.promotions.PromotionDiscount(ctx, input.PromoCode, input.UserID, subtotal); err != nil {
			return d, err
		}
	}
	if input.VoucherCode != "" {
		if d.Voucher, err = s.vouchers.VoucherDiscount(ctx, input.VoucherCode, input.UserID, subtotal); err != nil {
			return d, err
		}
	}
	if input.LoyaltyPoints > 0 {
		if d.Loyalty, err = s.loyalty.RedemptionValue(ctx, input.UserID, input.LoyaltyPoints); err != nil {
			return d, err
		}
	}
	if d.Membership, err = s.membership.TierDiscount(ctx, input.UserID, subtotal); err != nil {
		return d, err
	}
	return d, nil
}

func (s *BookingService) recordUsage(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	if b.PromoCode != "" {
		if err := s.promotions.RecordPromotionUsage(ctx, tx, b.PromoCode, b.UserID); err != nil {
			return err
		}
	}
	if b.VoucherCode != "" {
		if err := s.vouchers.RecordVoucherUsage(ctx, tx, b.VoucherCode, b.UserID); err != nil {
			return err
		}
	}
	if b.PointsUsed > 0 {
		if err := s.loyalty.AdjustPoints(ctx, tx, b.UserID, -b.PointsUsed); err != nil {
			return err
		}
	}
	return nil
}

// GetBooking は予約を取得する
// 本人または管理者・スタッフ以外には存在しないものとして扱う
func (s *BookingService) GetBooking(ctx context.Context, id string, actor Actor) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(b.UserID) && !actor.Privileged() {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

// ListUserBookings はユーザーの予約を新しい順に返す
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	userID = user.CanonicalID(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// MarkPaid は外部の決済確定を受けて予約を支払い済みにし、獲得ポイントを付与する
func (s *BookingService) MarkPaid(ctx context.Context, bookingID string) (*booking.Booking, error) {
	now := s.clock.Now()
	var b *booking.Booking
	err := transaction.RunSerializable(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := b.MarkPaid(now, s.policy.PendingExpiration); err != nil {
			return err
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, b); err != nil {
			return err
		}
		if b.PointsEarned > 0 {
			return s.loyalty.AdjustPoints(ctx, tx, b.UserID, b.PointsEarned)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, booking.NewEvent(booking.EventPaid, b, now))
	logger.Info("予約の支払いを確定しました", zap.String("booking_id", b.ID), zap.Int("points_earned", b.PointsEarned))
	return b, nil
}

// CancelBooking は予約をキャンセルし、予約済みの座席を同じトランザクションで解放する
// 利用したポイントは返還する
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, actor Actor) (*booking.Booking, error) {
	now := s.clock.Now()
	var (
		b        *booking.Booking
		released []seat.Key
	)
	err := transaction.RunSerializable(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !actor.Owns(b.UserID) && !actor.Privileged() {
			return booking.ErrNotBookingOwner
		}
		released, err = s.cancelInTx(ctx, tx, b, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateShowtimes(ctx, s.cache, released)
	s.publish(ctx, booking.NewEvent(booking.EventCancelled, b, now))
	logger.Info("予約をキャンセルしました",
		zap.String("booking_id", b.ID),
		zap.String("user_id", actor.UserID),
		zap.Int("released_seats", len(released)),
	)
	return b, nil
}

func (s *BookingService) cancelInTx(ctx context.Context, tx transaction.Tx, b *booking.Booking, now time.Time) ([]seat.Key, error) {
	if err := b.Cancel(now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, tx, b); err != nil {
		return nil, err
	}
	released, err := s.seatRepo.ReleaseBooked(ctx, tx, b.ID, now)
	if err != nil {
		return nil, err
	}
	if b.PointsUsed > 0 {
		if err := s.loyalty.AdjustPoints(ctx, tx, b.UserID, b.PointsUsed); err != nil {
			return nil, err
		}
	}
	return released, nil
}

// CancelExpiredBookings は支払い期限を過ぎた PENDING 予約をキャンセルし、件数を返す
// 予約ごとに別トランザクションで処理し、失敗した予約は次回の実行で再処理される
func (s *BookingService) CancelExpiredBookings(ctx context.Context) (int, error) {
	now := s.clock.Now()
	ids, err := s.bookingRepo.ListExpiredPendingIDs(ctx, now.Add(-s.policy.PendingExpiration), expiredSweepBatch)
	if err != nil {
		return 0, err
	}

	var (
		cancelled int
		errs      []error
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		ok, err := s.cancelExpired(ctx, id, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("予約 %s の期限切れキャンセルに失敗: %w", id, err))
			continue
		}
		if ok {
			cancelled++
		}
	}
	return cancelled, errors.Join(errs...)
}

func (s *BookingService) cancelExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	var (
		b        *booking.Booking
		released []seat.Key
	)
	err := transaction.RunSerializable(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		// 一覧取得後に支払い済みになった予約は対象外
		if !b.IsExpired(now, s.policy.PendingExpiration) {
			b = nil
			return nil
		}
		released, err = s.cancelInTx(ctx, tx, b, now)
		return err
	})
	if err != nil || b == nil {
		return false, err
	}

	invalidateShowtimes(ctx, s.cache, released)
	evt := booking.NewEvent(booking.EventCancelled, b, now)
	evt.Reason = expiredCancelReason
	s.publish(ctx, evt)
	logger.Info("期限切れの予約をキャンセルしました", zap.String("booking_id", b.ID), zap.Int("released_seats", len(released)))
	return true, nil
}

// publish はコミット後にイベントを配信する。失敗はログのみ
func (s *BookingService) publish(ctx context.Context, evt booking.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.Warn("予約イベントの配信に失敗",
			zap.String("type", string(evt.Type)),
			zap.String("booking_id", evt.BookingID),
			zap.Error(err),
		)
	}
}
