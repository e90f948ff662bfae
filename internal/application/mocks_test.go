package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) BeginSerializable(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockSeatRepository implements seat.Repository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) EnsureRows(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string) error {
	args := m.Called(ctx, tx, showtimeID, seatIDs)
	return args.Error(0)
}

func (m *MockSeatRepository) LockForUpdate(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string) ([]*seat.SeatStatus, error) {
	args := m.Called(ctx, tx, showtimeID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.SeatStatus), args.Error(1)
}

func (m *MockSeatRepository) Update(ctx context.Context, tx transaction.Tx, statuses []*seat.SeatStatus) error {
	args := m.Called(ctx, tx, statuses)
	return args.Error(0)
}

func (m *MockSeatRepository) ListByShowtime(ctx context.Context, showtimeID string) ([]*seat.SeatStatus, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.SeatStatus), args.Error(1)
}

func (m *MockSeatRepository) ReleaseHeldByUser(ctx context.Context, userID string, now time.Time) ([]seat.Key, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seat.Key), args.Error(1)
}

func (m *MockSeatRepository) ReleaseHeld(ctx context.Context, showtimeID, seatID, userID string, force bool, now time.Time) error {
	args := m.Called(ctx, showtimeID, seatID, userID, force, now)
	return args.Error(0)
}

func (m *MockSeatRepository) ReleaseExpired(ctx context.Context, now time.Time) ([]seat.Key, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seat.Key), args.Error(1)
}

func (m *MockSeatRepository) ReleaseBooked(ctx context.Context, tx transaction.Tx, bookingID string, now time.Time) ([]seat.Key, error) {
	args := m.Called(ctx, tx, bookingID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seat.Key), args.Error(1)
}

// MockShowtimeRepository implements showtime.Repository
type MockShowtimeRepository struct {
	mock.Mock
}

func (m *MockShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) GetSeatsByIDs(ctx context.Context, ids []string) ([]*showtime.Seat, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Seat), args.Error(1)
}

func (m *MockShowtimeRepository) GetSeatsByRoom(ctx context.Context, roomID string) ([]*showtime.Seat, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Seat), args.Error(1)
}

func (m *MockShowtimeRepository) GetCombosByIDs(ctx context.Context, ids []string) ([]*showtime.Combo, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Combo), args.Error(1)
}

// MockBookingRepository implements booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) ListExpiredPendingIDs(ctx context.Context, createdBefore time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockUserDirectory implements user.Directory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// MockDiscounts implements discount.PromotionService, VoucherService, LoyaltyService, MembershipService
type MockDiscounts struct {
	mock.Mock
}

func (m *MockDiscounts) PromotionDiscount(ctx context.Context, code, userID string, subtotal int64) (int64, error) {
	args := m.Called(ctx, code, userID, subtotal)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscounts) RecordPromotionUsage(ctx context.Context, tx transaction.Tx, code, userID string) error {
	args := m.Called(ctx, tx, code, userID)
	return args.Error(0)
}

func (m *MockDiscounts) VoucherDiscount(ctx context.Context, code, userID string, subtotal int64) (int64, error) {
	args := m.Called(ctx, code, userID, subtotal)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscounts) RecordVoucherUsage(ctx context.Context, tx transaction.Tx, code, userID string) error {
	args := m.Called(ctx, tx, code, userID)
	return args.Error(0)
}

func (m *MockDiscounts) RedemptionValue(ctx context.Context, userID string, points int) (int64, error) {
	args := m.Called(ctx, userID, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscounts) AdjustPoints(ctx context.Context, tx transaction.Tx, userID string, delta int) error {
	args := m.Called(ctx, tx, userID, delta)
	return args.Error(0)
}

func (m *MockDiscounts) TierDiscount(ctx context.Context, userID string, subtotal int64) (int64, error) {
	args := m.Called(ctx, userID, subtotal)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher implements booking.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt booking.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// MockSeatCache implements SeatCache
type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) GetAvailableCount(ctx context.Context, showtimeID string) (int, error) {
	args := m.Called(ctx, showtimeID)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatCache) SetAvailableCount(ctx context.Context, showtimeID string, count int, ttl time.Duration) error {
	args := m.Called(ctx, showtimeID, count, ttl)
	return args.Error(0)
}

func (m *MockSeatCache) Invalidate(ctx context.Context, showtimeIDs ...string) error {
	args := m.Called(ctx, showtimeIDs)
	return args.Error(0)
}
