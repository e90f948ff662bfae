package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
)

const (
	testUserID  = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	otherUserID = "9b2e0c1a-6d4f-4a38-8b7e-2f1c5d9e0a47"
	staffUserID = "5c1d7e22-0b8a-4f6e-9d31-7a4c2e8f1b90"
)

// MockHoldService はHoldServiceInterfaceのモック
type MockHoldService struct {
	mock.Mock
}

func (m *MockHoldService) Hold(ctx context.Context, input application.HoldInput) (*application.HoldResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.HoldResult), args.Error(1)
}

func (m *MockHoldService) ReleaseSeat(ctx context.Context, input application.ReleaseSeatInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockHoldService) ReleaseUserSeats(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockSeatMapService はSeatMapServiceInterfaceのモック
type MockSeatMapService struct {
	mock.Mock
}

func (m *MockSeatMapService) GetSeatMap(ctx context.Context, showtimeID, viewerID string) (*application.SeatMap, error) {
	args := m.Called(ctx, showtimeID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.SeatMap), args.Error(1)
}

func (m *MockSeatMapService) CountAvailableSeats(ctx context.Context, showtimeID string) (int, error) {
	args := m.Called(ctx, showtimeID)
	return args.Int(0), args.Error(1)
}

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string, actor application.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) MarkPaid(ctx context.Context, bookingID string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, actor application.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}
