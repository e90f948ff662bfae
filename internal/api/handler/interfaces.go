package handler

import (
	"context"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
)

// HoldServiceInterface は座席保持サービスのインターフェース
type HoldServiceInterface interface {
	Hold(ctx context.Context, input application.HoldInput) (*application.HoldResult, error)
	ReleaseSeat(ctx context.Context, input application.ReleaseSeatInput) error
	ReleaseUserSeats(ctx context.Context, userID string) (int, error)
}

// SeatMapServiceInterface は座席表サービスのインターフェース
type SeatMapServiceInterface interface {
	GetSeatMap(ctx context.Context, showtimeID, viewerID string) (*application.SeatMap, error)
	CountAvailableSeats(ctx context.Context, showtimeID string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string, actor application.Actor) (*booking.Booking, error)
	ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
	MarkPaid(ctx context.Context, bookingID string) (*booking.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, actor application.Actor) (*booking.Booking, error)
}
