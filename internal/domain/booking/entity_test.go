package booking

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBooking() *Booking {
	seats := []*showtime.Seat{{ID: "s-1", RowLabel: "A", Number: 1, Type: showtime.SeatType{Code: "STANDARD", PriceMultiplier: 1}}}
	q := NewQuote(90000, seats, nil, nil)
	return NewBooking("u1", "st-1", q, "", "", 0, now)
}

func TestNewBooking(t *testing.T) {
	b := newTestBooking()

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "u1", b.UserID)
	assert.Equal(t, "st-1", b.ShowtimeID)
	assert.Equal(t, int64(90000), b.FinalAmount)
	assert.Equal(t, 9, b.PointsEarned)
	assert.Equal(t, []string{"s-1"}, b.SeatIDs())
	assert.Equal(t, now, b.CreatedAt)
	assert.Nil(t, b.PaidAt)
}

func TestGenerateCode(t *testing.T) {
	code := GenerateCode(now)

	assert.Regexp(t, regexp.MustCompile(`^BK-20260301-[0-9A-Z]{8}$`), code)
	assert.NotEqual(t, code, GenerateCode(now))
}

func TestBooking_IsExpired(t *testing.T) {
	b := newTestBooking()

	assert.False(t, b.IsExpired(now.Add(14*time.Minute), DefaultPendingExpiration))
	assert.False(t, b.IsExpired(now.Add(15*time.Minute-time.Nanosecond), DefaultPendingExpiration))
	assert.True(t, b.IsExpired(now.Add(15*time.Minute), DefaultPendingExpiration))
	assert.True(t, b.IsExpired(now.Add(15*time.Minute+time.Second), DefaultPendingExpiration))

	b.Status = StatusPaid
	assert.False(t, b.IsExpired(now.Add(time.Hour), DefaultPendingExpiration))
}

func TestBooking_MarkPaid(t *testing.T) {
	t.Run("支払い待ちを支払い済みにできる", func(t *testing.T) {
		b := newTestBooking()
		paidAt := now.Add(5 * time.Minute)

		require.NoError(t, b.MarkPaid(paidAt, DefaultPendingExpiration))

		assert.Equal(t, StatusPaid, b.Status)
		require.NotNil(t, b.PaidAt)
		assert.Equal(t, paidAt, *b.PaidAt)
	})

	t.Run("期限切れは支払えない", func(t *testing.T) {
		b := newTestBooking()

		err := b.MarkPaid(now.Add(time.Hour), DefaultPendingExpiration)

		assert.ErrorIs(t, err, ErrBookingExpired)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("期限ちょうどは支払えない", func(t *testing.T) {
		b := newTestBooking()

		assert.ErrorIs(t, b.MarkPaid(now.Add(DefaultPendingExpiration), DefaultPendingExpiration), ErrBookingExpired)
		require.NoError(t, b.MarkPaid(now.Add(14*time.Minute), DefaultPendingExpiration))
	})

	t.Run("キャンセル済みは支払えない", func(t *testing.T) {
		b := newTestBooking()
		b.Status = StatusCancelled

		err := b.MarkPaid(now, DefaultPendingExpiration)

		assert.ErrorIs(t, err, ErrBookingNotPending)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})
}

func TestBooking_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr error
	}{
		{"支払い待ち", StatusPending, nil},
		{"支払い済み", StatusPaid, nil},
		{"キャンセル済み", StatusCancelled, ErrBookingAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBooking()
			b.Status = tt.status

			err := b.Cancel(now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, b.Status)
			require.NotNil(t, b.CancelledAt)
		})
	}
}
