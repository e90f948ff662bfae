package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// DefaultPendingExpiration は未払い予約が自動キャンセルされるまでの時間
const DefaultPendingExpiration = 15 * time.Minute

// SeatLine は予約時点の座席価格スナップショット
type SeatLine struct {
	SeatID   string
	Label    string
	SeatType string
	Price    int64
}

// ComboLine は予約時点のセット商品価格スナップショット
type ComboLine struct {
	ComboID    string
	Name       string
	Quantity   int
	UnitPrice  int64
	TotalPrice int64
}

// Booking は予約エンティティを表す
type Booking struct {
	ID             string
	Code           string
	UserID         string
	ShowtimeID     string
	Status         Status
	Seats          []SeatLine
	Combos         []ComboLine
	Subtotal       int64
	Discounts      Discounts
	DiscountAmount int64
	FinalAmount    int64
	PromoCode      string
	VoucherCode    string
	PointsUsed     int
	PointsEarned   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
}

// NewBooking は見積もりから PENDING の予約を作成する
func NewBooking(userID, showtimeID string, q *Quote, promoCode, voucherCode string, pointsUsed int, now time.Time) *Booking {
	return &Booking{
		ID:             uuid.NewString(),
		Code:           GenerateCode(now),
		UserID:         userID,
		ShowtimeID:     showtimeID,
		Status:         StatusPending,
		Seats:          q.Seats,
		Combos:         q.Combos,
		Subtotal:       q.Subtotal,
		Discounts:      q.Discounts,
		DiscountAmount: q.DiscountAmount,
		FinalAmount:    q.FinalAmount,
		PromoCode:      promoCode,
		VoucherCode:    voucherCode,
		PointsUsed:     pointsUsed,
		PointsEarned:   q.PointsEarned,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SeatIDs は予約対象の座席IDを返す
func (b *Booking) SeatIDs() []string {
	ids := make([]string, len(b.Seats))
	for i, s := range b.Seats {
		ids[i] = s.SeatID
	}
	return ids
}

// IsPending は予約が支払い待ちかを返す
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

// IsExpired は支払い待ちのまま window が経過したかを返す
// 作成からちょうど window 経過した時点で期限切れとする
func (b *Booking) IsExpired(now time.Time, window time.Duration) bool {
	return b.Status == StatusPending && !b.CreatedAt.After(now.Add(-window))
}

// MarkPaid は予約を支払い済みにする
func (b *Booking) MarkPaid(now time.Time, window time.Duration) error {
	if b.Status != StatusPending {
		return ErrBookingNotPending
	}
	if b.IsExpired(now, window) {
		return ErrBookingExpired
	}
	b.Status = StatusPaid
	b.PaidAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel は予約をキャンセルする
func (b *Booking) Cancel(now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}
