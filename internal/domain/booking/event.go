package booking

import (
	"context"
	"time"
)

// EventType は予約イベントの種別
type EventType string

const (
	EventCreated   EventType = "booking.created"
	EventPaid      EventType = "booking.paid"
	EventCancelled EventType = "booking.cancelled"
)

// Event は予約の状態変化を外部に通知するメッセージ
type Event struct {
	Type        EventType `json:"type"`
	BookingID   string    `json:"booking_id"`
	Code        string    `json:"code"`
	UserID      string    `json:"user_id"`
	ShowtimeID  string    `json:"showtime_id"`
	SeatIDs     []string  `json:"seat_ids"`
	FinalAmount int64     `json:"final_amount"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewEvent は予約から通知イベントを作成する
func NewEvent(t EventType, b *Booking, occurredAt time.Time) Event {
	return Event{
		Type:        t,
		BookingID:   b.ID,
		Code:        b.Code,
		UserID:      b.UserID,
		ShowtimeID:  b.ShowtimeID,
		SeatIDs:     b.SeatIDs(),
		FinalAmount: b.FinalAmount,
		OccurredAt:  occurredAt,
	}
}

// EventPublisher は予約イベントの配信先
// 配信はコミット後に行い、失敗しても予約処理は成功扱いとする
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
