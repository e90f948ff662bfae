package showtime

import (
	"math"
	"strconv"
	"time"
)

// Showtime は上映回を表す
type Showtime struct {
	ID         string
	MovieTitle string
	RoomID     string
	StartAt    time.Time
	EndAt      time.Time
	BasePrice  int64
	IsActive   bool
}

// SeatType は座席種別（通常・VIP・カップル等）と価格倍率
type SeatType struct {
	Code            string
	Name            string
	PriceMultiplier float64
}

// Seat はスクリーン内の物理座席
type Seat struct {
	ID       string
	RoomID   string
	RowLabel string
	Number   int
	Type     SeatType
}

// Label は "A12" のような表示用ラベルを返す
func (s *Seat) Label() string {
	return s.RowLabel + strconv.Itoa(s.Number)
}

// PriceFor は基本料金に座席種別の倍率を掛けた価格を返す
func (s *Seat) PriceFor(basePrice int64) int64 {
	return int64(math.Round(float64(basePrice) * s.Type.PriceMultiplier))
}

// Combo はフード・ドリンクのセット商品
type Combo struct {
	ID        string
	Name      string
	UnitPrice int64
	IsActive  bool
}

// Room はスクリーン
type Room struct {
	ID       string
	Name     string
	Capacity int
}
