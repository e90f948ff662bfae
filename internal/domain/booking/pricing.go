package booking

import (
	"github.com/samber/lo"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
)

// PointsEarnUnit は獲得ポイント1点あたりの支払額
const PointsEarnUnit int64 = 10_000

// ComboRequest は注文するセット商品と数量
type ComboRequest struct {
	ComboID  string
	Quantity int
}

// Discounts は割引の内訳
type Discounts struct {
	Promotion  int64
	Voucher    int64
	Loyalty    int64
	Membership int64
}

// Total は割引の合計を返す
func (d Discounts) Total() int64 {
	return d.Promotion + d.Voucher + d.Loyalty + d.Membership
}

// Quote は予約金額の見積もり
type Quote struct {
	Seats          []SeatLine
	Combos         []ComboLine
	SeatTotal      int64
	ComboTotal     int64
	Subtotal       int64
	Discounts      Discounts
	DiscountAmount int64
	FinalAmount    int64
	PointsEarned   int
}

// NewQuote は座席とセット商品から小計を計算する
// 座席価格は基本料金 x 座席種別倍率、セット商品は単価 x 数量
func NewQuote(basePrice int64, seats []*showtime.Seat, combos map[string]*showtime.Combo, requests []ComboRequest) *Quote {
	q := &Quote{
		Seats: lo.Map(seats, func(s *showtime.Seat, _ int) SeatLine {
			return SeatLine{
				SeatID:   s.ID,
				Label:    s.Label(),
				SeatType: s.Type.Code,
				Price:    s.PriceFor(basePrice),
			}
		}),
	}
	for _, r := range requests {
		c := combos[r.ComboID]
		q.Combos = append(q.Combos, ComboLine{
			ComboID:    c.ID,
			Name:       c.Name,
			Quantity:   r.Quantity,
			UnitPrice:  c.UnitPrice,
			TotalPrice: c.UnitPrice * int64(r.Quantity),
		})
	}

	q.SeatTotal = lo.SumBy(q.Seats, func(l SeatLine) int64 { return l.Price })
	q.ComboTotal = lo.SumBy(q.Combos, func(l ComboLine) int64 { return l.TotalPrice })
	q.Subtotal = q.SeatTotal + q.ComboTotal
	q.ApplyDiscounts(Discounts{})
	return q
}

// ApplyDiscounts は割引を適用して支払額と獲得ポイントを再計算する
// 割引合計は小計を上限とし、支払額は0未満にならない
// ポイント割引は他の割引の後に充当し、小計を超える分は適用しない
func (q *Quote) ApplyDiscounts(d Discounts) {
	others := lo.Clamp(d.Promotion+d.Voucher+d.Membership, 0, q.Subtotal)
	d.Loyalty = lo.Clamp(d.Loyalty, 0, q.Subtotal-others)
	q.Discounts = d
	q.DiscountAmount = others + d.Loyalty
	q.FinalAmount = q.Subtotal - q.DiscountAmount
	q.PointsEarned = int(q.FinalAmount / PointsEarnUnit)
}

// RedeemedPoints は requested ポイント (換算額 value) のうち実際に充当された分のポイント数を返す
// 端数は切り上げる
func (q *Quote) RedeemedPoints(requested int, value int64) int {
	if requested <= 0 || value <= 0 {
		return 0
	}
	if q.Discounts.Loyalty >= value {
		return requested
	}
	applied := int64(requested) * q.Discounts.Loyalty
	return int((applied + value - 1) / value)
}
