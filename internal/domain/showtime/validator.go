package showtime

import (
	"fmt"
	"time"
)

// CheckBookable は上映回が保持・予約を受け付けられる状態かを検証する
// 有効であること、開始前であること、開始 cutoff 前より前であることを要求する
func (s *Showtime) CheckBookable(now time.Time, cutoff time.Duration) error {
	if !s.IsActive {
		return ErrShowtimeInactive
	}
	if !now.Before(s.StartAt) {
		return ErrShowtimeStarted
	}
	if !now.Before(s.StartAt.Add(-cutoff)) {
		return ErrWithinCutoff
	}
	return nil
}

// ResolveSeats は要求された座席IDが全て上映回のスクリーンに属することを検証し、
// 要求順に並べた座席を返す
func (s *Showtime) ResolveSeats(seatIDs []string, found []*Seat) ([]*Seat, error) {
	byID := make(map[string]*Seat, len(found))
	for _, seat := range found {
		if seat.RoomID == s.RoomID {
			byID[seat.ID] = seat
		}
	}

	resolved := make([]*Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seat, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, id)
		}
		resolved = append(resolved, seat)
	}
	return resolved, nil
}

// ResolveCombos は要求されたセット商品が存在し販売中であることを検証する
func ResolveCombos(comboIDs []string, found []*Combo) (map[string]*Combo, error) {
	byID := make(map[string]*Combo, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	for _, id := range comboIDs {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrComboNotFound, id)
		}
		if !c.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrComboInactive, id)
		}
	}
	return byID, nil
}
