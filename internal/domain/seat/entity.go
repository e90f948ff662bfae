package seat

import (
	"math"
	"time"
)

// SeatStatus は上映回ごとの座席在庫を表す
// 行は最初の保持・予約時に遅延作成される
type SeatStatus struct {
	ShowtimeID string
	SeatID     string
	State      State
	Version    int // 楽観的ロック用
	UpdatedAt  time.Time
}

// Key は座席在庫の識別子
type Key struct {
	ShowtimeID string
	SeatID     string
}

// NewSeatStatus は AVAILABLE の座席在庫を作成する
func NewSeatStatus(showtimeID, seatID string) *SeatStatus {
	return &SeatStatus{
		ShowtimeID: showtimeID,
		SeatID:     seatID,
		State:      Available{},
	}
}

// Effective は遅延失効を適用した状態を返す
// 期限切れの保持は書き戻されていなくても AVAILABLE とみなす
func (s *SeatStatus) Effective(now time.Time) State {
	if h, ok := s.State.(Held); ok && h.Expired(now) {
		return Available{}
	}
	return s.State
}

// Claimable は userID がこの座席を保持・予約できるかを返す
func (s *SeatStatus) Claimable(userID string, now time.Time) bool {
	_, ok := s.conflict(userID, now)
	return !ok
}

func (s *SeatStatus) conflict(userID string, now time.Time) (Conflict, bool) {
	switch st := s.Effective(now).(type) {
	case Booked:
		return Conflict{SeatID: s.SeatID, Reason: ReasonBooked}, true
	case Held:
		if st.UserID == userID {
			return Conflict{}, false
		}
		return Conflict{
			SeatID:           s.SeatID,
			Reason:           ReasonHeld,
			RemainingSeconds: remainingSeconds(st.Until, now),
		}, true
	default:
		return Conflict{}, false
	}
}

// Hold は座席を userID の保持状態にする
// 自分の保持中であれば期限を延長する
func (s *SeatStatus) Hold(userID string, until, now time.Time) error {
	if c, ok := s.conflict(userID, now); ok {
		return c.err()
	}
	s.State = Held{UserID: userID, Until: until}
	s.UpdatedAt = now
	return nil
}

// Book は座席を予約済みにする
// AVAILABLE または userID 自身の保持中の座席のみ遷移できる
func (s *SeatStatus) Book(bookingID, userID string, now time.Time) error {
	if c, ok := s.conflict(userID, now); ok {
		return c.err()
	}
	s.State = Booked{BookingID: bookingID}
	s.UpdatedAt = now
	return nil
}

// Classify は全座席が userID にとって確保可能かを判定する
// 一つでも確保できない座席があれば、競合座席と確保可能な座席を列挙した ConflictError を返す
func Classify(statuses []*SeatStatus, userID string, now time.Time) error {
	var (
		conflicts []Conflict
		available []string
	)
	for _, s := range statuses {
		if c, ok := s.conflict(userID, now); ok {
			conflicts = append(conflicts, c)
			continue
		}
		available = append(available, s.SeatID)
	}
	if len(conflicts) == 0 {
		return nil
	}
	var showtimeID string
	if len(statuses) > 0 {
		showtimeID = statuses[0].ShowtimeID
	}
	return &ConflictError{
		ShowtimeID:       showtimeID,
		Conflicts:        conflicts,
		AvailableSeatIDs: available,
	}
}

func remainingSeconds(until, now time.Time) int {
	d := until.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
