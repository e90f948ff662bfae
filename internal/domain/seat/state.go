package seat

import "time"

// Kind は座席在庫の状態種別（永続化される値）
type Kind string

const (
	KindAvailable Kind = "AVAILABLE"
	KindHeld      Kind = "HELD"
	KindBooked    Kind = "BOOKED"
)

// State は座席在庫の状態
// Available / Held / Booked のいずれかで、状態ごとに必要な値だけを持つ
type State interface {
	Kind() Kind
	isState()
}

// Available は誰も保持・予約していない状態
type Available struct{}

// Held はユーザーが期限付きで保持している状態
type Held struct {
	UserID string
	Until  time.Time
}

// Booked は予約に紐づいた状態
type Booked struct {
	BookingID string
}

func (Available) Kind() Kind { return KindAvailable }
func (Held) Kind() Kind      { return KindHeld }
func (Booked) Kind() Kind    { return KindBooked }

func (Available) isState() {}
func (Held) isState()      {}
func (Booked) isState()    {}

// Expired は保持期限が now より前かを返す
// Until ちょうどの時刻はまだ有効
func (h Held) Expired(now time.Time) bool {
	return h.Until.Before(now)
}
