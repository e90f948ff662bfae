package seat

import (
	"fmt"
	"strings"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"
)

// Seat ドメインのエラー定義
var (
	ErrSeatUnavailable      = apperror.New(apperror.ErrConflict, "座席は確保できません")
	ErrSeatNotHeld          = apperror.New(apperror.ErrInvalidState, "座席はこのユーザーに保持されていないか、既に解放されています")
	ErrTooManySeats         = apperror.New(apperror.ErrValidation, "一度に指定できる座席数を超えています")
	ErrSeatIDsRequired      = apperror.New(apperror.ErrValidation, "座席IDは必須です")
	ErrInvalidHoldDuration  = apperror.New(apperror.ErrValidation, "保持時間が不正です")
	ErrForceNotPermitted    = apperror.New(apperror.ErrUnauthorized, "他ユーザーの保持を強制解除する権限がありません")
	ErrOptimisticLockFailed = apperror.New(apperror.ErrConflict, "座席在庫が他の処理により更新されました")
)

// ConflictReason は座席を確保できない理由
type ConflictReason string

const (
	ReasonBooked ConflictReason = "booked"
	ReasonHeld   ConflictReason = "held"
)

// Conflict は確保できなかった座席の詳細
type Conflict struct {
	SeatID           string         `json:"seat_id"`
	Reason           ConflictReason `json:"reason"`
	RemainingSeconds int            `json:"remaining_seconds,omitempty"`
}

func (c Conflict) err() error {
	return &ConflictError{Conflicts: []Conflict{c}}
}

// ConflictError は一部の座席が確保できなかったことを表す
// errors.Is(err, apperror.ErrConflict) が成立する
type ConflictError struct {
	ShowtimeID       string
	Conflicts        []Conflict
	AvailableSeatIDs []string
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		if c.Reason == ReasonHeld {
			parts = append(parts, fmt.Sprintf("%s(%s, 残り%d秒)", c.SeatID, c.Reason, c.RemainingSeconds))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", c.SeatID, c.Reason))
	}
	return fmt.Sprintf("%s: %s", ErrSeatUnavailable.Error(), strings.Join(parts, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrSeatUnavailable }
