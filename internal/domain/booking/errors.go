package booking

import "github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = apperror.New(apperror.ErrNotFound, "予約が見つかりません")
	ErrBookingNotPending       = apperror.New(apperror.ErrInvalidState, "予約は支払い待ちではありません")
	ErrBookingExpired          = apperror.New(apperror.ErrInvalidState, "予約の支払い期限が切れています")
	ErrBookingAlreadyCancelled = apperror.New(apperror.ErrInvalidState, "予約は既にキャンセルされています")
	ErrBookingCodeConflict     = apperror.New(apperror.ErrConflict, "予約番号が重複しました。再試行してください")
	ErrNotBookingOwner         = apperror.New(apperror.ErrUnauthorized, "この予約を操作する権限がありません")
	ErrInvalidComboQuantity    = apperror.New(apperror.ErrValidation, "セット商品の数量は1以上である必要があります")
	ErrInvalidLoyaltyPoints    = apperror.New(apperror.ErrValidation, "利用ポイントは0以上である必要があります")
)
