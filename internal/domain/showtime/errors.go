package showtime

import "github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"

// Showtime ドメインのエラー定義
var (
	ErrShowtimeNotFound = apperror.New(apperror.ErrNotFound, "上映回が見つかりません")
	ErrSeatNotFound     = apperror.New(apperror.ErrNotFound, "指定された座席はこの上映回のスクリーンに存在しません")
	ErrComboNotFound    = apperror.New(apperror.ErrNotFound, "指定されたセット商品が見つかりません")
	ErrShowtimeInactive = apperror.New(apperror.ErrInvalidState, "上映回は販売停止中です")
	ErrShowtimeStarted  = apperror.New(apperror.ErrInvalidState, "上映回は既に開始しています")
	ErrWithinCutoff     = apperror.New(apperror.ErrInvalidState, "上映開始直前のため予約を受け付けていません")
	ErrComboInactive    = apperror.New(apperror.ErrInvalidState, "セット商品は販売停止中です")
)
