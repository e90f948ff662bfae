package discount

import "github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"

// 割引関連のエラー定義
var (
	ErrCodeNotFound        = apperror.New(apperror.ErrValidation, "割引コードが見つかりません")
	ErrCodeNotApplicable   = apperror.New(apperror.ErrValidation, "割引コードは現在利用できません")
	ErrCodeUsageExceeded   = apperror.New(apperror.ErrConflict, "割引コードの利用上限に達しています")
	ErrInsufficientPoints  = apperror.New(apperror.ErrValidation, "ポイント残高が不足しています")
	ErrMinimumNotSatisfied = apperror.New(apperror.ErrValidation, "割引コードの最低利用金額に達していません")
)
