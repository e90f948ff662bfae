package discount

import (
	"context"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
)

// PromotionService はプロモーションコードの割引額を提供する
type PromotionService interface {
	// PromotionDiscount はコードを小計に適用した割引額を返す
	PromotionDiscount(ctx context.Context, code, userID string, subtotal int64) (int64, error)
	// RecordPromotionUsage は利用回数を記録する（トランザクション必須）
	RecordPromotionUsage(ctx context.Context, tx transaction.Tx, code, userID string) error
}

// VoucherService はバウチャーの割引額を提供する
type VoucherService interface {
	VoucherDiscount(ctx context.Context, code, userID string, subtotal int64) (int64, error)
	RecordVoucherUsage(ctx context.Context, tx transaction.Tx, code, userID string) error
}

// LoyaltyService はポイントの換算と残高の増減を提供する
type LoyaltyService interface {
	// RedemptionValue は利用ポイントの換算額を返す。残高不足はエラー
	RedemptionValue(ctx context.Context, userID string, points int) (int64, error)
	// AdjustPoints はポイント残高を delta だけ増減する（トランザクション必須）
	AdjustPoints(ctx context.Context, tx transaction.Tx, userID string, delta int) error
}

// MembershipService は会員ランクによる割引額を提供する
type MembershipService interface {
	TierDiscount(ctx context.Context, userID string, subtotal int64) (int64, error)
}
