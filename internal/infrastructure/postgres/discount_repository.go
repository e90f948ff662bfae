package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/discount"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/clock"
)

// LoyaltyPointValue はポイント1点あたりの換算額
const LoyaltyPointValue int64 = 1_000

const (
	kindPromotion = "PROMOTION"
	kindVoucher   = "VOUCHER"

	discountTypeFixed      = "FIXED"
	discountTypePercentage = "PERCENTAGE"
)

type discountCodeRow struct {
	Code         string     `db:"code"`
	Kind         string     `db:"kind"`
	DiscountType string     `db:"discount_type"`
	Value        int64      `db:"value"`
	MaxDiscount  int64      `db:"max_discount"`
	MinSubtotal  int64      `db:"min_subtotal"`
	UsageLimit   int        `db:"usage_limit"`
	UsedCount    int        `db:"used_count"`
	ValidFrom    *time.Time `db:"valid_from"`
	ValidUntil   *time.Time `db:"valid_until"`
	IsActive     bool       `db:"is_active"`
}

// amount は有効期間・利用上限・最低金額を検証し、小計に対する割引額を返す
func (c *discountCodeRow) amount(subtotal int64, now time.Time) (int64, error) {
	if !c.IsActive ||
		(c.ValidFrom != nil && now.Before(*c.ValidFrom)) ||
		(c.ValidUntil != nil && !now.Before(*c.ValidUntil)) {
		return 0, discount.ErrCodeNotApplicable
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return 0, discount.ErrCodeUsageExceeded
	}
	if subtotal < c.MinSubtotal {
		return 0, discount.ErrMinimumNotSatisfied
	}

	var amount int64
	switch c.DiscountType {
	case discountTypePercentage:
		amount = subtotal * c.Value / 100
	default:
		amount = c.Value
	}
	if c.MaxDiscount > 0 && amount > c.MaxDiscount {
		amount = c.MaxDiscount
	}
	return amount, nil
}

// DiscountRepository はプロモーション・バウチャー・ポイント・会員ランク割引を提供する
type DiscountRepository struct {
	db    *sqlx.DB
	clock clock.Clock
}

func NewDiscountRepository(db *sqlx.DB, clk clock.Clock) *DiscountRepository {
	return &DiscountRepository{db: db, clock: clk}
}

func (r *DiscountRepository) PromotionDiscount(ctx context.Context, code, _ string, subtotal int64) (int64, error) {
	return r.codeDiscount(ctx, kindPromotion, code, subtotal)
}

func (r *DiscountRepository) RecordPromotionUsage(ctx context.Context, tx transaction.Tx, code, userID string) error {
	return r.recordUsage(ctx, tx, kindPromotion, code, userID)
}

func (r *DiscountRepository) VoucherDiscount(ctx context.Context, code, _ string, subtotal int64) (int64, error) {
	return r.codeDiscount(ctx, kindVoucher, code, subtotal)
}

func (r *DiscountRepository) RecordVoucherUsage(ctx context.Context, tx transaction.Tx, code, userID string) error {
	return r.recordUsage(ctx, tx, kindVoucher, code, userID)
}

func (r *DiscountRepository) codeDiscount(ctx context.Context, kind, code string, subtotal int64) (int64, error) {
	var row discountCodeRow
	query := `SELECT code, kind, discount_type, value, max_discount, min_subtotal, usage_limit, used_count, valid_from, valid_until, is_active
		FROM discount_codes WHERE code = $1 AND kind = $2`
	if err := r.db.GetContext(ctx, &row, query, code, kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", discount.ErrCodeNotFound, code)
		}
		return 0, fmt.Errorf("割引コード取得に失敗: %w", err)
	}
	return row.amount(subtotal, r.clock.Now())
}

// recordUsage は利用回数を上限内でのみ加算し、利用履歴を残す
func (r *DiscountRepository) recordUsage(ctx context.Context, tx transaction.Tx, kind, code, userID string) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	result, err := sqlTx.ExecContext(ctx,
		`UPDATE discount_codes SET used_count = used_count + 1
		WHERE code = $1 AND kind = $2 AND (usage_limit = 0 OR used_count < usage_limit)`,
		code, kind,
	)
	if err != nil {
		return fmt.Errorf("割引コード利用記録に失敗: %w", translateError(err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return discount.ErrCodeUsageExceeded
	}
	if _, err := sqlTx.ExecContext(ctx,
		`INSERT INTO discount_usages (code, user_id, used_at) VALUES ($1, $2, $3)`,
		code, userID, r.clock.Now(),
	); err != nil {
		return fmt.Errorf("割引コード利用履歴の保存に失敗: %w", translateError(err))
	}
	return nil
}

func (r *DiscountRepository) RedemptionValue(ctx context.Context, userID string, points int) (int64, error) {
	if !isUUID(userID) {
		return 0, user.ErrUserNotFound
	}
	var balance int
	if err := r.db.GetContext(ctx, &balance, `SELECT loyalty_points FROM users WHERE id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, user.ErrUserNotFound
		}
		return 0, fmt.Errorf("ポイント残高取得に失敗: %w", err)
	}
	if balance < points {
		return 0, discount.ErrInsufficientPoints
	}
	return int64(points) * LoyaltyPointValue, nil
}

func (r *DiscountRepository) AdjustPoints(ctx context.Context, tx transaction.Tx, userID string, delta int) error {
	if delta == 0 {
		return nil
	}
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	result, err := sqlTx.ExecContext(ctx,
		`UPDATE users SET loyalty_points = loyalty_points + $2 WHERE id = $1 AND loyalty_points + $2 >= 0`,
		userID, delta,
	)
	if err != nil {
		return fmt.Errorf("ポイント残高更新に失敗: %w", translateError(err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return discount.ErrInsufficientPoints
	}
	return nil
}

func (r *DiscountRepository) TierDiscount(ctx context.Context, userID string, subtotal int64) (int64, error) {
	if !isUUID(userID) {
		return 0, user.ErrUserNotFound
	}
	var tier struct {
		Percent     int64 `db:"discount_percent"`
		MaxDiscount int64 `db:"max_discount"`
	}
	query := `SELECT t.discount_percent, t.max_discount
		FROM users u JOIN membership_tiers t ON t.code = u.membership_tier WHERE u.id = $1`
	if err := r.db.GetContext(ctx, &tier, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, user.ErrUserNotFound
		}
		return 0, fmt.Errorf("会員ランク取得に失敗: %w", err)
	}
	amount := subtotal * tier.Percent / 100
	if tier.MaxDiscount > 0 && amount > tier.MaxDiscount {
		amount = tier.MaxDiscount
	}
	return amount, nil
}

var (
	_ discount.PromotionService  = (*DiscountRepository)(nil)
	_ discount.VoucherService    = (*DiscountRepository)(nil)
	_ discount.LoyaltyService    = (*DiscountRepository)(nil)
	_ discount.MembershipService = (*DiscountRepository)(nil)
)
