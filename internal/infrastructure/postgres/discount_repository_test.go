package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/discount"
)

func TestDiscountCodeRow_Amount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		row      discountCodeRow
		subtotal int64
		expected int64
		wantErr  error
	}{
		{"定額", discountCodeRow{DiscountType: discountTypeFixed, Value: 20000, IsActive: true}, 100000, 20000, nil},
		{"定率", discountCodeRow{DiscountType: discountTypePercentage, Value: 10, IsActive: true}, 150000, 15000, nil},
		{"上限で頭打ち", discountCodeRow{DiscountType: discountTypePercentage, Value: 50, MaxDiscount: 30000, IsActive: true}, 100000, 30000, nil},
		{"無効", discountCodeRow{DiscountType: discountTypeFixed, Value: 1, IsActive: false}, 100000, 0, discount.ErrCodeNotApplicable},
		{"開始前", discountCodeRow{DiscountType: discountTypeFixed, Value: 1, IsActive: true, ValidFrom: &future}, 100000, 0, discount.ErrCodeNotApplicable},
		{"期限切れ", discountCodeRow{DiscountType: discountTypeFixed, Value: 1, IsActive: true, ValidUntil: &past}, 100000, 0, discount.ErrCodeNotApplicable},
		{"利用上限", discountCodeRow{DiscountType: discountTypeFixed, Value: 1, IsActive: true, UsageLimit: 5, UsedCount: 5}, 100000, 0, discount.ErrCodeUsageExceeded},
		{"最低金額未満", discountCodeRow{DiscountType: discountTypeFixed, Value: 1, IsActive: true, MinSubtotal: 200000}, 100000, 0, discount.ErrMinimumNotSatisfied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.row.amount(tt.subtotal, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
