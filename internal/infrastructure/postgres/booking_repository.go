package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
)

const bookingColumns = `id, code, user_id, showtime_id, status, subtotal,
	promotion_discount, voucher_discount, loyalty_discount, membership_discount,
	discount_amount, final_amount, promo_code, voucher_code, points_used, points_earned,
	created_at, updated_at, paid_at, cancelled_at`

type bookingRow struct {
	ID                 string     `db:"id"`
	Code               string     `db:"code"`
	UserID             string     `db:"user_id"`
	ShowtimeID         string     `db:"showtime_id"`
	Status             string     `db:"status"`
	Subtotal           int64      `db:"subtotal"`
	PromotionDiscount  int64      `db:"promotion_discount"`
	VoucherDiscount    int64      `db:"voucher_discount"`
	LoyaltyDiscount    int64      `db:"loyalty_discount"`
	MembershipDiscount int64      `db:"membership_discount"`
	DiscountAmount     int64      `db:"discount_amount"`
	FinalAmount        int64      `db:"final_amount"`
	PromoCode          *string    `db:"promo_code"`
	VoucherCode        *string    `db:"voucher_code"`
	PointsUsed         int        `db:"points_used"`
	PointsEarned       int        `db:"points_earned"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	PaidAt             *time.Time `db:"paid_at"`
	CancelledAt        *time.Time `db:"cancelled_at"`
}

type bookingSeatRow struct {
	BookingID string `db:"booking_id"`
	SeatID    string `db:"seat_id"`
	Label     string `db:"label"`
	SeatType  string `db:"seat_type"`
	Price     int64  `db:"price"`
}

type bookingComboRow struct {
	BookingID  string `db:"booking_id"`
	ComboID    string `db:"combo_id"`
	Name       string `db:"name"`
	Quantity   int    `db:"quantity"`
	UnitPrice  int64  `db:"unit_price"`
	TotalPrice int64  `db:"total_price"`
}

func (r *bookingRow) toEntity(seats []bookingSeatRow, combos []bookingComboRow) *booking.Booking {
	return &booking.Booking{
		ID: r.ID, Code: r.Code, UserID: r.UserID, ShowtimeID: r.ShowtimeID,
		Status: booking.Status(r.Status),
		Seats: lo.Map(seats, func(s bookingSeatRow, _ int) booking.SeatLine {
			return booking.SeatLine{SeatID: s.SeatID, Label: s.Label, SeatType: s.SeatType, Price: s.Price}
		}),
		Combos: lo.Map(combos, func(c bookingComboRow, _ int) booking.ComboLine {
			return booking.ComboLine{ComboID: c.ComboID, Name: c.Name, Quantity: c.Quantity, UnitPrice: c.UnitPrice, TotalPrice: c.TotalPrice}
		}),
		Subtotal: r.Subtotal,
		Discounts: booking.Discounts{
			Promotion: r.PromotionDiscount, Voucher: r.VoucherDiscount,
			Loyalty: r.LoyaltyDiscount, Membership: r.MembershipDiscount,
		},
		DiscountAmount: r.DiscountAmount, FinalAmount: r.FinalAmount,
		PromoCode: lo.FromPtr(r.PromoCode), VoucherCode: lo.FromPtr(r.VoucherCode),
		PointsUsed: r.PointsUsed, PointsEarned: r.PointsEarned,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		PaidAt: r.PaidAt, CancelledAt: r.CancelledAt,
	}
}

// BookingRepository は予約を PostgreSQL に保存する
type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = sqlTx.ExecContext(ctx, query,
		b.ID, b.Code, b.UserID, b.ShowtimeID, string(b.Status), b.Subtotal,
		b.Discounts.Promotion, b.Discounts.Voucher, b.Discounts.Loyalty, b.Discounts.Membership,
		b.DiscountAmount, b.FinalAmount, nullIfEmpty(b.PromoCode), nullIfEmpty(b.VoucherCode),
		b.PointsUsed, b.PointsEarned, b.CreatedAt, b.UpdatedAt, b.PaidAt, b.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err, "bookings_code_key") {
			return booking.ErrBookingCodeConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", translateError(err))
	}

	for _, s := range b.Seats {
		if _, err := sqlTx.ExecContext(ctx,
			`INSERT INTO booking_seats (booking_id, seat_id, label, seat_type, price) VALUES ($1, $2, $3, $4, $5)`,
			b.ID, s.SeatID, s.Label, s.SeatType, s.Price,
		); err != nil {
			return fmt.Errorf("予約座席の保存に失敗: %w", translateError(err))
		}
	}
	for _, c := range b.Combos {
		if _, err := sqlTx.ExecContext(ctx,
			`INSERT INTO booking_combos (booking_id, combo_id, name, quantity, unit_price, total_price) VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, c.ComboID, c.Name, c.Quantity, c.UnitPrice, c.TotalPrice,
		); err != nil {
			return fmt.Errorf("予約セット商品の保存に失敗: %w", translateError(err))
		}
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	return r.get(ctx, r.db, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, sqlTx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRepository) get(ctx context.Context, q sqlx.QueryerContext, query, id string) (*booking.Booking, error) {
	if !isUUID(id) {
		return nil, booking.ErrBookingNotFound
	}
	var row bookingRow
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", translateError(err))
	}
	bookings, err := r.withLines(ctx, q, []bookingRow{row})
	if err != nil {
		return nil, err
	}
	return bookings[0], nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if !isUUID(userID) {
		return []*booking.Booking{}, nil
	}
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return r.withLines(ctx, r.db, rows)
}

// withLines は予約行に座席・セット商品のスナップショットをまとめて付与する
func (r *BookingRepository) withLines(ctx context.Context, q sqlx.QueryerContext, rows []bookingRow) ([]*booking.Booking, error) {
	if len(rows) == 0 {
		return []*booking.Booking{}, nil
	}
	ids := pq.Array(lo.Map(rows, func(row bookingRow, _ int) string { return row.ID }))

	var seats []bookingSeatRow
	if err := sqlx.SelectContext(ctx, q, &seats,
		`SELECT booking_id, seat_id, label, seat_type, price FROM booking_seats WHERE booking_id = ANY($1::uuid[]) ORDER BY label`, ids,
	); err != nil {
		return nil, fmt.Errorf("予約座席取得に失敗: %w", translateError(err))
	}
	var combos []bookingComboRow
	if err := sqlx.SelectContext(ctx, q, &combos,
		`SELECT booking_id, combo_id, name, quantity, unit_price, total_price FROM booking_combos WHERE booking_id = ANY($1::uuid[]) ORDER BY name`, ids,
	); err != nil {
		return nil, fmt.Errorf("予約セット商品取得に失敗: %w", translateError(err))
	}

	seatsByBooking := lo.GroupBy(seats, func(s bookingSeatRow) string { return s.BookingID })
	combosByBooking := lo.GroupBy(combos, func(c bookingComboRow) string { return c.BookingID })
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity(seatsByBooking[rows[i].ID], combosByBooking[rows[i].ID])
	}
	return result, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE bookings SET status = $1, paid_at = $2, cancelled_at = $3, updated_at = $4 WHERE id = $5`
	result, err := sqlTx.ExecContext(ctx, query, string(b.Status), b.PaidAt, b.CancelledAt, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", translateError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListExpiredPendingIDs(ctx context.Context, createdAtOrBefore time.Time, limit int) ([]string, error) {
	var ids []string
	query := `SELECT id FROM bookings WHERE status = 'PENDING' AND created_at <= $1 ORDER BY created_at LIMIT $2`
	if err := r.db.SelectContext(ctx, &ids, query, createdAtOrBefore, limit); err != nil {
		return nil, fmt.Errorf("期限切れ予約取得に失敗: %w", err)
	}
	return ids, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
