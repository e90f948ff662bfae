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

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
)

type showtimeRow struct {
	ID         string    `db:"id"`
	MovieTitle string    `db:"movie_title"`
	RoomID     string    `db:"room_id"`
	StartAt    time.Time `db:"start_at"`
	EndAt      time.Time `db:"end_at"`
	BasePrice  int64     `db:"base_price"`
	IsActive   bool      `db:"is_active"`
}

func (r *showtimeRow) toEntity() *showtime.Showtime {
	return &showtime.Showtime{
		ID: r.ID, MovieTitle: r.MovieTitle, RoomID: r.RoomID,
		StartAt: r.StartAt, EndAt: r.EndAt,
		BasePrice: r.BasePrice, IsActive: r.IsActive,
	}
}

type seatRow struct {
	ID              string  `db:"id"`
	RoomID          string  `db:"room_id"`
	RowLabel        string  `db:"row_label"`
	SeatNumber      int     `db:"seat_number"`
	TypeCode        string  `db:"type_code"`
	TypeName        string  `db:"type_name"`
	PriceMultiplier float64 `db:"price_multiplier"`
}

func (r *seatRow) toEntity() *showtime.Seat {
	return &showtime.Seat{
		ID: r.ID, RoomID: r.RoomID, RowLabel: r.RowLabel, Number: r.SeatNumber,
		Type: showtime.SeatType{Code: r.TypeCode, Name: r.TypeName, PriceMultiplier: r.PriceMultiplier},
	}
}

type comboRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	UnitPrice int64  `db:"unit_price"`
	IsActive  bool   `db:"is_active"`
}

const seatSelect = `SELECT s.id, s.room_id, s.row_label, s.seat_number,
	t.code AS type_code, t.name AS type_name, t.price_multiplier
	FROM seats s JOIN seat_types t ON t.code = s.seat_type`

// ShowtimeRepository は上映回カタログを参照する
type ShowtimeRepository struct{ db *sqlx.DB }

func NewShowtimeRepository(db *sqlx.DB) *ShowtimeRepository {
	return &ShowtimeRepository{db: db}
}

func (r *ShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	if !isUUID(id) {
		return nil, showtime.ErrShowtimeNotFound
	}
	var row showtimeRow
	query := `SELECT id, movie_title, room_id, start_at, end_at, base_price, is_active FROM showtimes WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, showtime.ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("上映回取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ShowtimeRepository) GetSeatsByIDs(ctx context.Context, ids []string) ([]*showtime.Seat, error) {
	valid := filterUUIDs(ids)
	if len(valid) == 0 {
		return nil, nil
	}
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, seatSelect+` WHERE s.id = ANY($1::uuid[])`, pq.Array(valid)); err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return lo.Map(rows, func(row seatRow, _ int) *showtime.Seat { return row.toEntity() }), nil
}

func (r *ShowtimeRepository) GetSeatsByRoom(ctx context.Context, roomID string) ([]*showtime.Seat, error) {
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, seatSelect+` WHERE s.room_id = $1 ORDER BY s.row_label, s.seat_number`, roomID); err != nil {
		return nil, fmt.Errorf("スクリーン座席取得に失敗: %w", err)
	}
	return lo.Map(rows, func(row seatRow, _ int) *showtime.Seat { return row.toEntity() }), nil
}

func (r *ShowtimeRepository) GetCombosByIDs(ctx context.Context, ids []string) ([]*showtime.Combo, error) {
	valid := filterUUIDs(ids)
	if len(valid) == 0 {
		return nil, nil
	}
	var rows []comboRow
	query := `SELECT id, name, unit_price, is_active FROM combos WHERE id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(valid)); err != nil {
		return nil, fmt.Errorf("セット商品取得に失敗: %w", err)
	}
	return lo.Map(rows, func(row comboRow, _ int) *showtime.Combo {
		return &showtime.Combo{ID: row.ID, Name: row.Name, UnitPrice: row.UnitPrice, IsActive: row.IsActive}
	}), nil
}

var _ showtime.Repository = (*ShowtimeRepository)(nil)
