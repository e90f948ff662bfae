package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
)

const seatStatusColumns = `showtime_id, seat_id, status, held_by, held_until, booking_id, version, updated_at`

type seatStatusRow struct {
	ShowtimeID string     `db:"showtime_id"`
	SeatID     string     `db:"seat_id"`
	Status     string     `db:"status"`
	HeldBy     *string    `db:"held_by"`
	HeldUntil  *time.Time `db:"held_until"`
	BookingID  *string    `db:"booking_id"`
	Version    int        `db:"version"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r *seatStatusRow) toEntity() (*seat.SeatStatus, error) {
	s := &seat.SeatStatus{
		ShowtimeID: r.ShowtimeID,
		SeatID:     r.SeatID,
		Version:    r.Version,
		UpdatedAt:  r.UpdatedAt,
	}
	switch seat.Kind(r.Status) {
	case seat.KindAvailable:
		s.State = seat.Available{}
	case seat.KindHeld:
		if r.HeldBy == nil || r.HeldUntil == nil {
			return nil, fmt.Errorf("保持中の座席在庫に保持者がありません: %s/%s", r.ShowtimeID, r.SeatID)
		}
		s.State = seat.Held{UserID: *r.HeldBy, Until: *r.HeldUntil}
	case seat.KindBooked:
		if r.BookingID == nil {
			return nil, fmt.Errorf("予約済みの座席在庫に予約IDがありません: %s/%s", r.ShowtimeID, r.SeatID)
		}
		s.State = seat.Booked{BookingID: *r.BookingID}
	default:
		return nil, fmt.Errorf("不明な座席状態です: %s", r.Status)
	}
	return s, nil
}

// stateColumns は状態を status / held_by / held_until / booking_id の列値に分解する
func stateColumns(st seat.State) (status string, heldBy *string, heldUntil *time.Time, bookingID *string) {
	switch v := st.(type) {
	case seat.Held:
		return string(seat.KindHeld), &v.UserID, &v.Until, nil
	case seat.Booked:
		return string(seat.KindBooked), nil, nil, &v.BookingID
	default:
		return string(seat.KindAvailable), nil, nil, nil
	}
}

type seatKeyRow struct {
	ShowtimeID string `db:"showtime_id"`
	SeatID     string `db:"seat_id"`
}

func toKeys(rows []seatKeyRow) []seat.Key {
	return lo.Map(rows, func(r seatKeyRow, _ int) seat.Key {
		return seat.Key{ShowtimeID: r.ShowtimeID, SeatID: r.SeatID}
	})
}

// SeatStatusRepository は座席在庫を PostgreSQL に保存する
type SeatStatusRepository struct{ db *sqlx.DB }

func NewSeatStatusRepository(db *sqlx.DB) *SeatStatusRepository {
	return &SeatStatusRepository{db: db}
}

func sortedIDs(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return sorted
}

func (r *SeatStatusRepository) EnsureRows(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO seat_statuses (showtime_id, seat_id)
		SELECT $1::uuid, s FROM unnest($2::uuid[]) AS s ORDER BY s
		ON CONFLICT (showtime_id, seat_id) DO NOTHING`
	if _, err := sqlTx.ExecContext(ctx, query, showtimeID, pq.Array(sortedIDs(seatIDs))); err != nil {
		return fmt.Errorf("座席在庫の作成に失敗: %w", translateError(err))
	}
	return nil
}

func (r *SeatStatusRepository) LockForUpdate(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string) ([]*seat.SeatStatus, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return nil, err
	}
	// 座席ID昇順でロックを取得し、同じ座席を含む要求同士のデッドロックを避ける
	query := `SELECT ` + seatStatusColumns + ` FROM seat_statuses
		WHERE showtime_id = $1 AND seat_id = ANY($2::uuid[])
		ORDER BY seat_id FOR UPDATE`
	var rows []seatStatusRow
	if err := sqlTx.SelectContext(ctx, &rows, query, showtimeID, pq.Array(seatIDs)); err != nil {
		return nil, fmt.Errorf("座席在庫のロックに失敗: %w", translateError(err))
	}
	return toSeatStatuses(rows)
}

func (r *SeatStatusRepository) Update(ctx context.Context, tx transaction.Tx, statuses []*seat.SeatStatus) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE seat_statuses
		SET status = $1, held_by = $2, held_until = $3, booking_id = $4, version = version + 1, updated_at = $5
		WHERE showtime_id = $6 AND seat_id = $7 AND version = $8`
	for _, s := range statuses {
		status, heldBy, heldUntil, bookingID := stateColumns(s.State)
		result, err := sqlTx.ExecContext(ctx, query, status, heldBy, heldUntil, bookingID, s.UpdatedAt, s.ShowtimeID, s.SeatID, s.Version)
		if err != nil {
			return fmt.Errorf("座席在庫の更新に失敗: %w", translateError(err))
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return seat.ErrOptimisticLockFailed
		}
		s.Version++
	}
	return nil
}

func (r *SeatStatusRepository) ListByShowtime(ctx context.Context, showtimeID string) ([]*seat.SeatStatus, error) {
	if !isUUID(showtimeID) {
		return nil, nil
	}
	var rows []seatStatusRow
	query := `SELECT ` + seatStatusColumns + ` FROM seat_statuses WHERE showtime_id = $1 ORDER BY seat_id`
	if err := r.db.SelectContext(ctx, &rows, query, showtimeID); err != nil {
		return nil, fmt.Errorf("座席在庫一覧の取得に失敗: %w", err)
	}
	return toSeatStatuses(rows)
}

func (r *SeatStatusRepository) ReleaseHeldByUser(ctx context.Context, userID string, now time.Time) ([]seat.Key, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	query := `UPDATE seat_statuses
		SET status = 'AVAILABLE', held_by = NULL, held_until = NULL, version = version + 1, updated_at = $2
		WHERE status = 'HELD' AND held_by = $1
		RETURNING showtime_id, seat_id`
	var rows []seatKeyRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, now); err != nil {
		return nil, fmt.Errorf("ユーザーの保持解放に失敗: %w", translateError(err))
	}
	return toKeys(rows), nil
}

func (r *SeatStatusRepository) ReleaseHeld(ctx context.Context, showtimeID, seatID, userID string, force bool, now time.Time) error {
	if !isUUID(showtimeID) || !isUUID(seatID) {
		return seat.ErrSeatNotHeld
	}
	// 強制解放では保持者を問わないため、IDなしは NULL として渡す
	var holder *string
	if isUUID(userID) {
		holder = &userID
	} else if !force {
		return seat.ErrSeatNotHeld
	}
	query := `UPDATE seat_statuses
		SET status = 'AVAILABLE', held_by = NULL, held_until = NULL, version = version + 1, updated_at = $5
		WHERE showtime_id = $1 AND seat_id = $2 AND status = 'HELD' AND ($3 OR held_by = $4)`
	result, err := r.db.ExecContext(ctx, query, showtimeID, seatID, force, holder, now)
	if err != nil {
		return fmt.Errorf("座席の保持解放に失敗: %w", translateError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotHeld
	}
	return nil
}

func (r *SeatStatusRepository) ReleaseExpired(ctx context.Context, now time.Time) ([]seat.Key, error) {
	query := `UPDATE seat_statuses
		SET status = 'AVAILABLE', held_by = NULL, held_until = NULL, version = version + 1, updated_at = $1
		WHERE status = 'HELD' AND held_until < $1
		RETURNING showtime_id, seat_id`
	var rows []seatKeyRow
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("期限切れ保持の解放に失敗: %w", translateError(err))
	}
	return toKeys(rows), nil
}

func (r *SeatStatusRepository) ReleaseBooked(ctx context.Context, tx transaction.Tx, bookingID string, now time.Time) ([]seat.Key, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return nil, err
	}
	query := `UPDATE seat_statuses
		SET status = 'AVAILABLE', booking_id = NULL, version = version + 1, updated_at = $2
		WHERE status = 'BOOKED' AND booking_id = $1
		RETURNING showtime_id, seat_id`
	var rows []seatKeyRow
	if err := sqlTx.SelectContext(ctx, &rows, query, bookingID, now); err != nil {
		return nil, fmt.Errorf("予約座席の解放に失敗: %w", translateError(err))
	}
	return toKeys(rows), nil
}

func toSeatStatuses(rows []seatStatusRow) ([]*seat.SeatStatus, error) {
	statuses := make([]*seat.SeatStatus, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

var _ seat.Repository = (*SeatStatusRepository)(nil)
