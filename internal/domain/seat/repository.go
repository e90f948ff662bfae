package seat

import (
	"context"
	"time"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
)

// Repository は座席在庫リポジトリのインターフェース
type Repository interface {
	// EnsureRows は存在しない座席在庫行を AVAILABLE で作成する（トランザクション必須）
	EnsureRows(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string) error

	// LockForUpdate は座席在庫行を座席ID昇順で行ロックして取得する（トランザクション必須）
	LockForUpdate(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string) ([]*SeatStatus, error)

	// Update は状態を書き込み version を1増やす（トランザクション必須）
	// 読み取り時の version と一致しない場合は ErrOptimisticLockFailed を返す
	Update(ctx context.Context, tx transaction.Tx, statuses []*SeatStatus) error

	// ListByShowtime は上映回の座席在庫行を全て取得する
	ListByShowtime(ctx context.Context, showtimeID string) ([]*SeatStatus, error)

	// ReleaseHeldByUser はユーザーが保持している全座席を解放し、解放数を返す
	ReleaseHeldByUser(ctx context.Context, userID string, now time.Time) ([]Key, error)

	// ReleaseHeld は1座席の保持を解放する。force でなければ保持者本人の保持のみ対象
	// 対象がなければ ErrSeatNotHeld を返す
	ReleaseHeld(ctx context.Context, showtimeID, seatID, userID string, force bool, now time.Time) error

	// ReleaseExpired は held_until < now の保持を解放する
	ReleaseExpired(ctx context.Context, now time.Time) ([]Key, error)

	// ReleaseBooked は予約に紐づく座席を AVAILABLE に戻す（トランザクション必須）
	ReleaseBooked(ctx context.Context, tx transaction.Tx, bookingID string, now time.Time) ([]Key, error)
}
