package booking

import (
	"context"
	"time"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は予約と価格スナップショットを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDForUpdate は予約を行ロックして取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Booking, error)

	// GetByUserID はユーザーの予約を新しい順に取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// UpdateStatus は状態と関連タイムスタンプを更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, b *Booking) error

	// ListExpiredPendingIDs は createdAtOrBefore 以前に作成された PENDING 予約のIDを返す
	ListExpiredPendingIDs(ctx context.Context, createdAtOrBefore time.Time, limit int) ([]string, error)
}
