package transaction

import (
	"context"
	"errors"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"
)

// ErrSerializationFailure はストアの直列化検出によりトランザクションが中断されたことを表す
// 呼び出し側での再試行が可能な競合として扱う
var ErrSerializationFailure = apperror.New(apperror.ErrConflict, "同時更新の競合によりトランザクションが中断されました。再試行してください")

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// BeginSerializable は SERIALIZABLE のトランザクションを開始する
	BeginSerializable(ctx context.Context) (Tx, error)
}

// RunSerializable は fn を SERIALIZABLE トランザクション内で実行する
// fn がエラーを返した場合はロールバックし、成功した場合はコミットする
func RunSerializable(ctx context.Context, m Manager, fn func(tx Tx) error) (err error) {
	tx, err := m.BeginSerializable(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}
