package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
)

const (
	holdSweepLockKey    = "reaper:holds"
	bookingSweepLockKey = "reaper:bookings"
)

// Sweeper は期限切れの保持・予約を回収する
type Sweeper interface {
	SweepExpiredHolds(ctx context.Context) (int, error)
	SweepExpiredBookings(ctx context.Context) (int, error)
}

// Locker は複数インスタンスのうち1つだけが回収を実行するためのロック
// 取得したロックは unlock が呼ばれるまで保持され続ける
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

// Reaper は一定間隔で2種類の回収を独立して実行するワーカー
// 回収が止まっても遅延失効により座席の判定は正しいまま
type Reaper struct {
	sweeper  Sweeper
	locker   Locker // nil の場合は常に実行する
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewReaper は新しいワーカーを作成
func NewReaper(s Sweeper, locker Locker, interval time.Duration) *Reaper {
	return &Reaper{
		sweeper:  s,
		locker:   locker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始し、停止されるまでブロックする
func (r *Reaper) Start(ctx context.Context) {
	logger.Info("クリーンアップワーカー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("クリーンアップワーカー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("クリーンアップワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// Stop はワーカーを停止し、実行中の回収の完了を待つ
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

// runOnce は2種類の回収を並行に1回ずつ実行する
// 片方の失敗はもう片方に影響しない
func (r *Reaper) runOnce(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		r.sweep(ctx, holdSweepLockKey, r.sweeper.SweepExpiredHolds)
		return nil
	})
	g.Go(func() error {
		r.sweep(ctx, bookingSweepLockKey, r.sweeper.SweepExpiredBookings)
		return nil
	})
	_ = g.Wait()
}

func (r *Reaper) sweep(ctx context.Context, lockKey string, fn func(context.Context) (int, error)) {
	log := logger.Get()

	if r.locker != nil {
		unlock, acquired, err := r.locker.TryLock(ctx, lockKey, r.interval)
		if err != nil {
			log.Warn("クリーンアップのロック取得に失敗", zap.String("lock", lockKey), zap.Error(err))
			return
		}
		if !acquired {
			log.Debug("他のインスタンスがクリーンアップ中", zap.String("lock", lockKey))
			return
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("クリーンアップのロック解放に失敗", zap.String("lock", lockKey), zap.Error(err))
			}
		}()
	}

	// 件数とエラーのログは CleanupService が出力する
	_, _ = fn(ctx)
}
