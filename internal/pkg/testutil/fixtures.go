//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// テスト用カタログの価格
const (
	BasePrice      int64 = 100_000
	ComboUnitPrice int64 = 50_000
	InitialPoints        = 100
)

// Catalog は統合テスト用に投入した上映回と関連データ
type Catalog struct {
	RoomID     string
	ShowtimeID string
	SeatIDs    []string // A1, A2, ... の順
	VIPSeatID  string
	ComboID    string
	UserIDs    []string
	StartAt    time.Time
}

// SeedCatalog は now の3時間後に開始する上映回と座席・ユーザーを作成する
func SeedCatalog(ctx context.Context, db *sqlx.DB, now time.Time, seats, users int) (*Catalog, error) {
	c := &Catalog{StartAt: now.Add(3 * time.Hour)}

	if err := db.GetContext(ctx, &c.RoomID,
		`INSERT INTO rooms (name, capacity) VALUES ($1, $2) RETURNING id`, "Screen 1", seats+1,
	); err != nil {
		return nil, fmt.Errorf("スクリーン作成に失敗: %w", err)
	}
	for i := 1; i <= seats; i++ {
		var id string
		if err := db.GetContext(ctx, &id,
			`INSERT INTO seats (room_id, row_label, seat_number, seat_type) VALUES ($1, 'A', $2, 'STANDARD') RETURNING id`,
			c.RoomID, i,
		); err != nil {
			return nil, fmt.Errorf("座席作成に失敗: %w", err)
		}
		c.SeatIDs = append(c.SeatIDs, id)
	}
	if err := db.GetContext(ctx, &c.VIPSeatID,
		`INSERT INTO seats (room_id, row_label, seat_number, seat_type) VALUES ($1, 'V', 1, 'VIP') RETURNING id`, c.RoomID,
	); err != nil {
		return nil, fmt.Errorf("VIP座席作成に失敗: %w", err)
	}
	if err := db.GetContext(ctx, &c.ShowtimeID,
		`INSERT INTO showtimes (movie_title, room_id, start_at, end_at, base_price) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		"テスト上映", c.RoomID, c.StartAt, c.StartAt.Add(2*time.Hour), BasePrice,
	); err != nil {
		return nil, fmt.Errorf("上映回作成に失敗: %w", err)
	}
	if err := db.GetContext(ctx, &c.ComboID,
		`INSERT INTO combos (name, unit_price) VALUES ('ポップコーンセット', $1) RETURNING id`, ComboUnitPrice,
	); err != nil {
		return nil, fmt.Errorf("セット商品作成に失敗: %w", err)
	}
	for i := 0; i < users; i++ {
		var id string
		if err := db.GetContext(ctx, &id,
			`INSERT INTO users (email, loyalty_points) VALUES ($1, $2) RETURNING id`,
			fmt.Sprintf("user%d-%d@example.com", i, now.UnixNano()), InitialPoints,
		); err != nil {
			return nil, fmt.Errorf("ユーザー作成に失敗: %w", err)
		}
		c.UserIDs = append(c.UserIDs, id)
	}
	return c, nil
}

// Truncate は座席在庫・予約・カタログを全て削除する
func Truncate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE seat_statuses, booking_combos, booking_seats, bookings,
		discount_usages, discount_codes, users, combos, showtimes, seats, rooms`)
	return err
}
