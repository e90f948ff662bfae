package showtime

import "context"

// Repository は上映回・座席・セット商品の参照用リポジトリ
// いずれも読み取り専用のカタログデータ
type Repository interface {
	// GetByID はIDから上映回を取得する
	GetByID(ctx context.Context, id string) (*Showtime, error)

	// GetSeatsByIDs は指定IDの座席を取得する（存在しないIDは結果に含まれない）
	GetSeatsByIDs(ctx context.Context, ids []string) ([]*Seat, error)

	// GetSeatsByRoom はスクリーン内の全座席を列・番号順で取得する
	GetSeatsByRoom(ctx context.Context, roomID string) ([]*Seat, error)

	// GetCombosByIDs は指定IDのセット商品を取得する
	GetCombosByIDs(ctx context.Context, ids []string) ([]*Combo, error)
}
