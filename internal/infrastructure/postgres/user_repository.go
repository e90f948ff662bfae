package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/user"
)

type userRow struct {
	ID             string `db:"id"`
	Email          string `db:"email"`
	IsActive       bool   `db:"is_active"`
	MembershipTier string `db:"membership_tier"`
	LoyaltyPoints  int    `db:"loyalty_points"`
}

// UserRepository はユーザー情報を参照する
type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if !isUUID(id) {
		return nil, user.ErrUserNotFound
	}
	var row userRow
	query := `SELECT id, email, is_active, membership_tier, loyalty_points FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return &user.User{
		ID: row.ID, Email: row.Email, IsActive: row.IsActive,
		MembershipTier: row.MembershipTier, LoyaltyPoints: row.LoyaltyPoints,
	}, nil
}

var _ user.Directory = (*UserRepository)(nil)
