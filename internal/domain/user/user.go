package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"
)

// 利用者ロール
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

var (
	ErrUserNotFound  = apperror.New(apperror.ErrNotFound, "ユーザーが見つかりません")
	ErrUserInactive  = apperror.New(apperror.ErrInvalidState, "ユーザーは無効化されています")
	ErrInvalidUserID = apperror.New(apperror.ErrValidation, "ユーザーIDの形式が不正です")
)

// User は予約判定に必要なユーザー情報
type User struct {
	ID             string
	Email          string
	IsActive       bool
	MembershipTier string
	LoyaltyPoints  int
}

// Directory はユーザー情報の参照先
type Directory interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// IsPrivileged は他ユーザーの保持を強制解除できるロールかを返す
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

// ParseID は利用者IDを小文字ハイフン区切りの UUID に正規化する
// 大文字・波括弧・urn:uuid: 形式も同じIDとして扱う
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidUserID
	}
	return id.String(), nil
}

// CanonicalID は UUID として解釈できるIDだけを正規化し、それ以外はそのまま返す
func CanonicalID(raw string) string {
	if id, err := ParseID(raw); err == nil {
		return id
	}
	return strings.TrimSpace(raw)
}
