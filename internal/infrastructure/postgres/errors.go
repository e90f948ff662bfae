package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
)

// PostgreSQL のエラーコード
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// translateError は直列化失敗・デッドロックを再試行可能な競合エラーに変換する
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s", transaction.ErrSerializationFailure, pqErr.Message)
		}
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// isUUID は値が UUID として解釈できるかを返す
// UUID 列に不正な文字列を渡すとクエリ自体が失敗するため、事前に除外する
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func filterUUIDs(ids []string) []string {
	return lo.Filter(ids, func(id string, _ int) bool { return isUUID(id) })
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
