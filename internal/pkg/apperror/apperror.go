package apperror

import "errors"

// 呼び出し側がエラーの種類で分岐できるよう、各ドメインのエラーはいずれかの種別をラップする
var (
	ErrNotFound     = errors.New("リソースが見つかりません")
	ErrConflict     = errors.New("競合が発生しました")
	ErrInvalidState = errors.New("現在の状態では実行できません")
	ErrValidation   = errors.New("入力値が不正です")
	ErrUnauthorized = errors.New("権限がありません")
)

// Kind はエラー種別を表す
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation_error"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// KindOf はエラーの種別を判定する
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// domainError はメッセージと種別を持つセンチネルエラー
type domainError struct {
	msg  string
	kind error
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

// New は指定した種別をラップするセンチネルエラーを作成する
func New(kind error, msg string) error {
	return &domainError{msg: msg, kind: kind}
}
