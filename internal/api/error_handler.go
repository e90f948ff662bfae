package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/seat"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/transaction"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/apperror"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
	// 同時更新による競合で、同じリクエストを再送できる場合に true
	Retryable        bool            `json:"retryable,omitempty"`
	Conflicts        []seat.Conflict `json:"conflicts,omitempty"`
	AvailableSeatIDs []string        `json:"available_seat_ids,omitempty"`
}

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindConflict:     http.StatusConflict,
	apperror.KindInvalidState: http.StatusUnprocessableEntity,
	apperror.KindValidation:   http.StatusBadRequest,
	apperror.KindUnauthorized: http.StatusForbidden,
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ドメインエラーは種別に応じたステータスコードに変換する
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := toErrorResponse(err)

	// エラーログを出力（5xx エラーの場合）
	if resp.Code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", resp.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(resp.Code, resp); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// StatusCode はエラーに対応するHTTPステータスを返す
func StatusCode(err error) int {
	return toErrorResponse(err).Code
}

func toErrorResponse(err error) ErrorResponse {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		return ErrorResponse{Error: message, Code: he.Code}
	}

	kind := apperror.KindOf(err)
	code, ok := statusByKind[kind]
	if !ok {
		return ErrorResponse{Error: "内部サーバーエラー", Code: http.StatusInternalServerError, Kind: string(apperror.KindInternal)}
	}

	resp := ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Kind:      string(kind),
		Retryable: errors.Is(err, transaction.ErrSerializationFailure),
	}
	var ce *seat.ConflictError
	if errors.As(err, &ce) {
		resp.Error = seat.ErrSeatUnavailable.Error()
		resp.Conflicts = ce.Conflicts
		resp.AvailableSeatIDs = ce.AvailableSeatIDs
	}
	return resp
}
