package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/middleware"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/showtime"
)

type HoldHandler struct {
	service HoldServiceInterface
}

func NewHoldHandler(s HoldServiceInterface) *HoldHandler {
	return &HoldHandler{service: s}
}

type HoldRequest struct {
	SeatIDs         []string `json:"seat_ids" validate:"required,min=1,dive,required" example:"550e8400-e29b-41d4-a716-446655440000"`
	DurationSeconds int      `json:"duration_seconds" example:"600"`
}

type SeatResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label" example:"A12"`
	SeatType string `json:"seat_type" example:"VIP"`
}

type HoldResponse struct {
	ShowtimeID string         `json:"showtime_id"`
	UserID     string         `json:"user_id"`
	Seats      []SeatResponse `json:"seats"`
	HeldUntil  time.Time      `json:"held_until"`
}

type ReleaseAllResponse struct {
	Released int `json:"released"`
}

func toSeatResponse(s *showtime.Seat) SeatResponse {
	return SeatResponse{ID: s.ID, Label: s.Label(), SeatType: s.Type.Code}
}

func toHoldResponse(r *application.HoldResult) HoldResponse {
	seats := make([]SeatResponse, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = toSeatResponse(s)
	}
	return HoldResponse{ShowtimeID: r.ShowtimeID, UserID: r.UserID, Seats: seats, HeldUntil: r.HeldUntil}
}

// Create godoc
// @Summary 座席を一時保持
// @Description 指定した座席をまとめて保持します（全席確保できなければ何も保持しない）
// @Tags holds
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "上映回ID"
// @Param request body HoldRequest true "保持する座席"
// @Success 201 {object} HoldResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "競合した座席と確保可能な座席"
// @Failure 422 {object} api.ErrorResponse
// @Router /showtimes/{id}/holds [post]
func (h *HoldHandler) Create(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	var req HoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.Hold(c.Request().Context(), application.HoldInput{
		ShowtimeID:      c.Param("id"),
		SeatIDs:         req.SeatIDs,
		UserID:          actor.UserID,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toHoldResponse(result))
}

// Release godoc
// @Summary 座席の保持を解放
// @Description 自分の保持を解放します。force=true は管理者・スタッフのみ
// @Tags holds
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "上映回ID"
// @Param seat_id path string true "座席ID"
// @Param force query bool false "保持者を問わず解放"
// @Success 204
// @Failure 403 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /showtimes/{id}/holds/{seat_id} [delete]
func (h *HoldHandler) Release(c echo.Context) error {
	force, _ := strconv.ParseBool(c.QueryParam("force"))
	err := h.service.ReleaseSeat(c.Request().Context(), application.ReleaseSeatInput{
		ShowtimeID: c.Param("id"),
		SeatID:     c.Param("seat_id"),
		Actor:      middleware.ActorFrom(c),
		Force:      force,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReleaseAll godoc
// @Summary 自分の保持を全て解放
// @Tags holds
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Success 200 {object} ReleaseAllResponse
// @Router /holds [delete]
func (h *HoldHandler) ReleaseAll(c echo.Context) error {
	n, err := h.service.ReleaseUserSeats(c.Request().Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ReleaseAllResponse{Released: n})
}
