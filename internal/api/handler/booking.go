package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/middleware"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type ComboItemRequest struct {
	ComboID  string `json:"combo_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1" example:"2"`
}

type CreateBookingRequest struct {
	ShowtimeID    string             `json:"showtime_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs       []string           `json:"seat_ids" validate:"required,min=1,dive,required"`
	Combos        []ComboItemRequest `json:"combos" validate:"dive"`
	PromoCode     string             `json:"promo_code,omitempty" example:"SUMMER10"`
	VoucherCode   string             `json:"voucher_code,omitempty"`
	LoyaltyPoints int                `json:"loyalty_points" validate:"gte=0"`
}

type BookingSeatResponse struct {
	SeatID   string `json:"seat_id"`
	Label    string `json:"label"`
	SeatType string `json:"seat_type"`
	Price    int64  `json:"price"`
}

type BookingComboResponse struct {
	ComboID    string `json:"combo_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	TotalPrice int64  `json:"total_price"`
}

type DiscountBreakdown struct {
	Promotion  int64 `json:"promotion"`
	Voucher    int64 `json:"voucher"`
	Loyalty    int64 `json:"loyalty"`
	Membership int64 `json:"membership"`
}

type BookingResponse struct {
	ID             string                 `json:"id"`
	Code           string                 `json:"code" example:"BK-20260301-7KQ2M9XA"`
	UserID         string                 `json:"user_id"`
	ShowtimeID     string                 `json:"showtime_id"`
	Status         string                 `json:"status" example:"PENDING"`
	Seats          []BookingSeatResponse  `json:"seats"`
	Combos         []BookingComboResponse `json:"combos"`
	Subtotal       int64                  `json:"subtotal"`
	Discounts      DiscountBreakdown      `json:"discounts"`
	DiscountAmount int64                  `json:"discount_amount"`
	FinalAmount    int64                  `json:"final_amount"`
	PointsUsed     int                    `json:"points_used"`
	PointsEarned   int                    `json:"points_earned"`
	CreatedAt      time.Time              `json:"created_at"`
	PaidAt         *time.Time             `json:"paid_at,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, Code: b.Code, UserID: b.UserID, ShowtimeID: b.ShowtimeID,
		Status: string(b.Status),
		Seats: lo.Map(b.Seats, func(s booking.SeatLine, _ int) BookingSeatResponse {
			return BookingSeatResponse{SeatID: s.SeatID, Label: s.Label, SeatType: s.SeatType, Price: s.Price}
		}),
		Combos: lo.Map(b.Combos, func(c booking.ComboLine, _ int) BookingComboResponse {
			return BookingComboResponse{
				ComboID: c.ComboID, Name: c.Name, Quantity: c.Quantity,
				UnitPrice: c.UnitPrice, TotalPrice: c.TotalPrice,
			}
		}),
		Subtotal: b.Subtotal,
		Discounts: DiscountBreakdown{
			Promotion: b.Discounts.Promotion, Voucher: b.Discounts.Voucher,
			Loyalty: b.Discounts.Loyalty, Membership: b.Discounts.Membership,
		},
		DiscountAmount: b.DiscountAmount, FinalAmount: b.FinalAmount,
		PointsUsed: b.PointsUsed, PointsEarned: b.PointsEarned,
		CreatedAt: b.CreatedAt, PaidAt: b.PaidAt, CancelledAt: b.CancelledAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 座席を確定予約します（支払い待ち、15分以内に支払いがなければ自動キャンセル）
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateBookingRequest true "予約内容"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "座席が確保できない"
// @Failure 422 {object} api.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		UserID:     middleware.ActorFrom(c).UserID,
		ShowtimeID: req.ShowtimeID,
		SeatIDs:    req.SeatIDs,
		Combos: lo.Map(req.Combos, func(r ComboItemRequest, _ int) booking.ComboRequest {
			return booking.ComboRequest{ComboID: r.ComboID, Quantity: r.Quantity}
		}),
		PromoCode:     req.PromoCode,
		VoucherCode:   req.VoucherCode,
		LoyaltyPoints: req.LoyaltyPoints,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// List godoc
// @Summary 自分の予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.ListUserBookings(c.Request().Context(), middleware.ActorFrom(c).UserID, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 座席を解放し、使用したポイントを返却します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// MarkPaid godoc
// @Summary 予約を支払い済みにする
// @Description 決済完了の通知を受けて予約を確定します（管理者・スタッフのみ）
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Router /bookings/{id}/paid [post]
func (h *BookingHandler) MarkPaid(c echo.Context) error {
	b, err := h.service.MarkPaid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
