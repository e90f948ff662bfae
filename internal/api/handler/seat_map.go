package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MinhTruong204/movie-booking-system-sub000/internal/api/middleware"
	"github.com/MinhTruong204/movie-booking-system-sub000/internal/application"
)

type SeatMapHandler struct {
	service SeatMapServiceInterface
}

func NewSeatMapHandler(s SeatMapServiceInterface) *SeatMapHandler {
	return &SeatMapHandler{service: s}
}

type SeatMapSeatResponse struct {
	ID        string     `json:"id"`
	Label     string     `json:"label" example:"A12"`
	SeatType  string     `json:"seat_type" example:"STANDARD"`
	Price     int64      `json:"price" example:"90000"`
	Status    string     `json:"status" example:"AVAILABLE"`
	HeldByMe  bool       `json:"held_by_me,omitempty"`
	HeldUntil *time.Time `json:"held_until,omitempty"`
}

type SeatMapResponse struct {
	ShowtimeID     string                `json:"showtime_id"`
	MovieTitle     string                `json:"movie_title"`
	StartAt        time.Time             `json:"start_at"`
	AvailableCount int                   `json:"available_count"`
	Seats          []SeatMapSeatResponse `json:"seats"`
}

type AvailableCountResponse struct {
	ShowtimeID     string `json:"showtime_id"`
	AvailableCount int    `json:"available_count"`
}

func toSeatMapResponse(m *application.SeatMap) SeatMapResponse {
	resp := SeatMapResponse{
		ShowtimeID:     m.Showtime.ID,
		MovieTitle:     m.Showtime.MovieTitle,
		StartAt:        m.Showtime.StartAt,
		AvailableCount: m.AvailableCount,
		Seats:          make([]SeatMapSeatResponse, len(m.Seats)),
	}
	for i, v := range m.Seats {
		resp.Seats[i] = SeatMapSeatResponse{
			ID:        v.Seat.ID,
			Label:     v.Seat.Label(),
			SeatType:  v.Seat.Type.Code,
			Price:     v.Seat.PriceFor(m.Showtime.BasePrice),
			Status:    string(v.Status),
			HeldByMe:  v.HeldByMe,
			HeldUntil: v.HeldUntil,
		}
	}
	return resp
}

// Get godoc
// @Summary 座席表を取得
// @Description 上映回の全座席と状態を返します。期限切れの保持は空席として表示されます
// @Tags seats
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} SeatMapResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id}/seats [get]
func (h *SeatMapHandler) Get(c echo.Context) error {
	m, err := h.service.GetSeatMap(c.Request().Context(), c.Param("id"), middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSeatMapResponse(m))
}

// CountAvailable godoc
// @Summary 空席数を取得
// @Tags seats
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} AvailableCountResponse
// @Router /showtimes/{id}/seats/available/count [get]
func (h *SeatMapHandler) CountAvailable(c echo.Context) error {
	id := c.Param("id")
	n, err := h.service.CountAvailableSeats(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AvailableCountResponse{ShowtimeID: id, AvailableCount: n})
}
