package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/dto"
	bookingapp "hotelfront/internal/app/handlers/booking"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/shared/daterange"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	HotelID  string `json:"hotelId"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// dates leaves blank days zero so form validation can report them per field.
func (r createBookingRequest) dates() (time.Time, time.Time, error) {
	var in, out time.Time
	var err error
	if strings.TrimSpace(r.CheckIn) != "" {
		if in, err = daterange.ParseDay(r.CheckIn); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if strings.TrimSpace(r.CheckOut) != "" {
		if out, err = daterange.ParseDay(r.CheckOut); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return in, out, nil
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, checkOut, err := req.dates()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{HotelID: req.HotelID, CheckIn: checkIn, CheckOut: checkOut}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Checkout books the stay and opens the payment session in one step.
func (h BookingHandler) Checkout(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, checkOut, err := req.dates()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.BookAndPayCommand{
		HotelID:         req.HotelID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.BookAndPayCommand, *bookingapp.BookAndPayResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	view, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{ID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h BookingHandler) ListForUser(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := bookingapp.ListUserBookingsQuery{
		UserID:  c.Param("userId"),
		Status:  c.Query("paymentStatus"),
		CheckIn: c.Query("checkIn"),
	}
	history, err := queries.Ask[bookingapp.ListUserBookingsQuery, dto.BookingHistory](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

var _ BookingHTTP = BookingHandler{}
