package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelfront/internal/app/commands"
	paymentsapp "hotelfront/internal/app/handlers/payments"
	"hotelfront/internal/app/queries"
	domainpayments "hotelfront/internal/domain/payments"
)

type PaymentsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type checkoutSessionRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

func (h PaymentsHandler) CreateCheckoutSession(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req checkoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentsapp.CreateCheckoutSessionCommand{BookingID: req.BookingID}
	secret, err := commands.Dispatch[paymentsapp.CreateCheckoutSessionCommand, domainpayments.CheckoutSecret](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, secret)
}

func (h PaymentsHandler) CheckoutStatus(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := paymentsapp.CheckoutStatusQuery{SessionID: c.Query("sessionId")}
	result, err := queries.Ask[paymentsapp.CheckoutStatusQuery, paymentsapp.CheckoutStatusResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentsHTTP = PaymentsHandler{}
