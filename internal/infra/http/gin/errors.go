package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "hotelfront/internal/app/handlers/booking"
	hotelsapp "hotelfront/internal/app/handlers/hotels"
	"hotelfront/internal/app/session"
	domainauth "hotelfront/internal/domain/auth"
	domainbooking "hotelfront/internal/domain/booking"
	domainhotels "hotelfront/internal/domain/hotels"
	domainpayments "hotelfront/internal/domain/payments"
	domainreviews "hotelfront/internal/domain/reviews"
	"hotelfront/internal/domain/shared/daterange"
	"hotelfront/internal/domain/shared/validation"
	"hotelfront/internal/infra/backend"
)

var badRequest = []error{
	domainpayments.ErrSessionIDRequired,
	domainpayments.ErrBookingIDRequired,
	hotelsapp.ErrQueryRequired,
	domainbooking.ErrInvalidStatusFilter,
	daterange.ErrInvalidDay,
	session.ErrUnknownEvent,
	session.ErrUnknownField,
	session.ErrEmptyUpdate,
}

var notFound = []error{
	domainhotels.ErrNotFound,
	domainbooking.ErrNotFound,
	domainreviews.ErrNotFound,
	domainpayments.ErrSessionNotFound,
	session.ErrNotFound,
	session.ErrClosed,
}

// respondError writes the JSON error body for err and logs server-side failures.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, body := errorResponse(err)
	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "status", status, "error", err, "request_id", c.GetString("request_id"))
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	if ie, ok := validation.AsInputError(err); ok {
		return http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": ie.Fields()}
	}
	var setup *bookingapp.PaymentSetupError
	if errors.As(err, &setup) {
		return http.StatusBadGateway, gin.H{
			"error":      "payment setup failed",
			"detail":     setup.Err.Error(),
			"bookingId":  setup.BookingID,
			"paymentUrl": setup.PaymentURL(),
		}
	}
	var upstream *backend.StatusError
	if errors.As(err, &upstream) {
		switch upstream.Status {
		case http.StatusUnauthorized:
			return http.StatusUnauthorized, gin.H{"error": "hotel service rejected credentials"}
		case http.StatusForbidden:
			return http.StatusForbidden, gin.H{"error": "hotel service denied access"}
		}
		return http.StatusBadGateway, gin.H{"error": "hotel service unavailable", "detail": upstream.Error()}
	}
	switch {
	case errors.Is(err, domainauth.ErrUnauthorized), errors.Is(err, domainauth.ErrTokenRequired):
		return http.StatusUnauthorized, gin.H{"error": err.Error()}
	case errors.Is(err, domainauth.ErrForbidden):
		return http.StatusForbidden, gin.H{"error": err.Error()}
	case errors.Is(err, hotelsapp.ErrImageStoreMissing):
		return http.StatusServiceUnavailable, gin.H{"error": err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, gin.H{"error": "hotel service timed out"}
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound, gin.H{"error": err.Error()}
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, gin.H{"error": err.Error()}
		}
	}
	return http.StatusInternalServerError, gin.H{"error": "internal error"}
}
