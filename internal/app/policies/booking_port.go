package policies

import (
	"context"

	"hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/payments"
	"hotelfront/internal/domain/reviews"
)

type BookingGateway interface {
	CreateBooking(ctx context.Context, req booking.Request) (booking.Booking, error)
	GetBooking(ctx context.Context, id string) (booking.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]booking.Booking, error)
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, bookingID string) (payments.CheckoutSecret, error)
	CheckoutSession(ctx context.Context, sessionID string) (payments.CheckoutSession, error)
}

type ReviewGateway interface {
	SubmitReview(ctx context.Context, sub reviews.Submission) (reviews.Review, error)
}
