package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/payments"
	"hotelfront/internal/domain/reviews"
	"hotelfront/internal/domain/shared/daterange"
)

var (
	_ policies.BookingGateway = (*Client)(nil)
	_ policies.PaymentGateway = (*Client)(nil)
	_ policies.ReviewGateway  = (*Client)(nil)
)

type createBookingBody struct {
	HotelID  string `json:"hotelId"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

func (c *Client) CreateBooking(ctx context.Context, req booking.Request) (booking.Booking, error) {
	var b booking.Booking
	err := c.do(ctx, call{
		endpoint: "bookings.create",
		method:   http.MethodPost,
		path:     "bookings",
		body: createBookingBody{
			HotelID:  req.HotelID,
			CheckIn:  daterange.FormatDay(req.CheckIn),
			CheckOut: daterange.FormatDay(req.CheckOut),
		},
		out: &b,
	})
	return b, err
}

func (c *Client) GetBooking(ctx context.Context, id string) (booking.Booking, error) {
	var b booking.Booking
	err := c.do(ctx, call{
		endpoint: "bookings.get",
		method:   http.MethodGet,
		path:     "bookings/" + url.PathEscape(id),
		out:      &b,
		notFound: booking.ErrNotFound,
	})
	return b, err
}

// bookingList accepts either a bare array or an object wrapping "bookings".
type bookingList []booking.Booking

func (l *bookingList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Bookings []booking.Booking `json:"bookings"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		*l = wrapped.Bookings
		return nil
	}
	var plain []booking.Booking
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	*l = plain
	return nil
}

func (c *Client) ListUserBookings(ctx context.Context, userID string) ([]booking.Booking, error) {
	var out bookingList
	err := c.do(ctx, call{
		endpoint: "bookings.user",
		method:   http.MethodGet,
		path:     "bookings/user/" + url.PathEscape(userID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []booking.Booking{}, nil
	}
	return out, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, bookingID string) (payments.CheckoutSecret, error) {
	var secret payments.CheckoutSecret
	err := c.do(ctx, call{
		endpoint: "payments.create_checkout_session",
		method:   http.MethodPost,
		path:     "payments/create-checkout-session",
		body:     map[string]string{"bookingId": bookingID},
		out:      &secret,
		notFound: booking.ErrNotFound,
	})
	return secret, err
}

func (c *Client) CheckoutSession(ctx context.Context, sessionID string) (payments.CheckoutSession, error) {
	var s payments.CheckoutSession
	err := c.do(ctx, call{
		endpoint: "payments.checkout_session",
		method:   http.MethodGet,
		path:     "payments/checkout-session",
		query:    url.Values{"sessionId": {sessionID}},
		out:      &s,
		notFound: payments.ErrSessionNotFound,
	})
	return s, err
}

func (c *Client) SubmitReview(ctx context.Context, sub reviews.Submission) (reviews.Review, error) {
	var r reviews.Review
	err := c.do(ctx, call{
		endpoint: "reviews.create",
		method:   http.MethodPost,
		path:     "reviews",
		body:     sub,
		out:      &r,
		notFound: reviews.ErrNotFound,
	})
	return r, err
}
