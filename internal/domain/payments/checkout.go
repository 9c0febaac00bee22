package payments

import (
	"errors"
	"net/url"
	"strings"

	"hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/hotels"
	"hotelfront/internal/domain/shared/daterange"
)

var (
	ErrSessionIDRequired = errors.New("payments: session id is required")
	ErrBookingIDRequired = errors.New("payments: booking id is required")
	ErrSessionNotFound   = errors.New("payments: checkout session not found")
)

// SessionStatus is reported by the payment provider for a hosted checkout.
type SessionStatus string

const (
	StatusOpen     SessionStatus = "open"
	StatusComplete SessionStatus = "complete"
	StatusPaid     SessionStatus = "paid"
)

// PaymentPagePath is where a guest enters payment details for a booking.
func PaymentPagePath(bookingID string) string {
	return "/booking/payment?bookingId=" + url.QueryEscape(bookingID)
}

// CheckoutSecret unlocks the embedded hosted checkout.
type CheckoutSecret struct {
	ClientSecret string `json:"clientSecret"`
}

// CheckoutSession is the provider state of a checkout as relayed by the backend.
type CheckoutSession struct {
	Status    SessionStatus    `json:"status"`
	BookingID string           `json:"bookingId"`
	Booking   *booking.Booking `json:"booking,omitempty"`
	Hotel     *hotels.Hotel    `json:"hotel,omitempty"`
}

// OutcomeKind tells the completion page what to render.
type OutcomeKind string

const (
	OutcomeRedirect OutcomeKind = "redirect"
	OutcomeSummary  OutcomeKind = "summary"
	OutcomeUnknown  OutcomeKind = "unknown"
)

type Summary struct {
	BookingID     string                `json:"bookingId"`
	HotelName     string                `json:"hotelName,omitempty"`
	HotelLocation string                `json:"hotelLocation,omitempty"`
	CheckIn       string                `json:"checkIn,omitempty"`
	CheckOut      string                `json:"checkOut,omitempty"`
	Nights        int                   `json:"nights"`
	Total         float64               `json:"total"`
	PaymentStatus booking.PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
}

type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	Redirect string      `json:"redirect,omitempty"`
	Summary  *Summary    `json:"summary,omitempty"`
	Message  string      `json:"message,omitempty"`
}

const unknownStatusMessage = "We couldn't determine the status of your payment. If you completed a payment, please check your bookings or contact support."

// Resolve decides the next step for the completion page.
func Resolve(s CheckoutSession) Outcome {
	switch SessionStatus(strings.ToLower(string(s.Status))) {
	case StatusOpen:
		return Outcome{Kind: OutcomeRedirect, Redirect: PaymentPagePath(s.BookingID)}
	case StatusComplete, StatusPaid:
		return Outcome{Kind: OutcomeSummary, Summary: summarize(s)}
	default:
		return Outcome{Kind: OutcomeUnknown, Message: unknownStatusMessage}
	}
}

func summarize(s CheckoutSession) *Summary {
	sum := &Summary{BookingID: s.BookingID}
	var price float64
	if s.Hotel != nil {
		sum.HotelName = s.Hotel.Name
		sum.HotelLocation = s.Hotel.Location
		price = s.Hotel.Price
	}
	if b := s.Booking; b != nil {
		if b.ID != "" {
			sum.BookingID = b.ID
		}
		if b.Hotel != nil {
			if sum.HotelName == "" {
				sum.HotelName = b.Hotel.Name
				sum.HotelLocation = b.Hotel.Location
			}
			if price == 0 {
				price = b.Hotel.Price
			}
		}
		sum.CheckIn = daterange.FormatDay(b.CheckIn)
		sum.CheckOut = daterange.FormatDay(b.CheckOut)
		sum.Nights = b.Nights()
		sum.PaymentStatus = b.PaymentStatus
		sum.PaymentMethod = b.PaymentMethod
	}
	sum.Total = price * float64(sum.Nights)
	return sum
}
