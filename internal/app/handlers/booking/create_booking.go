package booking

import (
	"context"
	"errors"
	"time"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/handlers/support"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/auth"
	domainbooking "hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/payments"
	"hotelfront/internal/domain/shared/events"
)

const createBookingKey = "booking.create"

var ErrMissingBookingID = errors.New("booking: backend returned a booking without id")

// CreateBookingCommand books a stay. The guest pays on the payment page afterwards.
type CreateBookingCommand struct {
	HotelID  string
	CheckIn  time.Time
	CheckOut time.Time
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) RequiredRole() string { return "" }

func (c CreateBookingCommand) form() domainbooking.Form {
	return domainbooking.Form{CheckIn: c.CheckIn, CheckOut: c.CheckOut}
}

// ValidateAt rejects the stay before any backend call is made.
func (c CreateBookingCommand) ValidateAt(today time.Time) error { return c.form().Validate(today) }

type CreateBookingResult struct {
	Booking    dto.BookingView `json:"booking"`
	PaymentURL string          `json:"paymentUrl"`
}

type CreateBookingHandler struct {
	Bookings policies.BookingGateway
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	principal, err := auth.RequireRole(ctx, cmd.RequiredRole())
	if err != nil {
		return nil, err
	}
	created, err := createBooking(ctx, h.Bookings, cmd.HotelID, cmd.form(), now(h.Now))
	if err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, encoder(h.Encoder), []events.DomainEvent{
		requested(created, principal, now(h.Now)),
	}); err != nil {
		return nil, err
	}
	return &CreateBookingResult{
		Booking:    dto.MapBooking(created),
		PaymentURL: payments.PaymentPagePath(created.ID),
	}, nil
}

// createBooking validates the form against today and asks the backend for a booking.
func createBooking(ctx context.Context, gw policies.BookingGateway, hotelID string, form domainbooking.Form, today time.Time) (domainbooking.Booking, error) {
	req, err := form.Submit(hotelID, today)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	created, err := gw.CreateBooking(ctx, req)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	if created.ID == "" {
		return domainbooking.Booking{}, ErrMissingBookingID
	}
	if created.HotelID == "" {
		created.HotelID = req.HotelID
	}
	if created.CheckIn.IsZero() {
		created.CheckIn, created.CheckOut = req.CheckIn, req.CheckOut
	}
	return created, nil
}

func requested(b domainbooking.Booking, p auth.Principal, at time.Time) domainbooking.BookingRequested {
	userID := b.UserID
	if userID == "" {
		userID = p.UserID
	}
	return domainbooking.BookingRequested{
		BookingID: b.ID,
		HotelID:   b.HotelID,
		UserID:    userID,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		Nights:    b.Nights(),
		At:        at,
	}
}

func now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func encoder(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
