package booking

import (
	"context"
	"fmt"
	"time"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/dto"
	"hotelfront/internal/app/handlers/support"
	"hotelfront/internal/app/middleware"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/auth"
	domainbooking "hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/payments"
	"hotelfront/internal/domain/shared/events"
)

const bookAndPayKey = "booking.book_and_pay"

// BookAndPayCommand creates a booking and immediately opens a checkout session for it.
type BookAndPayCommand struct {
	HotelID         string
	CheckIn         time.Time
	CheckOut        time.Time
	IdempotencyKeyV string
}

func (c BookAndPayCommand) Key() string { return bookAndPayKey }

func (c BookAndPayCommand) RequiredRole() string { return "" }

func (c BookAndPayCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c BookAndPayCommand) ResultPrototype() any { return &BookAndPayResult{} }

func (c BookAndPayCommand) form() domainbooking.Form {
	return domainbooking.Form{CheckIn: c.CheckIn, CheckOut: c.CheckOut}
}

func (c BookAndPayCommand) ValidateAt(today time.Time) error { return c.form().Validate(today) }

type BookAndPayResult struct {
	Booking      dto.BookingView `json:"booking"`
	ClientSecret string          `json:"clientSecret"`
	PaymentURL   string          `json:"paymentUrl"`
}

// PaymentSetupError reports a booking that exists but could not get a checkout
// session. The guest can resume from the payment page.
type PaymentSetupError struct {
	BookingID string
	Err       error
}

func (e *PaymentSetupError) Error() string {
	return fmt.Sprintf("booking %s created but checkout failed: %v", e.BookingID, e.Err)
}

func (e *PaymentSetupError) Unwrap() error { return e.Err }

// KeepsWrites marks the booking as already persisted upstream.
func (e *PaymentSetupError) KeepsWrites() bool { return true }

// PaymentURL is where the guest can retry the payment.
func (e *PaymentSetupError) PaymentURL() string { return payments.PaymentPagePath(e.BookingID) }

type BookAndPayHandler struct {
	Bookings policies.BookingGateway
	Payments policies.PaymentGateway
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *BookAndPayHandler) Handle(ctx context.Context, cmd BookAndPayCommand) (*BookAndPayResult, error) {
	principal, err := auth.RequireRole(ctx, cmd.RequiredRole())
	if err != nil {
		return nil, err
	}
	created, err := createBooking(ctx, h.Bookings, cmd.HotelID, cmd.form(), now(h.Now))
	if err != nil {
		return nil, err
	}

	enc := encoder(h.Encoder)
	at := now(h.Now)
	if err := support.RecordEvents(ctx, h.Outbox, enc, []events.DomainEvent{requested(created, principal, at)}); err != nil {
		return nil, err
	}

	secret, err := h.Payments.CreateCheckoutSession(ctx, created.ID)
	if err != nil {
		return nil, &PaymentSetupError{BookingID: created.ID, Err: err}
	}
	opened := payments.CheckoutSessionCreated{BookingID: created.ID, UserID: principal.UserID, At: now(h.Now)}
	if err := support.RecordEvents(ctx, h.Outbox, enc, []events.DomainEvent{opened}); err != nil {
		return nil, err
	}
	return &BookAndPayResult{
		Booking:      dto.MapBooking(created),
		ClientSecret: secret.ClientSecret,
		PaymentURL:   payments.PaymentPagePath(created.ID),
	}, nil
}

var _ commands.Handler[BookAndPayCommand, *BookAndPayResult] = (*BookAndPayHandler)(nil)
var _ middleware.IdempotentCommand = BookAndPayCommand{}

var _ middleware.PartialFailure = (*PaymentSetupError)(nil)

var (
	_ middleware.DatedMessage = BookAndPayCommand{}
	_ middleware.DatedMessage = CreateBookingCommand{}
)
