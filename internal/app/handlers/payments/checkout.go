package payments

import (
	"context"
	"strings"
	"time"

	"hotelfront/internal/app/commands"
	"hotelfront/internal/app/handlers/support"
	"hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/domain/auth"
	domainbooking "hotelfront/internal/domain/booking"
	domainhotels "hotelfront/internal/domain/hotels"
	domainpayments "hotelfront/internal/domain/payments"
	"hotelfront/internal/domain/shared/events"
)

const (
	createCheckoutKey = "payments.create_checkout"
	checkoutStatusKey = "payments.checkout_status"
)

// CreateCheckoutSessionCommand opens the hosted checkout for an existing booking.
type CreateCheckoutSessionCommand struct {
	BookingID string
}

func (c CreateCheckoutSessionCommand) Key() string { return createCheckoutKey }

func (c CreateCheckoutSessionCommand) RequiredRole() string { return "" }

func (c CreateCheckoutSessionCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return domainpayments.ErrBookingIDRequired
	}
	return nil
}

type CreateCheckoutSessionHandler struct {
	Payments policies.PaymentGateway
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *CreateCheckoutSessionHandler) Handle(ctx context.Context, cmd CreateCheckoutSessionCommand) (domainpayments.CheckoutSecret, error) {
	principal, err := auth.RequireRole(ctx, cmd.RequiredRole())
	if err != nil {
		return domainpayments.CheckoutSecret{}, err
	}
	if err := cmd.Validate(); err != nil {
		return domainpayments.CheckoutSecret{}, err
	}
	bookingID := strings.TrimSpace(cmd.BookingID)
	secret, err := h.Payments.CreateCheckoutSession(ctx, bookingID)
	if err != nil {
		return domainpayments.CheckoutSecret{}, err
	}
	at := time.Now().UTC()
	if h.Now != nil {
		at = h.Now().UTC()
	}
	enc := h.Encoder
	if enc == nil {
		enc = outbox.JSONEventEncoder{}
	}
	ev := domainpayments.CheckoutSessionCreated{BookingID: bookingID, UserID: principal.UserID, At: at}
	if err := support.RecordEvents(ctx, h.Outbox, enc, []events.DomainEvent{ev}); err != nil {
		return domainpayments.CheckoutSecret{}, err
	}
	return secret, nil
}

// CheckoutStatusQuery resolves what the completion page shows for a session.
type CheckoutStatusQuery struct {
	SessionID string
}

func (q CheckoutStatusQuery) Key() string { return checkoutStatusKey }

func (q CheckoutStatusQuery) Validate() error {
	if strings.TrimSpace(q.SessionID) == "" {
		return domainpayments.ErrSessionIDRequired
	}
	return nil
}

type CheckoutStatusResult struct {
	Status    domainpayments.SessionStatus `json:"status"`
	BookingID string                       `json:"bookingId,omitempty"`
	Booking   *domainbooking.Booking       `json:"booking,omitempty"`
	Hotel     *domainhotels.Hotel          `json:"hotel,omitempty"`
	Outcome   domainpayments.Outcome       `json:"next"`
}

type CheckoutStatusHandler struct {
	Payments policies.PaymentGateway
}

func (h *CheckoutStatusHandler) Handle(ctx context.Context, q CheckoutStatusQuery) (CheckoutStatusResult, error) {
	if err := q.Validate(); err != nil {
		return CheckoutStatusResult{}, err
	}
	session, err := h.Payments.CheckoutSession(ctx, strings.TrimSpace(q.SessionID))
	if err != nil {
		return CheckoutStatusResult{}, err
	}
	return CheckoutStatusResult{
		Status:    session.Status,
		BookingID: session.BookingID,
		Booking:   session.Booking,
		Hotel:     session.Hotel,
		Outcome:   domainpayments.Resolve(session),
	}, nil
}

var _ commands.Handler[CreateCheckoutSessionCommand, domainpayments.CheckoutSecret] = (*CreateCheckoutSessionHandler)(nil)
var _ queries.Handler[CheckoutStatusQuery, CheckoutStatusResult] = (*CheckoutStatusHandler)(nil)
