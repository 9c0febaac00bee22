package payments

import "time"

type CheckoutSessionCreated struct {
	BookingID string    `json:"bookingId"`
	UserID    string    `json:"userId"`
	At        time.Time `json:"at"`
}

const EventCheckoutSessionCreated = "checkout.session_created"

func (e CheckoutSessionCreated) EventName() string     { return EventCheckoutSessionCreated }
func (e CheckoutSessionCreated) AggregateID() string   { return e.BookingID }
func (e CheckoutSessionCreated) OccurredAt() time.Time { return e.At }
func (e CheckoutSessionCreated) ActorID() string       { return e.UserID }
