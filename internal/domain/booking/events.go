package booking

import "time"

type BookingRequested struct {
	BookingID string    `json:"bookingId"`
	HotelID   string    `json:"hotelId"`
	UserID    string    `json:"userId"`
	CheckIn   time.Time `json:"checkIn"`
	CheckOut  time.Time `json:"checkOut"`
	Nights    int       `json:"nights"`
	At        time.Time `json:"at"`
}

const EventBookingRequested = "booking.requested"

func (e BookingRequested) EventName() string     { return EventBookingRequested }
func (e BookingRequested) AggregateID() string   { return e.BookingID }
func (e BookingRequested) OccurredAt() time.Time { return e.At }
func (e BookingRequested) ActorID() string       { return e.UserID }
