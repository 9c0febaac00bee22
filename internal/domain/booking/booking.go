package booking

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"hotelfront/internal/domain/shared/daterange"
)

var ErrNotFound = errors.New("booking: not found")

// PaymentStatus mirrors the backend payment state of a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// HotelSummary is the hotel data the backend embeds in booking documents.
type HotelSummary struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
}

// Booking is owned by the hotel backend; the storefront creates and displays it.
type Booking struct {
	ID            string        `json:"_id"`
	HotelID       string        `json:"hotelId"`
	Hotel         *HotelSummary `json:"hotel,omitempty"`
	UserID        string        `json:"userId"`
	CheckIn       time.Time     `json:"checkIn"`
	CheckOut      time.Time     `json:"checkOut"`
	RoomNumber    int           `json:"roomNumber,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// UnmarshalJSON accepts hotelId either as an id or as a populated hotel document.
func (b *Booking) UnmarshalJSON(data []byte) error {
	type plain Booking
	aux := struct {
		*plain
		HotelID json.RawMessage `json:"hotelId"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raw := bytes.TrimSpace(aux.HotelID)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		return json.Unmarshal(raw, &b.HotelID)
	case raw[0] == '{':
		var summary HotelSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			return err
		}
		b.HotelID = summary.ID
		b.Hotel = &summary
	}
	return nil
}

// Nights is the whole-day length of the stay.
func (b Booking) Nights() int {
	n := daterange.DaysBetween(b.CheckIn, b.CheckOut)
	if n < 0 {
		return 0
	}
	return n
}

// Total is the nightly price times the number of nights, when the hotel is known.
func (b Booking) Total() float64 {
	if b.Hotel == nil {
		return 0
	}
	return b.Hotel.Price * float64(b.Nights())
}
