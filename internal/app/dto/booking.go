package dto

import (
	"time"

	"hotelfront/internal/domain/booking"
	"hotelfront/internal/domain/shared/daterange"
)

// BookingView is a booking as shown to its guest.
type BookingView struct {
	ID            string                `json:"id"`
	HotelID       string                `json:"hotelId"`
	Hotel         *booking.HotelSummary `json:"hotel,omitempty"`
	CheckIn       string                `json:"checkIn"`
	CheckOut      string                `json:"checkOut"`
	Nights        int                   `json:"nights"`
	Total         float64               `json:"total"`
	RoomNumber    int                   `json:"roomNumber,omitempty"`
	PaymentStatus booking.PaymentStatus `json:"paymentStatus"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func MapBooking(b booking.Booking) BookingView {
	return BookingView{
		ID:            b.ID,
		HotelID:       b.HotelID,
		Hotel:         b.Hotel,
		CheckIn:       daterange.FormatDay(b.CheckIn),
		CheckOut:      daterange.FormatDay(b.CheckOut),
		Nights:        b.Nights(),
		Total:         b.Total(),
		RoomNumber:    b.RoomNumber,
		PaymentStatus: b.PaymentStatus,
		PaymentMethod: b.PaymentMethod,
		CreatedAt:     b.CreatedAt,
	}
}

// BookingHistory is the filtered list on the account page.
type BookingHistory struct {
	Bookings []BookingView `json:"bookings"`
	Status   string        `json:"status"`
	CheckIn  string        `json:"checkIn,omitempty"`
}

func MapHistory(entries []booking.HistoryEntry, f booking.HistoryFilter) BookingHistory {
	out := BookingHistory{
		Bookings: make([]BookingView, 0, len(entries)),
		Status:   string(f.Status),
		CheckIn:  daterange.FormatDay(f.CheckIn),
	}
	for _, e := range entries {
		out.Bookings = append(out.Bookings, MapBooking(e.Booking))
	}
	return out
}
