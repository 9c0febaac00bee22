package booking

import (
	"strings"
	"time"

	"hotelfront/internal/domain/shared/daterange"
	"hotelfront/internal/domain/shared/validation"
)

// MaxNights bounds a single stay.
const MaxNights = 30

const (
	FieldCheckIn  = "checkIn"
	FieldCheckOut = "checkOut"
	FieldHotelID  = "hotelId"
)

const (
	MsgCheckOutBeforeCheckIn = "Check-out date must be after check-in date"
	MsgStayTooLong           = "Maximum stay is 30 nights"
	MsgCheckInInPast         = "Check-in date cannot be in the past"
	MsgCheckInRequired       = "Check-in date is required"
	MsgCheckOutRequired      = "Check-out date is required"
	MsgHotelRequired         = "Hotel is required"
)

// Form holds the dates a guest is editing before booking.
type Form struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewForm returns the defaults shown on mount: today and tomorrow.
func NewForm(today time.Time) Form {
	day := daterange.Day(today)
	return Form{CheckIn: day, CheckOut: day.AddDate(0, 0, 1)}
}

// Validate evaluates every rule and reports all failures keyed by field.
func (f Form) Validate(today time.Time) error {
	ie := validation.NewInputError()
	if f.CheckIn.IsZero() {
		ie.Add(FieldCheckIn, MsgCheckInRequired)
	}
	if f.CheckOut.IsZero() {
		ie.Add(FieldCheckOut, MsgCheckOutRequired)
	}
	if !f.CheckIn.IsZero() && !f.CheckOut.IsZero() {
		nights := daterange.DaysBetween(f.CheckIn, f.CheckOut)
		if nights <= 0 {
			ie.Add(FieldCheckOut, MsgCheckOutBeforeCheckIn)
		}
		if nights > MaxNights {
			ie.Add(FieldCheckOut, MsgStayTooLong)
		}
	}
	if !f.CheckIn.IsZero() && daterange.Day(f.CheckIn).Before(daterange.Day(today)) {
		ie.Add(FieldCheckIn, MsgCheckInInPast)
	}
	return ie.Err()
}

// Nights is the stay length for display. Invalid or incomplete ranges show 1.
func (f Form) Nights() int {
	if f.CheckIn.IsZero() || f.CheckOut.IsZero() {
		return 1
	}
	n := daterange.DaysBetween(f.CheckIn, f.CheckOut)
	if n <= 0 {
		return 1
	}
	return n
}

// MinCheckOut is the earliest check-out the date picker offers.
func (f Form) MinCheckOut(today time.Time) time.Time {
	return MinCheckOut(f.CheckIn, today)
}

// MinCheckOut returns checkIn+1 day, or today when checkIn is unset.
func MinCheckOut(checkIn, today time.Time) time.Time {
	if checkIn.IsZero() {
		return daterange.Day(today)
	}
	return daterange.Day(checkIn).AddDate(0, 0, 1)
}

// Request is the payload handed to booking creation.
type Request struct {
	HotelID  string    `json:"hotelId"`
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
	Nights   int       `json:"nights"`
}

// Range returns the requested stay.
func (r Request) Range() daterange.DateRange {
	return daterange.DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// Submit packages the form for booking creation. It refuses while any rule fails.
func (f Form) Submit(hotelID string, today time.Time) (Request, error) {
	err := f.Validate(today)
	if strings.TrimSpace(hotelID) == "" {
		ie, ok := validation.AsInputError(err)
		if !ok {
			ie = validation.NewInputError()
		}
		ie.Add(FieldHotelID, MsgHotelRequired)
		err = ie
	}
	if err != nil {
		return Request{}, err
	}
	return Request{
		HotelID:  strings.TrimSpace(hotelID),
		CheckIn:  daterange.Day(f.CheckIn),
		CheckOut: daterange.Day(f.CheckOut),
		Nights:   f.Nights(),
	}, nil
}
