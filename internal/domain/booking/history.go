package booking

import (
	"errors"
	"strings"
	"time"

	"hotelfront/internal/domain/shared/daterange"
)

var ErrInvalidStatusFilter = errors.New("booking: unknown payment status filter")

// StatusFilter narrows booking history by payment state.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusPaid    StatusFilter = StatusFilter(PaymentPaid)
	StatusPending StatusFilter = StatusFilter(PaymentPending)
)

// HistoryFilter selects bookings shown in a guest's history.
type HistoryFilter struct {
	Status  StatusFilter
	CheckIn time.Time
}

// ParseHistoryFilter reads the status and check-in day filters. Empty input means no filter.
func ParseHistoryFilter(status, checkIn string) (HistoryFilter, error) {
	f := HistoryFilter{Status: StatusAll}
	switch s := StatusFilter(strings.TrimSpace(status)); {
	case s == "" || strings.EqualFold(string(s), string(StatusAll)):
	case strings.EqualFold(string(s), string(StatusPaid)):
		f.Status = StatusPaid
	case strings.EqualFold(string(s), string(StatusPending)):
		f.Status = StatusPending
	default:
		return HistoryFilter{}, ErrInvalidStatusFilter
	}
	if strings.TrimSpace(checkIn) != "" {
		day, err := daterange.ParseDay(checkIn)
		if err != nil {
			return HistoryFilter{}, err
		}
		f.CheckIn = day
	}
	return f, nil
}

func (f HistoryFilter) Match(b Booking) bool {
	if f.Status != "" && f.Status != StatusAll && string(b.PaymentStatus) != string(f.Status) {
		return false
	}
	if !f.CheckIn.IsZero() && !daterange.Day(b.CheckIn).Equal(daterange.Day(f.CheckIn)) {
		return false
	}
	return true
}

// HistoryEntry is a booking decorated with display totals.
type HistoryEntry struct {
	Booking
	Nights int     `json:"nights"`
	Total  float64 `json:"total"`
}

// History filters bookings and decorates the survivors.
func History(bookings []Booking, f HistoryFilter) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(bookings))
	for _, b := range bookings {
		if !f.Match(b) {
			continue
		}
		out = append(out, HistoryEntry{Booking: b, Nights: b.Nights(), Total: b.Total()})
	}
	return out
}
