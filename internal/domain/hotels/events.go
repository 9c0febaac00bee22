package hotels

import "time"

type HotelCreated struct {
	HotelID  string    `json:"hotelId"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	At       time.Time `json:"at"`
}

const EventHotelCreated = "hotel.created"

func (e HotelCreated) EventName() string     { return EventHotelCreated }
func (e HotelCreated) AggregateID() string   { return e.HotelID }
func (e HotelCreated) OccurredAt() time.Time { return e.At }
