package reviews

import "time"

type ReviewSubmitted struct {
	HotelID string    `json:"hotelId"`
	UserID  string    `json:"userId"`
	Rating  int       `json:"rating"`
	At      time.Time `json:"at"`
}

const EventReviewSubmitted = "review.submitted"

func (e ReviewSubmitted) EventName() string     { return EventReviewSubmitted }
func (e ReviewSubmitted) AggregateID() string   { return e.HotelID }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
func (e ReviewSubmitted) ActorID() string       { return e.UserID }
