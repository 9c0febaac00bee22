package reviews

import (
	"errors"
	"strings"
	"time"

	"hotelfront/internal/domain/shared/validation"
)

var ErrNotFound = errors.New("reviews: not found")

const (
	FieldHotelID = "hotelId"
	FieldComment = "comment"
	FieldRating  = "rating"

	AnonymousName = "Anonymous"
)

// Review as stored by the hotel backend.
type Review struct {
	ID        string    `json:"_id"`
	HotelID   string    `json:"hotelId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type SubmitParams struct {
	HotelID  string
	UserID   string
	UserName string
	Comment  string
	Rating   int
}

// Submission is the review payload accepted by the backend.
type Submission struct {
	HotelID  string `json:"hotelId"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func NewSubmission(params SubmitParams) (Submission, error) {
	ie := validation.NewInputError()
	hotelID := strings.TrimSpace(params.HotelID)
	if hotelID == "" {
		ie.Add(FieldHotelID, "Hotel is required")
	}
	if strings.TrimSpace(params.Comment) == "" {
		ie.Add(FieldComment, "Please enter a review comment")
	}
	if params.Rating < 1 || params.Rating > 5 {
		ie.Add(FieldRating, "Rating must be between 1 and 5")
	}
	if err := ie.Err(); err != nil {
		return Submission{}, err
	}
	name := strings.TrimSpace(params.UserName)
	if name == "" {
		name = AnonymousName
	}
	return Submission{
		HotelID:  hotelID,
		Comment:  params.Comment,
		Rating:   params.Rating,
		UserID:   params.UserID,
		UserName: name,
	}, nil
}
