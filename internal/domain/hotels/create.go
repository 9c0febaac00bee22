package hotels

import (
	"strings"

	"hotelfront/internal/domain/shared/validation"
)

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldLocation    = "location"
	FieldPrice       = "price"
)

// CreateParams is the payload for adding a hotel to the catalog.
type CreateParams struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
}

// Normalized trims free-text fields.
func (p CreateParams) Normalized() CreateParams {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)
	p.Location = strings.TrimSpace(p.Location)
	return p
}

func (p CreateParams) Validate() error {
	n := p.Normalized()
	ie := validation.NewInputError()
	if n.Name == "" {
		ie.Add(FieldName, "Name is required")
	}
	if n.Description == "" {
		ie.Add(FieldDescription, "Description is required")
	}
	if n.Image == "" {
		ie.Add(FieldImage, "Image is required")
	}
	if n.Location == "" {
		ie.Add(FieldLocation, "Location is required")
	}
	if n.Price < 0 {
		ie.Add(FieldPrice, "Price is required")
	}
	return ie.Err()
}
